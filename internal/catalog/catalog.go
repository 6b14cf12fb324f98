package catalog

import (
	"fmt"

	"github.com/animus-labs/evergreen-matrix/internal/domain"
)

// Catalog is an immutable, ordered set of compile task definitions.
type Catalog struct {
	tasks []domain.CompileTask
	index map[string]int
}

func New(tasks ...domain.CompileTask) (Catalog, error) {
	c := Catalog{
		tasks: make([]domain.CompileTask, 0, len(tasks)),
		index: make(map[string]int, len(tasks)),
	}
	for i, task := range tasks {
		if err := task.Validate(); err != nil {
			return Catalog{}, fmt.Errorf("catalog[%d]: %w", i, err)
		}
		if _, ok := c.index[task.Name]; ok {
			return Catalog{}, fmt.Errorf("catalog[%d]: duplicate compile task %q", i, task.Name)
		}
		c.index[task.Name] = len(c.tasks)
		c.tasks = append(c.tasks, task.Clone())
	}
	return c, nil
}

func (c Catalog) Len() int {
	return len(c.tasks)
}

func (c Catalog) Has(name string) bool {
	_, ok := c.index[name]
	return ok
}

func (c Catalog) Get(name string) (domain.CompileTask, bool) {
	i, ok := c.index[name]
	if !ok {
		return domain.CompileTask{}, false
	}
	return c.tasks[i].Clone(), true
}

// Tasks returns copies of the definitions in declaration order.
func (c Catalog) Tasks() []domain.CompileTask {
	out := make([]domain.CompileTask, 0, len(c.tasks))
	for _, task := range c.tasks {
		out = append(out, task.Clone())
	}
	return out
}

func (c Catalog) Names() []string {
	out := make([]string, 0, len(c.tasks))
	for _, task := range c.tasks {
		out = append(out, task.Name)
	}
	return out
}

package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/animus-labs/evergreen-matrix/internal/catalog"
	"github.com/animus-labs/evergreen-matrix/internal/domain"
	"github.com/animus-labs/evergreen-matrix/internal/execution/derive"
)

var modeTags = []string{derive.TagValgrind, derive.TagCoverage, derive.TagASan}

// ValidateTasks checks a generated task list for consistency: unique names,
// dependencies that resolve to a catalog or generated task, at most one mode
// tag per task and an acyclic dependency graph.
func ValidateTasks(tasks []domain.Task, cat catalog.Catalog) error {
	issues := &ValidationError{}

	names := make(map[string]struct{}, len(tasks))
	for i, task := range tasks {
		name := strings.TrimSpace(task.Name)
		if name == "" {
			issues.Add(fmt.Sprintf("task[%d] (%s) name is required", i, task.Kind))
			continue
		}
		if _, exists := names[name]; exists {
			issues.Add(fmt.Sprintf("duplicate task name %q", name))
		}
		names[name] = struct{}{}
	}

	adj := make(map[string][]string, len(names))
	for _, task := range tasks {
		if task.Name == "" {
			continue
		}
		for _, dep := range task.DependsOn {
			dep = strings.TrimSpace(dep)
			if dep == "" {
				issues.Add(fmt.Sprintf("task %q has an empty dependency", task.Name))
				continue
			}
			if dep == task.Name {
				issues.Add(fmt.Sprintf("task %q depends on itself", task.Name))
				continue
			}
			_, generated := names[dep]
			if !generated && !cat.Has(dep) {
				issues.Add(fmt.Sprintf("task %q depends on unknown task %q", task.Name, dep))
				continue
			}
			adj[task.Name] = append(adj[task.Name], dep)
		}
		if task.Kind == domain.KindIntegration {
			if n := countModeTags(task.Tags); n > 1 {
				issues.Add(fmt.Sprintf("task %q carries %d mode tags", task.Name, n))
			}
		}
	}

	if hasCycle(adj, names) {
		issues.Add("dependency graph contains a cycle")
	}

	return issues.OrNil()
}

func countModeTags(tags domain.TagSet) int {
	n := 0
	for _, tag := range modeTags {
		if tags.Has(tag) {
			n++
		}
	}
	return n
}

func hasCycle(adj map[string][]string, nodes map[string]struct{}) bool {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(nodes))
	var visit func(string) bool
	visit = func(node string) bool {
		switch state[node] {
		case visiting:
			return true
		case done:
			return false
		}
		state[node] = visiting
		for _, next := range adj[node] {
			if visit(next) {
				return true
			}
		}
		state[node] = done
		return false
	}

	ordered := make([]string, 0, len(nodes))
	for node := range nodes {
		ordered = append(ordered, node)
	}
	sort.Strings(ordered)
	for _, node := range ordered {
		if state[node] == unvisited {
			if visit(node) {
				return true
			}
		}
	}
	return false
}

package matrix

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/animus-labs/evergreen-matrix/internal/catalog"
	"github.com/animus-labs/evergreen-matrix/internal/domain"
	"github.com/animus-labs/evergreen-matrix/internal/execution/constraint"
	"github.com/animus-labs/evergreen-matrix/internal/execution/derive"
)

type Family string

const (
	FamilyCompile     Family = "compile"
	FamilyIntegration Family = "integration"
	FamilyAuth        Family = "auth"
)

func Families() []Family {
	return []Family{FamilyCompile, FamilyIntegration, FamilyAuth}
}

func ParseFamily(raw string) (Family, error) {
	switch Family(strings.ToLower(strings.TrimSpace(raw))) {
	case FamilyCompile:
		return FamilyCompile, nil
	case FamilyIntegration:
		return FamilyIntegration, nil
	case FamilyAuth:
		return FamilyAuth, nil
	default:
		return "", fmt.Errorf("unknown task family %q", raw)
	}
}

// Config carries the immutable inputs of a generator.
type Config struct {
	IntegrationAxes domain.AxisSpace
	AuthAxes        domain.AxisSpace
	Catalog         catalog.Catalog
	Logger          *slog.Logger
}

// Stats counts what happened to the candidates of one family.
type Stats struct {
	Family     Family
	Candidates int
	Accepted   int
	// Rejected counts disallowed candidates by the first rule that failed.
	Rejected map[string]int
}

func (s Stats) RejectedTotal() int {
	total := 0
	for _, n := range s.Rejected {
		total += n
	}
	return total
}

// Matrix is the full generated task list.
type Matrix struct {
	Compile     []domain.Task
	Integration []domain.Task
	Auth        []domain.Task
	Stats       []Stats
}

// Tasks returns every task: compile catalog first, then integration, then auth.
func (m Matrix) Tasks() []domain.Task {
	out := make([]domain.Task, 0, len(m.Compile)+len(m.Integration)+len(m.Auth))
	out = append(out, m.Compile...)
	out = append(out, m.Integration...)
	out = append(out, m.Auth...)
	return out
}

type family[T any] struct {
	name   Family
	space  domain.AxisSpace
	bind   func(domain.Assignment) (T, error)
	wrap   func(T) domain.Task
	policy constraint.Policy[T]
}

// Generator enumerates, filters and decorates task families.
type Generator struct {
	integration family[domain.IntegrationTask]
	auth        family[domain.AuthTask]
	catalog     catalog.Catalog
	logger      *slog.Logger
}

// New validates the axis spaces against their families and fails fast on
// malformed definitions.
func New(cfg Config) (*Generator, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	g := &Generator{
		integration: family[domain.IntegrationTask]{
			name:   FamilyIntegration,
			space:  cfg.IntegrationAxes,
			bind:   domain.BindIntegration,
			wrap:   domain.NewIntegration,
			policy: constraint.IntegrationPolicy(),
		},
		auth: family[domain.AuthTask]{
			name:   FamilyAuth,
			space:  cfg.AuthAxes,
			bind:   domain.BindAuth,
			wrap:   domain.NewAuth,
			policy: constraint.AuthPolicy(),
		},
		catalog: cfg.Catalog,
		logger:  logger,
	}
	if err := probe(g.integration); err != nil {
		return nil, err
	}
	if err := probe(g.auth); err != nil {
		return nil, err
	}
	if cfg.Catalog.Len() == 0 {
		return nil, fmt.Errorf("compile catalog is empty")
	}
	return g, nil
}

func probe[T any](f family[T]) error {
	if f.space.Len() == 0 {
		return fmt.Errorf("%s axis space is empty", f.name)
	}
	cell := make(domain.Assignment, 0, f.space.Len())
	for _, axis := range f.space.Axes() {
		cell = append(cell, domain.Binding{Axis: axis.Name, Value: axis.Values[0]})
	}
	if _, err := f.bind(cell); err != nil {
		return fmt.Errorf("%s axis space: %w", f.name, err)
	}
	return nil
}

// Generate returns the surviving, decorated tasks of one family.
func (g *Generator) Generate(f Family) ([]domain.Task, error) {
	tasks, _, err := g.GenerateWithStats(f)
	return tasks, err
}

func (g *Generator) GenerateWithStats(f Family) ([]domain.Task, Stats, error) {
	var (
		tasks []domain.Task
		stats Stats
		err   error
	)
	switch f {
	case FamilyCompile:
		tasks, stats, err = g.compileTasks()
	case FamilyIntegration:
		tasks, stats, err = run(g.integration, g.logger)
	case FamilyAuth:
		tasks, stats, err = run(g.auth, g.logger)
	default:
		return nil, Stats{}, fmt.Errorf("unknown task family %q", f)
	}
	if err != nil {
		return nil, Stats{}, err
	}
	g.logger.Info("family generated",
		"family", string(f),
		"candidates", stats.Candidates,
		"accepted", stats.Accepted,
		"rejected", stats.RejectedTotal(),
	)
	return tasks, stats, nil
}

// GenerateAll generates every family.
func (g *Generator) GenerateAll() (Matrix, error) {
	var m Matrix
	for _, f := range Families() {
		tasks, stats, err := g.GenerateWithStats(f)
		if err != nil {
			return Matrix{}, err
		}
		switch f {
		case FamilyCompile:
			m.Compile = tasks
		case FamilyIntegration:
			m.Integration = tasks
		case FamilyAuth:
			m.Auth = tasks
		}
		m.Stats = append(m.Stats, stats)
	}
	return m, nil
}

func (g *Generator) compileTasks() ([]domain.Task, Stats, error) {
	defs := g.catalog.Tasks()
	stats := Stats{Family: FamilyCompile, Rejected: map[string]int{}}
	tasks := make([]domain.Task, 0, len(defs))
	for _, def := range defs {
		stats.Candidates++
		task := domain.NewCompile(def)
		if err := derive.Decorate(&task, nil); err != nil {
			return nil, Stats{}, fmt.Errorf("compile task %q: %w", def.Name, err)
		}
		tasks = append(tasks, task)
		stats.Accepted++
	}
	return tasks, stats, nil
}

func run[T any](f family[T], logger *slog.Logger) ([]domain.Task, Stats, error) {
	stats := Stats{Family: f.name, Rejected: map[string]int{}}
	order := f.space.Names()
	var tasks []domain.Task
	for _, cell := range Product(f.space) {
		stats.Candidates++
		candidate, err := f.bind(cell)
		if err != nil {
			return nil, Stats{}, err
		}
		decision := f.policy.Evaluate(candidate)
		if decision.Disallowed() {
			stats.Rejected[decision.Rule]++
			logger.Debug("candidate disallowed", "family", string(f.name), "rule", decision.Rule, "axes", cell.String())
			continue
		}
		task := f.wrap(candidate)
		if err := derive.Decorate(&task, order); err != nil {
			return nil, Stats{}, fmt.Errorf("%s task %s: %w", f.name, cell, err)
		}
		tasks = append(tasks, task)
		stats.Accepted++
	}
	return tasks, stats, nil
}

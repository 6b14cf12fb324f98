package derive

import (
	"fmt"
	"strings"

	"github.com/animus-labs/evergreen-matrix/internal/domain"
)

const (
	IntegrationPrefix = "test"
	AuthPrefix        = "authentication-tests"

	TagValgrind  = "test-valgrind"
	TagCoverage  = "test-coverage"
	TagASan      = "test-asan"
	TagAuthTests = "authentication-tests"
	TagSpecial   = "special"

	LongTimeoutSecs   = 7200
	MediumTimeoutSecs = 3600

	ValgrindCompileTask = "debug-compile-valgrind"
	ASanCompileTask     = "debug-compile-asan-clang"
)

// alwaysNamed axes contribute a name token even when absent.
var alwaysNamed = map[string]bool{
	domain.AxisAuth: true,
	domain.AxisSASL: true,
	domain.AxisSSL:  true,
}

var nameTokens = map[string]string{
	string(domain.TopologyReplicaSet): "replica-set",
	string(domain.TopologySharded):    "sharded",
}

// Decorate fills in a task's name, tags, options and dependencies. order is
// the axis declaration order of the task's family.
func Decorate(task *domain.Task, order []string) error {
	if task.Tags == nil {
		task.Tags = domain.TagSet{}
	}
	if task.Options == nil {
		task.Options = domain.Options{}
	}
	switch task.Kind {
	case domain.KindIntegration:
		if task.Integration == nil {
			return fmt.Errorf("integration task has no axes")
		}
		decorateIntegration(task, *task.Integration, order)
	case domain.KindAuth:
		if task.Auth == nil {
			return fmt.Errorf("auth task has no axes")
		}
		decorateAuth(task, *task.Auth)
	case domain.KindCompile:
		if task.Compile == nil {
			return fmt.Errorf("compile task has no definition")
		}
		task.Name = task.Compile.Name
		task.Tags.Add(task.Compile.Tags...)
		if task.Compile.Special {
			task.Tags.Add(TagSpecial)
		}
	default:
		return fmt.Errorf("unknown task kind %d", task.Kind)
	}
	return nil
}

func decorateIntegration(task *domain.Task, t domain.IntegrationTask, order []string) {
	task.Name = IntegrationName(t, order)
	task.Tags.Add(IntegrationTags(t)...)
	if secs, ok := IntegrationTimeout(t); ok {
		task.Options[domain.OptionExecTimeoutSecs] = secs
	}
	if dep, ok := IntegrationDependency(t); ok {
		task.DependsOn = append(task.DependsOn, dep)
	}
}

func decorateAuth(task *domain.Task, t domain.AuthTask) {
	task.Name = AuthName(t)
	task.Tags.Add(AuthTags(t)...)
	task.DependsOn = append(task.DependsOn, AuthDependency(t))
}

// IntegrationName joins per-axis display tokens in axis order. Absent axes
// are skipped except auth, sasl and ssl, which render as "no<axis>".
func IntegrationName(t domain.IntegrationTask, order []string) string {
	parts := make([]string, 0, len(order)+1)
	parts = append(parts, IntegrationPrefix)
	for _, axis := range order {
		v, ok := t.Get(axis)
		if !ok {
			continue
		}
		if !v.Set() && !alwaysNamed[axis] {
			continue
		}
		parts = append(parts, nameToken(axis, v))
	}
	return strings.Join(parts, "-")
}

func nameToken(axis string, v domain.Value) string {
	display := domain.Display(axis, v)
	if token, ok := nameTokens[display]; ok {
		return token
	}
	return display
}

func AuthName(t domain.AuthTask) string {
	name := AuthPrefix + "-" + domain.Display(domain.AxisSSL, t.SSL)
	if !t.SASL.Set() {
		name += "-nosasl"
	}
	return name
}

// IntegrationTags returns a single mode tag for valgrind, coverage and asan
// tasks, and the topology/version/display tags for everything else.
func IntegrationTags(t domain.IntegrationTask) []string {
	switch {
	case t.Valgrind.Set():
		return []string{TagValgrind}
	case t.Coverage.Set():
		return []string{TagCoverage}
	case t.ASan.Set():
		return []string{TagASan}
	}
	return []string{
		string(t.Topology),
		string(t.Version),
		domain.Display(domain.AxisSSL, t.SSL),
		domain.Display(domain.AxisSASL, t.SASL),
		domain.Display(domain.AxisAuth, t.Auth),
	}
}

func AuthTags(t domain.AuthTask) []string {
	return []string{
		TagAuthTests,
		domain.Display(domain.AxisSSL, t.SSL),
		domain.Display(domain.AxisSASL, t.SASL),
	}
}

func IntegrationTimeout(t domain.IntegrationTask) (int, bool) {
	switch {
	case t.Valgrind.Set():
		return LongTimeoutSecs, true
	case t.Coverage.Set(), t.ASan.Set():
		return MediumTimeoutSecs, true
	}
	return 0, false
}

// IntegrationDependency picks the compile task an integration task fetches
// its build from. Coverage tasks build inline and have no dependency.
func IntegrationDependency(t domain.IntegrationTask) (string, bool) {
	switch {
	case t.Valgrind.Set():
		return ValgrindCompileTask, true
	case t.ASan.Set() && t.SSL.Set():
		return ASanCompileTask + "-" + domain.Display(domain.AxisSSL, t.SSL), true
	case t.ASan.Set():
		return ASanCompileTask, true
	case t.Coverage.Set():
		return "", false
	}
	return CompileTaskName(t.SASL, t.SSL), true
}

func AuthDependency(t domain.AuthTask) string {
	return CompileTaskName(t.SASL, t.SSL)
}

// CompileTaskName is the debug compile task built with the given SASL and
// SSL backends, e.g. debug-compile-nosasl-openssl.
func CompileTaskName(sasl, ssl domain.Value) string {
	return "debug-compile-" + domain.Display(domain.AxisSASL, sasl) + "-" + domain.Display(domain.AxisSSL, ssl)
}

// CoverageBuildFunc is the build function coverage tasks call in place of a
// compile task dependency.
func CoverageBuildFunc(t domain.IntegrationTask) string {
	return "debug-compile-coverage-notest-" + domain.Display(domain.AxisSASL, t.SASL) + "-" + domain.Display(domain.AxisSSL, t.SSL)
}

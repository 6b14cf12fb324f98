package evergreen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/animus-labs/evergreen-matrix/internal/domain"
	"github.com/animus-labs/evergreen-matrix/internal/execution/derive"
)

const (
	FuncFetchBuild    = "fetch build"
	FuncUploadBuild   = "upload build"
	FuncBootstrap     = "bootstrap mongo-orchestration"
	FuncRunTests      = "run tests"
	FuncRunAuthTests  = "run auth tests"
	FuncUpdateCodecov = "update codecov.io"

	CompileWorkingDir = "mongoc"
)

const (
	compileScriptHead = "set -o errexit\nset -o xtrace\n"
	compileScriptTail = "CC='${CC}' MARCH='${MARCH}' sh .evergreen/compile.sh"
	commandShellExec  = "shell.exec"
	commandTypeTest   = "test"
	varBuildName      = "BUILD_NAME"
)

// Commands derives a task's command list. Any task with a dependency first
// fetches the dependency's build.
func Commands(task domain.Task) ([]domain.Command, error) {
	var cmds []domain.Command
	if len(task.DependsOn) > 0 {
		cmds = append(cmds, domain.FuncCall(FuncFetchBuild, domain.Var{Name: varBuildName, Value: task.DependsOn[0]}))
	}
	switch task.Kind {
	case domain.KindCompile:
		if task.Compile == nil {
			return nil, fmt.Errorf("compile task %q has no definition", task.Name)
		}
		return append(cmds, compileCommands(*task.Compile)...), nil
	case domain.KindIntegration:
		if task.Integration == nil {
			return nil, fmt.Errorf("integration task %q has no axes", task.Name)
		}
		return append(cmds, integrationCommands(*task.Integration)...), nil
	case domain.KindAuth:
		return append(cmds, domain.FuncCall(FuncRunAuthTests)), nil
	default:
		return nil, fmt.Errorf("task %q has unknown kind %d", task.Name, task.Kind)
	}
}

func compileCommands(c domain.CompileTask) []domain.Command {
	cmds := []domain.Command{
		{
			Command: commandShellExec,
			Type:    commandTypeTest,
			Params: &domain.ShellParams{
				WorkingDir:    CompileWorkingDir,
				Script:        CompileScript(c),
				ContinueOnErr: c.ContinueOnErr,
			},
		},
		domain.FuncCall(FuncUploadBuild),
	}
	return append(cmds, c.Clone().ExtraCommands...)
}

// CompileScript exports the task's compile.sh options in sorted order and
// runs the build.
func CompileScript(c domain.CompileTask) string {
	opts := c.ScriptOptions()
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(compileScriptHead)
	for _, k := range keys {
		fmt.Fprintf(&b, "export %s=\"%s\"\n", k, opts[k])
	}
	b.WriteString(compileScriptTail)
	return b.String()
}

func integrationCommands(t domain.IntegrationTask) []domain.Command {
	var cmds []domain.Command
	if t.Coverage.Set() {
		cmds = append(cmds, domain.FuncCall(derive.CoverageBuildFunc(t)))
	}
	ssl := domain.Display(domain.AxisSSL, t.SSL)
	auth := domain.Display(domain.AxisAuth, t.Auth)
	cmds = append(cmds,
		domain.FuncCall(FuncBootstrap,
			domain.Var{Name: "VERSION", Value: string(t.Version)},
			domain.Var{Name: "TOPOLOGY", Value: string(t.Topology)},
			domain.Var{Name: "AUTH", Value: auth},
			domain.Var{Name: "SSL", Value: ssl},
		),
		domain.FuncCall(FuncRunTests,
			domain.Var{Name: "VALGRIND", Value: onOff(t.Valgrind.Set())},
			domain.Var{Name: "ASAN", Value: onOff(t.ASan.Set())},
			domain.Var{Name: "AUTH", Value: auth},
			domain.Var{Name: "SSL", Value: ssl},
		),
	)
	if t.Coverage.Set() {
		cmds = append(cmds, domain.FuncCall(FuncUpdateCodecov))
	}
	return cmds
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

package evergreen

import (
	"reflect"
	"strings"
	"testing"

	"github.com/animus-labs/evergreen-matrix/internal/domain"
	"github.com/animus-labs/evergreen-matrix/internal/execution/derive"
)

func decorated(t *testing.T, task domain.Task, order []string) domain.Task {
	t.Helper()
	if err := derive.Decorate(&task, order); err != nil {
		t.Fatalf("Decorate: %v", err)
	}
	return task
}

func integrationOrder(t *testing.T) []string {
	t.Helper()
	space, err := domain.IntegrationAxisSpace(nil)
	if err != nil {
		t.Fatalf("IntegrationAxisSpace: %v", err)
	}
	return space.Names()
}

func TestCommandsIntegration(t *testing.T) {
	task := decorated(t, domain.NewIntegration(domain.IntegrationTask{
		Valgrind: "valgrind",
		Version:  "3.6",
		Topology: domain.TopologyReplicaSet,
		Auth:     "auth",
		SSL:      domain.SSLOpenSSL,
	}), integrationOrder(t))

	cmds, err := Commands(task)
	if err != nil {
		t.Fatalf("Commands: %v", err)
	}
	funcs := make([]string, 0, len(cmds))
	for _, c := range cmds {
		funcs = append(funcs, c.Func)
	}
	if want := []string{FuncFetchBuild, FuncBootstrap, FuncRunTests}; !reflect.DeepEqual(funcs, want) {
		t.Fatalf("funcs=%v, want %v", funcs, want)
	}
	if cmds[0].Vars[0] != (domain.Var{Name: "BUILD_NAME", Value: derive.ValgrindCompileTask}) {
		t.Fatalf("fetch build vars=%v", cmds[0].Vars)
	}
	wantRun := []domain.Var{
		{Name: "VALGRIND", Value: "on"},
		{Name: "ASAN", Value: "off"},
		{Name: "AUTH", Value: "auth"},
		{Name: "SSL", Value: "openssl"},
	}
	if !reflect.DeepEqual(cmds[2].Vars, wantRun) {
		t.Fatalf("run tests vars=%v, want %v", cmds[2].Vars, wantRun)
	}
}

func TestCommandsCoverage(t *testing.T) {
	task := decorated(t, domain.NewIntegration(domain.IntegrationTask{
		Coverage: "coverage",
		Version:  domain.VersionLatest,
		Topology: domain.TopologyServer,
	}), integrationOrder(t))

	cmds, err := Commands(task)
	if err != nil {
		t.Fatalf("Commands: %v", err)
	}
	if len(cmds) != 4 {
		t.Fatalf("len(cmds)=%d, want 4", len(cmds))
	}
	if cmds[0].Func != "debug-compile-coverage-notest-nosasl-nossl" {
		t.Fatalf("first command=%q, want coverage build", cmds[0].Func)
	}
	if cmds[3].Func != FuncUpdateCodecov {
		t.Fatalf("last command=%q, want %q", cmds[3].Func, FuncUpdateCodecov)
	}
}

func TestCompileScript(t *testing.T) {
	script := CompileScript(domain.CompileTask{
		Name:        "debug-compile-compression-zlib",
		Compression: domain.CompressionZlib,
		Options:     map[string]string{"CFLAGS": "-flto"},
	})
	want := "set -o errexit\nset -o xtrace\n" +
		"export CFLAGS=\"-flto\"\n" +
		"export DEBUG=\"ON\"\n" +
		"export SNAPPY=\"OFF\"\n" +
		"export ZLIB=\"BUNDLED\"\n" +
		"CC='${CC}' MARCH='${MARCH}' sh .evergreen/compile.sh"
	if script != want {
		t.Fatalf("CompileScript()=\n%s\nwant\n%s", script, want)
	}
}

func TestNewDocumentOrder(t *testing.T) {
	compileB := decorated(t, domain.NewCompile(domain.CompileTask{Name: "z-compile"}), nil)
	compileA := decorated(t, domain.NewCompile(domain.CompileTask{Name: "a-compile"}), nil)
	authSSL := decorated(t, domain.NewAuth(domain.AuthTask{SASL: domain.SASLCyrus, SSL: domain.SSLOpenSSL}), nil)
	authDarwin := decorated(t, domain.NewAuth(domain.AuthTask{SASL: domain.SASLCyrus, SSL: domain.SSLDarwin}), nil)

	doc, err := NewDocument([]domain.Task{authSSL, compileB, authDarwin, compileA})
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	got := make([]string, 0, len(doc.Tasks))
	for _, r := range doc.Tasks {
		got = append(got, r.Name)
	}
	want := []string{"z-compile", "a-compile", "authentication-tests-darwinssl", "authentication-tests-openssl"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order=%v, want %v", got, want)
	}
}

func TestRender(t *testing.T) {
	compile := decorated(t, domain.NewCompile(domain.CompileTask{
		Name:          "debug-compile-scan-build",
		Tags:          []string{"scan-build", "clang"},
		Special:       true,
		ContinueOnErr: true,
	}), nil)
	valgrind := decorated(t, domain.NewIntegration(domain.IntegrationTask{
		Valgrind: "valgrind",
		Version:  "3.6",
		Topology: domain.TopologyServer,
	}), integrationOrder(t))

	doc, err := NewDocument([]domain.Task{valgrind, compile})
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	data, err := Render(doc)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := string(data)

	for _, want := range []string{
		"name: debug-compile-scan-build",
		"tags: [clang, scan-build, special]",
		"continue_on_err: true",
		"script: |-",
		`export DEBUG="ON"`,
		"name: test-valgrind-3.6-server-noauth-nosasl-nossl",
		"exec_timeout_secs: 7200",
		"- name: debug-compile-valgrind",
		`VERSION: "3.6"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered document missing %q:\n%s", want, out)
		}
	}
	if !strings.HasPrefix(out, Header) {
		t.Fatalf("rendered document must start with header")
	}
	if strings.Index(out, "debug-compile-scan-build") > strings.Index(out, "test-valgrind") {
		t.Fatalf("compile tasks must precede integration tasks")
	}
	nameAt := strings.Index(out, "name: test-valgrind")
	tagsAt := strings.Index(out[nameAt:], "tags:")
	depsAt := strings.Index(out[nameAt:], "depends_on:")
	cmdsAt := strings.Index(out[nameAt:], "commands:")
	if !(tagsAt < depsAt && depsAt < cmdsAt) {
		t.Fatalf("record keys out of order:\n%s", out[nameAt:])
	}

	again, err := Render(doc)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if Digest(data) != Digest(again) {
		t.Fatalf("Render is not deterministic")
	}
	if len(Digest(data)) != 64 {
		t.Fatalf("Digest must be hex sha256")
	}
}

package catalog

import (
	"testing"

	"github.com/animus-labs/evergreen-matrix/internal/domain"
)

func TestDefaultCatalog(t *testing.T) {
	cat, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if cat.Len() != 25 {
		t.Fatalf("Len()=%d, want 25", cat.Len())
	}

	deps := []string{
		"debug-compile-asan-clang",
		"debug-compile-asan-clang-openssl",
		"debug-compile-nosasl-darwinssl",
		"debug-compile-nosasl-nossl",
		"debug-compile-nosasl-openssl",
		"debug-compile-nosasl-winssl",
		"debug-compile-sasl-darwinssl",
		"debug-compile-sasl-openssl",
		"debug-compile-sasl-winssl",
		"debug-compile-sspi-winssl",
		"debug-compile-valgrind",
	}
	for _, name := range deps {
		if !cat.Has(name) {
			t.Fatalf("catalog is missing %s", name)
		}
	}

	sspi, ok := cat.Get("debug-compile-sspi-winssl")
	if !ok {
		t.Fatalf("Get(debug-compile-sspi-winssl) not found")
	}
	if sspi.Options["SASL"] != "SSPI" || sspi.Options["SSL"] != "WINDOWS" {
		t.Fatalf("unexpected sspi options %v", sspi.Options)
	}

	scan, _ := cat.Get("debug-compile-scan-build")
	if !scan.ContinueOnErr || len(scan.ExtraCommands) == 0 {
		t.Fatalf("scan-build must continue on error and carry extra commands: %+v", scan)
	}
}

func TestCatalogOrderAndCopies(t *testing.T) {
	cat, err := New(
		domain.CompileTask{Name: "b", Tags: []string{"x"}},
		domain.CompileTask{Name: "a"},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	names := cat.Names()
	if len(names) != 2 || names[0] != "b" || names[1] != "a" {
		t.Fatalf("Names()=%v, want declaration order", names)
	}

	tasks := cat.Tasks()
	tasks[0].Tags[0] = "mutated"
	if again, _ := cat.Get("b"); again.Tags[0] != "x" {
		t.Fatalf("Tasks() leaks catalog state")
	}
}

func TestNewRejectsInvalidTasks(t *testing.T) {
	if _, err := New(domain.CompileTask{Name: "a"}, domain.CompileTask{Name: "a"}); err == nil {
		t.Fatalf("expected duplicate error")
	}
	if _, err := New(domain.CompileTask{}); err == nil {
		t.Fatalf("expected validation error")
	}
}

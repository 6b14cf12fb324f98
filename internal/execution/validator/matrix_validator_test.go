package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/animus-labs/evergreen-matrix/internal/catalog"
	"github.com/animus-labs/evergreen-matrix/internal/domain"
	"github.com/animus-labs/evergreen-matrix/internal/execution/derive"
)

func testCatalog(t *testing.T) catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(domain.CompileTask{Name: "debug-compile-nosasl-openssl"})
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return cat
}

func authTask(name string, deps ...string) domain.Task {
	task := domain.NewAuth(domain.AuthTask{SSL: domain.SSLOpenSSL})
	task.Name = name
	task.DependsOn = deps
	return task
}

func TestValidateTasks(t *testing.T) {
	valgrindAndASan := domain.NewIntegration(domain.IntegrationTask{})
	valgrindAndASan.Name = "test-mixed"
	valgrindAndASan.Tags.Add(derive.TagValgrind, derive.TagASan)

	tests := []struct {
		name      string
		tasks     []domain.Task
		wantIssue string
	}{
		{
			name:  "ok",
			tasks: []domain.Task{authTask("a", "debug-compile-nosasl-openssl"), authTask("b", "a")},
		},
		{
			name:      "missing name",
			tasks:     []domain.Task{authTask("")},
			wantIssue: "name is required",
		},
		{
			name:      "duplicate name",
			tasks:     []domain.Task{authTask("a"), authTask("a")},
			wantIssue: "duplicate task name",
		},
		{
			name:      "unknown dependency",
			tasks:     []domain.Task{authTask("a", "debug-compile-gnutls")},
			wantIssue: "unknown task",
		},
		{
			name:      "self dependency",
			tasks:     []domain.Task{authTask("a", "a")},
			wantIssue: "depends on itself",
		},
		{
			name:      "cycle",
			tasks:     []domain.Task{authTask("a", "b"), authTask("b", "a")},
			wantIssue: "cycle",
		},
		{
			name:      "two mode tags",
			tasks:     []domain.Task{valgrindAndASan},
			wantIssue: "mode tags",
		},
	}

	cat := testCatalog(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTasks(tt.tasks, cat)
			if tt.wantIssue == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !strings.Contains(verr.Error(), tt.wantIssue) {
				t.Fatalf("error %q does not mention %q", verr.Error(), tt.wantIssue)
			}
		})
	}
}

func TestValidationErrorOrNil(t *testing.T) {
	var empty ValidationError
	if empty.OrNil() != nil {
		t.Fatalf("empty ValidationError must be nil")
	}
	empty.Add("  ")
	if empty.OrNil() != nil {
		t.Fatalf("blank issues must be ignored")
	}
	empty.Add("x")
	if empty.OrNil() == nil {
		t.Fatalf("expected error")
	}
}

package constraint

import (
	"reflect"
	"testing"

	"github.com/animus-labs/evergreen-matrix/internal/domain"
)

func integrationCells(t *testing.T) []domain.IntegrationTask {
	t.Helper()
	space, err := domain.IntegrationAxisSpace(nil)
	if err != nil {
		t.Fatalf("IntegrationAxisSpace: %v", err)
	}
	var out []domain.IntegrationTask
	var walk func(axes []domain.Axis, cell domain.Assignment)
	walk = func(axes []domain.Axis, cell domain.Assignment) {
		if len(axes) == 0 {
			task, err := domain.BindIntegration(cell)
			if err != nil {
				t.Fatalf("BindIntegration: %v", err)
			}
			out = append(out, task)
			return
		}
		for _, v := range axes[0].Values {
			walk(axes[1:], append(cell[:len(cell):len(cell)], domain.Binding{Axis: axes[0].Name, Value: v}))
		}
	}
	walk(space.Axes(), nil)
	return out
}

func TestNewPolicyValidation(t *testing.T) {
	ok := func(int) bool { return true }
	if _, err := NewPolicy[int]("empty"); err == nil {
		t.Fatalf("expected error for policy without rules")
	}
	if _, err := NewPolicy("dup", Rule[int]{Name: "a", Check: ok}, Rule[int]{Name: "a", Check: ok}); err == nil {
		t.Fatalf("expected error for duplicate rule")
	}
	if _, err := NewPolicy("nil", Rule[int]{Name: "a"}); err == nil {
		t.Fatalf("expected error for rule without check")
	}
	if _, err := NewPolicy("blank", Rule[int]{Name: " ", Check: ok}); err == nil {
		t.Fatalf("expected error for unnamed rule")
	}
}

func TestEvaluateReportsFirstFailingRule(t *testing.T) {
	p, err := NewPolicy("ints",
		Rule[int]{Name: "positive", Check: func(n int) bool { return n > 0 }},
		Rule[int]{Name: "even", Check: func(n int) bool { return n%2 == 0 }},
	)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	if d := p.Evaluate(-3); d.Allowed || d.Rule != "positive" {
		t.Fatalf("Evaluate(-3)=%+v, want positive", d)
	}
	if d := p.Evaluate(3); d.Allowed || d.Rule != "even" {
		t.Fatalf("Evaluate(3)=%+v, want even", d)
	}
	if !p.Accepts(4) {
		t.Fatalf("Accepts(4)=false")
	}
	if got, want := p.RuleNames(), []string{"positive", "even"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("RuleNames()=%v, want %v", got, want)
	}
}

func TestCombinators(t *testing.T) {
	if !Implies(false, false) || Implies(true, false) || !Implies(true, true) {
		t.Fatalf("Implies truth table")
	}
	if !BothOrNeither(true, true) || !BothOrNeither(false, false) || BothOrNeither(true, false) {
		t.Fatalf("BothOrNeither truth table")
	}
	if Require(false) || Prohibit(true) {
		t.Fatalf("Require/Prohibit")
	}
}

func TestIntegrationPolicyCounts(t *testing.T) {
	policy := IntegrationPolicy()
	cells := integrationCells(t)
	if len(cells) != 3456 {
		t.Fatalf("cells=%d, want 3456", len(cells))
	}
	accepted := 0
	for _, cell := range cells {
		if policy.Accepts(cell) {
			accepted++
		}
	}
	if accepted != 343 {
		t.Fatalf("accepted=%d, want 343", accepted)
	}
}

func TestIntegrationPolicySoundness(t *testing.T) {
	policy := IntegrationPolicy()
	for _, cell := range integrationCells(t) {
		if !policy.Accepts(cell) {
			continue
		}
		if cell.Valgrind.Set() {
			if cell.ASan.Set() || cell.SASL.Set() || cell.Coverage.Set() {
				t.Fatalf("valgrind task mixes modes: %+v", cell)
			}
			if !cell.SSL.In(domain.SSLOpenSSL, domain.Absent) {
				t.Fatalf("valgrind task with ssl %q", cell.SSL)
			}
			if cell.Auth.Set() != (cell.SSL == domain.SSLOpenSSL) {
				t.Fatalf("valgrind auth/ssl mismatch: %+v", cell)
			}
		}
		if cell.Auth.Set() && !cell.SSL.Set() {
			t.Fatalf("auth without ssl: %+v", cell)
		}
		if cell.SASL.Set() && !cell.SSL.Set() {
			t.Fatalf("sasl without ssl: %+v", cell)
		}
		if cell.SASL == domain.SASLSSPI {
			if cell.Topology != domain.TopologyServer || cell.Version != domain.VersionLatest ||
				cell.SSL != domain.SSLWindows || !cell.Auth.Set() {
				t.Fatalf("sspi task outside its only legal cell: %+v", cell)
			}
		}
		if cell.ASan.Set() && cell.Coverage.Set() {
			t.Fatalf("asan with coverage: %+v", cell)
		}
	}
}

func TestIntegrationPolicyScenarios(t *testing.T) {
	base := domain.IntegrationTask{
		Version:  domain.VersionLatest,
		Topology: domain.TopologyServer,
		Auth:     "auth",
		SSL:      domain.SSLOpenSSL,
	}
	tests := []struct {
		name     string
		mutate   func(*domain.IntegrationTask)
		wantRule string
	}{
		{name: "plain auth openssl", mutate: func(*domain.IntegrationTask) {}},
		{name: "valgrind auth openssl", mutate: func(c *domain.IntegrationTask) { c.Valgrind = "valgrind" }},
		{name: "valgrind with sasl", mutate: func(c *domain.IntegrationTask) { c.Valgrind = "valgrind"; c.SASL = domain.SASLCyrus }, wantRule: "valgrind"},
		{name: "valgrind with darwinssl", mutate: func(c *domain.IntegrationTask) { c.Valgrind = "valgrind"; c.SSL = domain.SSLDarwin }, wantRule: "valgrind"},
		{name: "auth without ssl", mutate: func(c *domain.IntegrationTask) { c.SSL = domain.Absent }, wantRule: "auth-requires-ssl"},
		{
			name: "sspi on replica set",
			mutate: func(c *domain.IntegrationTask) {
				c.SASL = domain.SASLSSPI
				c.SSL = domain.SSLWindows
				c.Topology = domain.TopologyReplicaSet
			},
			wantRule: "sspi",
		},
		{
			name: "sspi on latest server",
			mutate: func(c *domain.IntegrationTask) {
				c.SASL = domain.SASLSSPI
				c.SSL = domain.SSLWindows
			},
		},
		{
			name: "sasl without ssl",
			mutate: func(c *domain.IntegrationTask) {
				c.Auth = domain.Absent
				c.SSL = domain.Absent
				c.SASL = domain.SASLCyrus
			},
			wantRule: "sasl-requires-ssl",
		},
		{name: "coverage with sasl", mutate: func(c *domain.IntegrationTask) { c.Coverage = "coverage"; c.SASL = domain.SASLCyrus }, wantRule: "coverage"},
		{name: "asan with coverage", mutate: func(c *domain.IntegrationTask) { c.ASan = "asan"; c.Coverage = "coverage" }, wantRule: "asan"},
		{name: "asan without auth but ssl", mutate: func(c *domain.IntegrationTask) { c.ASan = "asan"; c.Auth = domain.Absent }, wantRule: "asan"},
	}
	policy := IntegrationPolicy()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell := base
			tt.mutate(&cell)
			d := policy.Evaluate(cell)
			if tt.wantRule == "" {
				if !d.Allowed {
					t.Fatalf("Evaluate()=%+v, want allowed", d)
				}
				return
			}
			if d.Allowed || d.Rule != tt.wantRule {
				t.Fatalf("Evaluate()=%+v, want rule %q", d, tt.wantRule)
			}
		})
	}
}

func TestAuthPolicy(t *testing.T) {
	policy := AuthPolicy()
	space, err := domain.AuthAxisSpace()
	if err != nil {
		t.Fatalf("AuthAxisSpace: %v", err)
	}
	sasl, _ := space.Axis(domain.AxisSASL)
	ssl, _ := space.Axis(domain.AxisSSL)

	var accepted []domain.AuthTask
	for _, s := range sasl.Values {
		for _, l := range ssl.Values {
			cell := domain.AuthTask{SASL: s, SSL: l}
			if policy.Accepts(cell) {
				accepted = append(accepted, cell)
			}
		}
	}
	want := []domain.AuthTask{
		{SASL: domain.SASLCyrus, SSL: domain.SSLOpenSSL},
		{SASL: domain.SASLCyrus, SSL: domain.SSLDarwin},
		{SASL: domain.SASLSSPI, SSL: domain.SSLWindows},
		{SASL: domain.Absent, SSL: domain.SSLOpenSSL},
	}
	if !reflect.DeepEqual(accepted, want) {
		t.Fatalf("accepted=%v, want %v", accepted, want)
	}

	d := policy.Evaluate(domain.AuthTask{SASL: domain.Absent, SSL: domain.SSLDarwin})
	if d.Allowed || d.Rule != "nosasl-requires-openssl" {
		t.Fatalf("Evaluate(nosasl, darwinssl)=%+v", d)
	}
	d = policy.Evaluate(domain.AuthTask{SASL: domain.SASLCyrus, SSL: domain.SSLWindows})
	if d.Allowed || d.Rule != "winssl-iff-sspi" {
		t.Fatalf("Evaluate(sasl, winssl)=%+v", d)
	}
}

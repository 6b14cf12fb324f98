package constraint

import "github.com/animus-labs/evergreen-matrix/internal/domain"

// IntegrationPolicy returns the legality rules for integration test tasks.
// Every rule must hold; evaluation order only decides which rule is reported.
func IntegrationPolicy() Policy[domain.IntegrationTask] {
	return mustPolicy("integration",
		Rule[domain.IntegrationTask]{Name: "valgrind", Check: valgrindRule},
		Rule[domain.IntegrationTask]{Name: "auth-requires-ssl", Check: func(t domain.IntegrationTask) bool {
			return Implies(t.Auth.Set(), Require(t.SSL.Set()))
		}},
		Rule[domain.IntegrationTask]{Name: "sspi", Check: sspiRule},
		Rule[domain.IntegrationTask]{Name: "sasl-requires-ssl", Check: func(t domain.IntegrationTask) bool {
			return Implies(!t.SSL.Set(), Prohibit(t.SASL.Set()))
		}},
		Rule[domain.IntegrationTask]{Name: "coverage", Check: coverageRule},
		Rule[domain.IntegrationTask]{Name: "asan", Check: asanRule},
	)
}

func valgrindRule(t domain.IntegrationTask) bool {
	if !t.Valgrind.Set() {
		return true
	}
	return Prohibit(t.ASan.Set()) &&
		Prohibit(t.SASL.Set()) &&
		Require(t.SSL.In(domain.SSLOpenSSL, domain.Absent)) &&
		Prohibit(t.Coverage.Set()) &&
		openSSLWithAuthOnly(t)
}

func sspiRule(t domain.IntegrationTask) bool {
	if t.SASL != domain.SASLSSPI {
		return true
	}
	return Require(t.Topology == domain.TopologyServer) &&
		Require(t.Version == domain.VersionLatest) &&
		Require(t.SSL == domain.SSLWindows) &&
		Require(t.Auth.Set())
}

func coverageRule(t domain.IntegrationTask) bool {
	if !t.Coverage.Set() {
		return true
	}
	return Prohibit(t.SASL.Set()) && openSSLWithAuthOnly(t)
}

func asanRule(t domain.IntegrationTask) bool {
	if !t.ASan.Set() {
		return true
	}
	return Prohibit(t.SASL.Set()) &&
		Prohibit(t.Coverage.Set()) &&
		openSSLWithAuthOnly(t)
}

// openSSLWithAuthOnly allows auth with OpenSSL or no auth without SSL.
func openSSLWithAuthOnly(t domain.IntegrationTask) bool {
	if t.Auth.Set() {
		return Require(t.SSL == domain.SSLOpenSSL)
	}
	return Prohibit(t.SSL.Set())
}

package constraint

import "github.com/animus-labs/evergreen-matrix/internal/domain"

// AuthPolicy returns the legality rules for authentication test tasks.
func AuthPolicy() Policy[domain.AuthTask] {
	return mustPolicy("auth",
		Rule[domain.AuthTask]{Name: "winssl-iff-sspi", Check: func(t domain.AuthTask) bool {
			return BothOrNeither(t.SSL == domain.SSLWindows, t.SASL == domain.SASLSSPI)
		}},
		Rule[domain.AuthTask]{Name: "nosasl-requires-openssl", Check: func(t domain.AuthTask) bool {
			return Implies(!t.SASL.Set(), Require(t.SSL == domain.SSLOpenSSL))
		}},
	)
}

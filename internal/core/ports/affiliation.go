package ports

import "github.com/SvHu/svs/internal/core/domain"

// AffiliationProvider is the port interface for the externally supplied
// affiliation policy. The returned function is pure and keyed by the
// transaction's scope.
type AffiliationProvider interface {
	// Func returns the affiliation check for the given scope.
	Func(scope domain.Scope) domain.AffiliationFunc
}

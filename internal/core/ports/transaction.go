package ports

import (
	"errors"

	"github.com/SvHu/svs/internal/core/domain"
)

// ErrTransactionNotFound is returned when a transaction token is invalid,
// expired, or unknown.
var ErrTransactionNotFound = errors.New("transaction not found")

// TransactionStore is the port interface for the external transaction store.
// This core only ever reads the transaction context; all cross-step
// continuity lives outside the process.
type TransactionStore interface {
	// Get resolves an opaque transaction token to its context. Returns
	// ErrTransactionNotFound when the token cannot be resolved.
	Get(token string) (*domain.TransactionContext, error)
}

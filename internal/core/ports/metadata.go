package ports

import (
	"context"
	"errors"

	"github.com/SvHu/svs/internal/core/domain"
)

// ErrEntityNotFound is returned when the metadata service has no entry for an
// entity id.
var ErrEntityNotFound = errors.New("entity not found in metadata")

// MetadataLookup is the port interface for the federation metadata service
// (an MDQ-style on-demand source). Implementations must be safe for
// concurrent use.
//
// SSOEndpoints performs network I/O; callers bound it with the context and
// treat timeout or connection failure as metadata_unavailable, a condition
// the user may retry.
type MetadataLookup interface {
	// SSOEndpoints returns the IdP's single-sign-on service endpoints keyed
	// by binding URN, in metadata order. Returns ErrEntityNotFound when the
	// entity is unknown.
	SSOEndpoints(ctx context.Context, entityID string) (map[string][]domain.Endpoint, error)
}

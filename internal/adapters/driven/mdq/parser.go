package mdq

import (
	"encoding/xml"
	"fmt"

	"github.com/crewjam/saml"

	"github.com/SvHu/svs/internal/core/ports"
)

// parseEntityDescriptor parses an MDQ response body. MDQ services answer
// per-entity queries with a single EntityDescriptor, but some aggregate
// implementations wrap it in an EntitiesDescriptor; both are accepted.
func parseEntityDescriptor(data []byte, entityID string) (*saml.EntityDescriptor, error) {
	var ed saml.EntityDescriptor
	if err := xml.Unmarshal(data, &ed); err == nil && ed.EntityID != "" {
		return &ed, nil
	}

	var entities saml.EntitiesDescriptor
	if err := xml.Unmarshal(data, &entities); err != nil {
		return nil, fmt.Errorf("parse mdq response: %w", err)
	}
	for i := range entities.EntityDescriptors {
		if entities.EntityDescriptors[i].EntityID == entityID {
			return &entities.EntityDescriptors[i], nil
		}
	}
	return nil, ports.ErrEntityNotFound
}

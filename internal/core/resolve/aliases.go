package resolve

import (
	"context"
	"fmt"

	"github.com/atlastrail/cascade/internal/core/common"
	"github.com/atlastrail/cascade/internal/store"
)

// AliasMap maps normalized names (canonical and aliases) to a resolved
// destination id. It is built once per run and read-only afterwards.
type AliasMap map[string]string

// LoadAliasMap reads the versioned alias table in one query. A failure here
// fails the enclosing resolution step.
func LoadAliasMap(ctx context.Context, s store.Store) (AliasMap, error) {
	docs, err := s.FindMany(ctx, store.CollAliases, store.Filter{}, 0)
	if err != nil {
		return nil, fmt.Errorf("load alias map: %w", err)
	}

	m := AliasMap{}
	for _, doc := range docs {
		destID := store.Str(doc, "destination")
		if destID == "" {
			continue
		}
		if canonical := common.Normalize(store.Str(doc, "canonical")); canonical != "" {
			m[canonical] = destID
		}
		for _, alias := range store.Strs(doc, "aliases") {
			if key := common.Normalize(alias); key != "" {
				m[key] = destID
			}
		}
	}
	return m, nil
}

package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/calebdray/storywalk/pkg/progression"
)

// LoadCatalog reads the static exchange catalog from the data directory.
// The catalog is fixed configuration loaded once at startup; changing it is
// a content change, not a runtime mutation.
func LoadCatalog(dataDir string) (progression.Catalog, error) {
	if dataDir == "" {
		dataDir = "./data"
	}
	path := filepath.Join(dataDir, "catalog.json")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var catalog progression.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}

	if errs := catalog.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid catalog: %s", errs[0])
	}

	return catalog, nil
}

package screen

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/caseworks/entitygraph/pkg/common"
)

// FileLoader reads a reference list from an SDN-style JSON document: an
// array of {uid, name, entry_type, program, aliases} records.
type FileLoader struct {
	Path string
}

// Load reads and decodes the reference list document.
func (l FileLoader) Load() ([]common.ReferenceEntry, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference list %s: %w", l.Path, err)
	}

	var entries []common.ReferenceEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode reference list %s: %w", l.Path, err)
	}
	return entries, nil
}

// StaticLoader serves a fixed in-memory reference list. Useful for tests
// and for callers that fetch the list themselves.
type StaticLoader struct {
	Entries []common.ReferenceEntry
}

// Load returns the fixed entries.
func (l StaticLoader) Load() ([]common.ReferenceEntry, error) {
	return l.Entries, nil
}

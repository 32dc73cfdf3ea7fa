// Package taxonomy holds the fixed classification/sector taxonomy and the
// keyword-based heuristic classifier used as a fallback for the model.
package taxonomy

import (
	_ "embed"
	"os"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTablesYAML []byte

// Entry is one ordered (label, keywords) row of a keyword table.
type Entry struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// Tables is the keyword policy injected into a Classifier. Entry order is
// significant: it is the tie-break priority.
type Tables struct {
	Funding        []Entry           `yaml:"funding"`
	Sectors        []Entry           `yaml:"sectors"`
	DefaultSectors map[string]string `yaml:"default_sectors"`
}

// ParseTables decodes and validates a YAML keyword-table document.
func ParseTables(data []byte) (Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tables{}, eris.Wrap(err, "taxonomy: decode tables")
	}
	if err := t.Validate(); err != nil {
		return Tables{}, err
	}
	return t, nil
}

// LoadTablesFile reads keyword tables from a YAML file.
func LoadTablesFile(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, eris.Wrapf(err, "taxonomy: read %s", path)
	}
	return ParseTables(data)
}

// Validate checks that every label belongs to the fixed taxonomy and that
// keywords are lower-case (matching is done against lower-cased text).
func (t Tables) Validate() error {
	if len(t.Funding) == 0 {
		return eris.New("taxonomy: funding table is empty")
	}
	for _, e := range t.Funding {
		if _, ok := CanonicalClassification(e.Label); !ok {
			return eris.Errorf("taxonomy: unknown funding label %q", e.Label)
		}
		if err := checkKeywords(e); err != nil {
			return err
		}
	}
	for _, e := range t.Sectors {
		if _, ok := CanonicalSector(e.Label); !ok {
			return eris.Errorf("taxonomy: unknown sector label %q", e.Label)
		}
		if err := checkKeywords(e); err != nil {
			return err
		}
	}
	for fc, sector := range t.DefaultSectors {
		if _, ok := CanonicalClassification(fc); !ok {
			return eris.Errorf("taxonomy: unknown default-sector classification %q", fc)
		}
		if _, ok := CanonicalSector(sector); !ok {
			return eris.Errorf("taxonomy: unknown default sector %q", sector)
		}
	}
	return nil
}

func checkKeywords(e Entry) error {
	for _, kw := range e.Keywords {
		if kw == "" {
			return eris.Errorf("taxonomy: empty keyword under %q", e.Label)
		}
		if kw != strings.ToLower(kw) {
			return eris.Errorf("taxonomy: keyword %q under %q must be lower-case", kw, e.Label)
		}
	}
	return nil
}

var defaultTables = sync.OnceValue(func() Tables {
	t, err := ParseTables(defaultTablesYAML)
	if err != nil {
		panic(err)
	}
	return t
})

// DefaultTables returns the embedded keyword tables.
func DefaultTables() Tables {
	return defaultTables()
}

package taxonomy

import (
	"strings"
	"sync"

	"github.com/sells-group/enrich-cli/internal/model"
)

// MaxInferredSectors caps the number of sectors returned by InferSectors.
const MaxInferredSectors = 4

// Classifier runs keyword heuristics over free text. It is immutable and
// safe for concurrent use.
type Classifier struct {
	funding        []Entry
	sectors        []Entry
	defaultSectors map[string]string
}

// NewClassifier builds a Classifier from the given tables.
func NewClassifier(t Tables) *Classifier {
	defaults := make(map[string]string, len(t.DefaultSectors))
	for fc, sector := range t.DefaultSectors {
		defaults[fc] = sector
	}
	return &Classifier{
		funding:        append([]Entry(nil), t.Funding...),
		sectors:        append([]Entry(nil), t.Sectors...),
		defaultSectors: defaults,
	}
}

var defaultClassifier = sync.OnceValue(func() *Classifier {
	return NewClassifier(DefaultTables())
})

// Default returns the classifier built from the embedded tables.
func Default() *Classifier {
	return defaultClassifier()
}

// ClassifyHeuristically returns the first funding label whose keywords occur
// in "{name} {text}". It never returns "": with no hit the answer is
// Investment Firms, which also covers plain banks.
func (c *Classifier) ClassifyHeuristically(name, text string) string {
	s := strings.ToLower(name + " " + text)
	for _, e := range c.funding {
		if containsAny(s, e.Keywords) {
			return e.Label
		}
	}
	return model.ClassInvestmentFirms
}

// InferSectors returns the sectors with at least one keyword hit, in table
// order, capped at MaxInferredSectors. Order is not by hit count.
func (c *Classifier) InferSectors(text string) []string {
	s := strings.ToLower(text)
	var hits []string
	for _, e := range c.sectors {
		if containsAny(s, e.Keywords) {
			hits = append(hits, e.Label)
			if len(hits) == MaxInferredSectors {
				break
			}
		}
	}
	return hits
}

// DefaultSector is the sector assigned when neither the model nor the
// keyword tables produced one.
func (c *Classifier) DefaultSector(classification string) string {
	if s, ok := c.defaultSectors[classification]; ok {
		return s
	}
	return model.SectorBusiness
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

package taxonomy

import (
	"strings"

	"github.com/sells-group/enrich-cli/internal/model"
)

var (
	classificationIndex = foldIndex(model.FundingClassifications())
	stageIndex          = foldIndex(model.Stages())
	sectorIndex         = func() map[string]string {
		idx := foldIndex(model.Sectors())
		idx[strings.ToLower(model.SectorICTLong)] = model.SectorICT
		return idx
	}()
)

func foldIndex(labels []string) map[string]string {
	idx := make(map[string]string, len(labels))
	for _, l := range labels {
		idx[strings.ToLower(l)] = l
	}
	return idx
}

// CanonicalClassification maps a label to its exact taxonomy spelling,
// ignoring case and surrounding space.
func CanonicalClassification(s string) (string, bool) {
	v, ok := classificationIndex[strings.ToLower(strings.TrimSpace(s))]
	return v, ok
}

// CanonicalSector maps a sector label to its taxonomy spelling. The long
// ICT form resolves to the short "ICT" label.
func CanonicalSector(s string) (string, bool) {
	v, ok := sectorIndex[strings.ToLower(strings.TrimSpace(s))]
	return v, ok
}

// CanonicalStage maps a stage label to its taxonomy spelling, so the
// "Pre-seed" tier returned by InferStageFromTicket resolves to "Pre-Seed".
func CanonicalStage(s string) (string, bool) {
	v, ok := stageIndex[strings.ToLower(strings.TrimSpace(s))]
	return v, ok
}

// SectorForSheet applies the write alias for sector labels.
func SectorForSheet(s string) string {
	if s == model.SectorICTLong {
		return model.SectorICT
	}
	return s
}

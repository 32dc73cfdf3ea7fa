// Package reconcile enforces the taxonomy on extracted records and projects
// them onto spreadsheet columns.
package reconcile

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/taxonomy"
)

const (
	// NoteLimit is the maximum length of the descriptive note, in characters.
	NoteLimit = 220
	// minNoteChars is the shortest model note kept as-is.
	minNoteChars = 10
	maxSectors   = 4
	maxSources   = 5
)

// sectorKeys are tried in order when a sector arrives as an object.
var sectorKeys = []string{"name", "label", "value", "sector"}

// Reconciler sanitizes records against the taxonomy tables.
type Reconciler struct {
	cls *taxonomy.Classifier
}

// New creates a Reconciler. A nil classifier uses the embedded tables.
func New(cls *taxonomy.Classifier) *Reconciler {
	if cls == nil {
		cls = taxonomy.Default()
	}
	return &Reconciler{cls: cls}
}

// Sanitize runs the default Reconciler.
func Sanitize(org model.Organization, rec *model.ExtractionRecord, heuristic string, inferred []string) *model.ExtractionRecord {
	return New(nil).Sanitize(org, rec, heuristic, inferred)
}

// Sanitize returns a corrected copy of rec. Fields that do not apply to the
// resolved classification are cleared, sectors are filtered to the
// allow-list and a missing note is synthesized. Sanitizing a sanitized
// record returns an equal record.
func (r *Reconciler) Sanitize(org model.Organization, rec *model.ExtractionRecord, heuristic string, inferred []string) *model.ExtractionRecord {
	out := &model.ExtractionRecord{}
	if rec != nil {
		*out = *rec
	}

	cls, ok := taxonomy.CanonicalClassification(out.FundingClassification)
	if !ok {
		cls, ok = taxonomy.CanonicalClassification(heuristic)
		if !ok {
			cls = model.ClassInvestmentFirms
		}
	}
	out.FundingClassification = cls

	out.AngelType = angelType(cls, org.Name, out.AngelType)

	sectors := allowedSectors(SectorStrings(out.Sectors))
	if len(sectors) == 0 {
		sectors = allowedSectors(inferred)
	}
	if len(sectors) == 0 {
		sectors = []string{r.cls.DefaultSector(cls)}
	}
	out.Sectors = sectors

	if note, ok := out.AdditionalInfo.(string); ok && utf8.RuneCountInString(strings.TrimSpace(note)) > minNoteChars {
		out.AdditionalInfo = Clip(note, NoteLimit)
	} else {
		out.AdditionalInfo = SynthesizeNote(org.Name, org.Country, cls, sectors)
	}

	if cls == model.ClassVentureCapital {
		out.Stages = vcStages(out)
	} else {
		out.Stages = []string{}
		out.TicketSizeUSDMin = nil
		out.TicketSizeUSDMax = nil
		out.TicketSizeCurrency = nil
	}

	out.Sources = sources(out.Sources)

	switch {
	case out.Confidence < 0:
		out.Confidence = 0
	case out.Confidence > 1:
		out.Confidence = 1
	}
	return out
}

func angelType(cls, name string, given *string) *string {
	if cls != model.ClassAngelInvestors {
		return nil
	}
	if given != nil {
		switch v := strings.ToLower(strings.TrimSpace(*given)); v {
		case model.AngelIndividual, model.AngelNetwork:
			return &v
		}
	}
	lower := strings.ToLower(name)
	v := model.AngelIndividual
	if strings.Contains(lower, "network") || strings.Contains(lower, "group") || strings.Contains(lower, "syndicate") {
		v = model.AngelNetwork
	}
	return &v
}

// allowedSectors keeps allow-listed labels in first-seen order, without
// duplicates, capped at maxSectors.
func allowedSectors(raw []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range raw {
		label, ok := taxonomy.CanonicalSector(s)
		if !ok || seen[label] {
			continue
		}
		seen[label] = true
		out = append(out, label)
		if len(out) == maxSectors {
			break
		}
	}
	return out
}

// vcStages canonicalizes the stage list, inferring it from the ticket range
// when the model gave none.
func vcStages(rec *model.ExtractionRecord) []string {
	seen := make(map[string]bool)
	out := []string{}
	add := func(s string) {
		if label, ok := taxonomy.CanonicalStage(s); ok && !seen[label] {
			seen[label] = true
			out = append(out, label)
		}
	}
	for _, s := range rec.Stages {
		add(s)
	}
	if len(out) == 0 {
		add(taxonomy.InferStageFromTicket(rec.TicketSizeUSDMin))
		add(taxonomy.InferStageFromTicket(rec.TicketSizeUSDMax))
	}
	return out
}

// sources keeps the first maxSources entries of the model's list. Null
// entries use up a slot but are not emitted.
func sources(raw any) []string {
	out := []string{}
	switch t := raw.(type) {
	case []string:
		if len(t) > maxSources {
			t = t[:maxSources]
		}
		out = append(out, t...)
	case []any:
		if len(t) > maxSources {
			t = t[:maxSources]
		}
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			} else if item != nil {
				out = append(out, fmt.Sprintf("%v", item))
			}
		}
	}
	return out
}

// SectorStrings coerces the model's sectors field to a string list. It
// accepts nil, a string, a string list, and lists mixing strings, objects
// carrying a name/label/value/sector key and other scalars.
func SectorStrings(raw any) []string {
	switch t := raw.(type) {
	case nil:
		return nil
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
		return nil
	case []string:
		var out []string
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		var out []string
		for _, item := range t {
			if s := sectorItem(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := strings.TrimSpace(fmt.Sprintf("%v", t)); s != "" {
			return []string{s}
		}
		return nil
	}
}

func sectorItem(item any) string {
	switch v := item.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		for _, k := range sectorKeys {
			if s, ok := v[k].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		return ""
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// Clip trims s and cuts it to n characters followed by "..." when longer.
// Clipping a clipped string returns it unchanged.
func Clip(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

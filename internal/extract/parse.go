package extract

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/enrich-cli/internal/model"
)

// embeddedObjectRe finds the widest {...} span in free text.
var embeddedObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

const (
	snippetLimit   = 400
	nonJSONPreface = "Model returned non-JSON. Raw snippet: "
)

// ParseRecord decodes model output into a record. The whole text is tried
// as JSON first, then the widest {...} span inside it. When neither parses,
// a fallback record carries the organization's identity and a note quoting
// the start of the output.
func ParseRecord(raw string, org model.Organization) *model.ExtractionRecord {
	if rec, ok := decodeRecord(raw); ok {
		return rec
	}
	if m := embeddedObjectRe.FindString(raw); m != "" {
		if rec, ok := decodeRecord(m); ok {
			return rec
		}
	}
	return fallbackRecord(raw, org)
}

func fallbackRecord(raw string, org model.Organization) *model.ExtractionRecord {
	snippet := strings.TrimSpace(raw)
	if cut := model.Truncate(snippet, snippetLimit); cut != snippet {
		snippet = cut + "..."
	}
	rec := model.HeuristicRecord(org, "")
	rec.Notes = nonJSONPreface + snippet
	return rec
}

// decodeRecord accepts only a JSON object. Fields are read leniently: a
// value of the wrong type is dropped instead of failing the whole record.
func decodeRecord(s string) (*model.ExtractionRecord, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &obj); err != nil || obj == nil {
		return nil, false
	}

	rec := &model.ExtractionRecord{
		Name:                  str(obj["name"]),
		Country:               str(obj["country"]),
		Website:               str(obj["website"]),
		FundingClassification: str(obj["funding_classification"]),
		Sectors:               obj["sectors"],
		AngelType:             strPtr(obj["angel_type"]),
		TicketSizeUSDMin:      num(obj["ticket_size_usd_min"]),
		TicketSizeUSDMax:      num(obj["ticket_size_usd_max"]),
		TicketSizeCurrency:    strPtr(obj["ticket_size_currency"]),
		Stages:                strList(obj["stages"]),
		AdditionalInfo:        obj["additional_info"],
		Sources:               obj["sources"],
		Notes:                 str(obj["notes"]),
	}
	if rec.FundingClassification == "" {
		rec.FundingClassification = str(obj["classification"])
	}
	if c := num(obj["confidence"]); c != nil {
		rec.Confidence = *c
	}
	return rec, true
}

func str(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func strPtr(v any) *string {
	if s := str(v); s != "" {
		return &s
	}
	return nil
}

// num accepts JSON numbers and numeric strings such as "250,000".
func num(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case string:
		clean := strings.ReplaceAll(strings.TrimSpace(t), ",", "")
		if f, err := strconv.ParseFloat(clean, 64); err == nil {
			return &f
		}
	}
	return nil
}

func strList(v any) []string {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := str(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

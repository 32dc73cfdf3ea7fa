package reconcile

import (
	"strings"

	"github.com/sells-group/enrich-cli/internal/config"
	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/taxonomy"
)

// NormalizeToColumns projects a sanitized record onto the output columns.
// Stages are written only for venture capital and angel type only for angel
// investors; empty values are nil.
func NormalizeToColumns(rec *model.ExtractionRecord, cols config.OutputColumns) model.NormalizedRow {
	cls := rec.FundingClassification

	sectors := SectorStrings(rec.Sectors)
	for i, s := range sectors {
		sectors[i] = taxonomy.SectorForSheet(s)
	}

	row := model.NormalizedRow{
		cols.FundingClassification: model.Str(cls),
		cols.Sector:                model.Str(strings.Join(sectors, ", ")),
		cols.TicketSizeVC:          nil,
		cols.AngelType:             nil,
		cols.Note:                  model.Str(rec.Note()),
	}
	if cls == model.ClassVentureCapital {
		row[cols.TicketSizeVC] = model.Str(strings.Join(rec.Stages, ", "))
	}
	if cls == model.ClassAngelInvestors && rec.AngelType != nil {
		row[cols.AngelType] = model.Str(*rec.AngelType)
	}
	return row
}

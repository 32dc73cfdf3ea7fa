package taxonomy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/enrich-cli/internal/model"
)

func ptr(f float64) *float64 { return &f }

func TestInferStageFromTicket(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		amount *float64
		want   string
	}{
		{"nil", nil, ""},
		{"below floor", ptr(50_000), ""},
		{"pre-seed lower bound", ptr(100_000), "Pre-seed"},
		{"pre-seed mid", ptr(250_000), "Pre-seed"},
		{"pre-seed upper bound", ptr(500_000), "Pre-seed"},
		{"seed", ptr(500_001), "Seed"},
		{"seed upper bound", ptr(2_000_000), "Seed"},
		{"series a", ptr(2_000_001), "Series A"},
		{"series a upper bound", ptr(10_000_000), "Series A"},
		{"series b", ptr(10_000_001), "Series B"},
		{"series b upper bound", ptr(30_000_000), "Series B"},
		{"series c", ptr(30_000_001), "Series C"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferStageFromTicket(tt.amount))
		})
	}
}

func TestInferStageFromTicket_TwoMillionIsSeed(t *testing.T) {
	t.Parallel()

	// (500k, 2M] is Seed; 2M only crosses into Series A above the bound.
	assert.Equal(t, "Seed", InferStageFromTicket(ptr(2_000_000)))
	assert.Equal(t, "Series A", InferStageFromTicket(ptr(2_000_000.5)))
}

func TestInferStageFromTicket_CanonicalizesToStageEnum(t *testing.T) {
	t.Parallel()

	for _, amt := range []float64{100_000, 1_000_000, 5_000_000, 20_000_000, 40_000_000} {
		stage := InferStageFromTicket(ptr(amt))
		got, ok := CanonicalStage(stage)
		require.True(t, ok, stage)
		assert.Contains(t, model.Stages(), got)
	}
}

func TestClassifyHeuristically(t *testing.T) {
	t.Parallel()

	c := Default()
	tests := []struct {
		name, text, want string
	}{
		{"Gulf Angel Network", "", model.ClassAngelInvestors},
		{"Acme", "We run an accelerator program for startups", model.ClassAccelerators},
		{"Acme", "Backed by PIF and a venture capital arm", model.ClassSovereignWealth},
		{"Cairo University", "", model.ClassUniversityResearch},
		{"National Bank", "retail lending", model.ClassInvestmentFirms},
		{"Nothing", "lorem ipsum", model.ClassInvestmentFirms},
		{"", "", model.ClassInvestmentFirms},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ClassifyHeuristically(tt.name, tt.text))
		})
	}
}

func TestClassifyHeuristically_TablePriority(t *testing.T) {
	t.Parallel()

	// Incubators precede Coworking Spaces in the table.
	got := Default().ClassifyHeuristically("Hub", "a coworking space with an incubator")
	assert.Equal(t, model.ClassIncubators, got)
}

func TestInferSectors_TableOrderAndCap(t *testing.T) {
	t.Parallel()

	c := Default()
	text := "Solar farming SOFTWARE with medtech, recycling and robotics"
	got := c.InferSectors(text)

	assert.Equal(t, []string{
		model.SectorICT,
		model.SectorHealth,
		model.SectorEnergy,
		model.SectorAgriculture,
	}, got)
}

func TestInferSectors_NotByFrequency(t *testing.T) {
	t.Parallel()

	got := Default().InferSectors("education education education, banking")
	assert.Equal(t, []string{model.SectorEducation, model.SectorBusiness}, got)
}

func TestInferSectors_NoHits(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Default().InferSectors("zzz"))
}

func TestDefaultSector(t *testing.T) {
	t.Parallel()

	c := Default()
	assert.Equal(t, model.SectorEducation, c.DefaultSector(model.ClassUniversityResearch))
	assert.Equal(t, model.SectorBusiness, c.DefaultSector(model.ClassVentureCapital))
	assert.Equal(t, model.SectorBusiness, c.DefaultSector(""))
}

func TestNewClassifier_InjectedTables(t *testing.T) {
	t.Parallel()

	c := NewClassifier(Tables{
		Funding: []Entry{{Label: model.ClassCoworkingSpaces, Keywords: []string{"desk"}}},
		Sectors: []Entry{{Label: model.SectorCreative, Keywords: []string{"desk"}}},
	})
	assert.Equal(t, model.ClassCoworkingSpaces, c.ClassifyHeuristically("Hot Desk", ""))
	assert.Equal(t, []string{model.SectorCreative}, c.InferSectors("desk"))
}

func TestDefaultTables_Valid(t *testing.T) {
	t.Parallel()

	tables := DefaultTables()
	require.NoError(t, tables.Validate())
	assert.Len(t, tables.Funding, 10)
	assert.Len(t, tables.Sectors, 12)
	assert.Equal(t, model.ClassSovereignWealth, tables.Funding[0].Label)
}

func TestParseTables_Errors(t *testing.T) {
	t.Parallel()

	_, err := ParseTables([]byte("funding: ["))
	assert.Error(t, err)

	_, err = ParseTables([]byte("funding: []"))
	assert.ErrorContains(t, err, "funding table is empty")

	_, err = ParseTables([]byte("funding:\n  - label: Hedge Funds\n    keywords: [hedge]\n"))
	assert.ErrorContains(t, err, "unknown funding label")

	_, err = ParseTables([]byte("funding:\n  - label: Incubators\n    keywords: [Hub]\n"))
	assert.ErrorContains(t, err, "must be lower-case")

	_, err = ParseTables([]byte("funding:\n  - label: Incubators\n    keywords: [hub]\nsectors:\n  - label: Space\n    keywords: [orbit]\n"))
	assert.ErrorContains(t, err, "unknown sector label")
}

func TestLoadTablesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tables.yaml")
	doc := "funding:\n  - label: Incubators\n    keywords: [hub]\nsectors:\n  - label: Information & Communication Technology (ICT)\n    keywords: [apps]\ndefault_sectors:\n  Incubators: Education\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	tables, err := LoadTablesFile(path)
	require.NoError(t, err)
	c := NewClassifier(tables)
	assert.Equal(t, model.ClassIncubators, c.ClassifyHeuristically("Tech Hub", ""))
	assert.Equal(t, model.SectorEducation, c.DefaultSector(model.ClassIncubators))

	_, err = LoadTablesFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCanonicalLabels(t *testing.T) {
	t.Parallel()

	got, ok := CanonicalSector("information & communication technology (ict)")
	assert.True(t, ok)
	assert.Equal(t, model.SectorICT, got)

	got, ok = CanonicalSector(" health ")
	assert.True(t, ok)
	assert.Equal(t, model.SectorHealth, got)

	_, ok = CanonicalSector("Space")
	assert.False(t, ok)

	got, ok = CanonicalClassification("angel investors")
	assert.True(t, ok)
	assert.Equal(t, model.ClassAngelInvestors, got)

	got, ok = CanonicalStage("Pre-seed")
	assert.True(t, ok)
	assert.Equal(t, model.StagePreSeed, got)

	assert.Equal(t, model.SectorICT, SectorForSheet(model.SectorICTLong))
	assert.Equal(t, model.SectorHealth, SectorForSheet(model.SectorHealth))
}

func TestCurrencyInText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "USD", CurrencyInText("tickets from $250k"))
	assert.Equal(t, "USD", CurrencyInText("US$ 1M"))
	assert.Equal(t, "EUR", CurrencyInText("up to €2m"))
	assert.Equal(t, "AED", CurrencyInText("investments of 5M aed"))
	assert.Equal(t, "", CurrencyInText("no money here"))
}

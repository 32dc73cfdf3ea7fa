package model

// Funding classification labels.
const (
	ClassVentureCapital     = "Venture Capital Funds"
	ClassAngelInvestors     = "Angel Investors"
	ClassMicrofinance       = "Microfinance Institutions"
	ClassAccelerators       = "Accelerators"
	ClassIncubators         = "Incubators"
	ClassInvestmentFirms    = "Investment Firms"
	ClassSovereignWealth    = "Sovereign Wealth Funds"
	ClassCoworkingSpaces    = "Coworking Spaces"
	ClassSupportAgencies    = "Entrepreneurship Support Agencies"
	ClassUniversityResearch = "Universities & Research Centers"
)

// FundingClassifications lists every allowed classification label.
func FundingClassifications() []string {
	return []string{
		ClassVentureCapital,
		ClassAngelInvestors,
		ClassMicrofinance,
		ClassAccelerators,
		ClassIncubators,
		ClassInvestmentFirms,
		ClassSovereignWealth,
		ClassCoworkingSpaces,
		ClassSupportAgencies,
		ClassUniversityResearch,
	}
}

// Sector labels.
const (
	SectorICT            = "ICT"
	SectorICTLong        = "Information & Communication Technology (ICT)"
	SectorHealth         = "Health"
	SectorEnergy         = "Energy"
	SectorAgriculture    = "Agriculture"
	SectorEnvironment    = "Environment"
	SectorIndustry       = "Industry & Manufacturing"
	SectorTransportation = "Transportation & Mobility"
	SectorEducation      = "Education"
	SectorCreative       = "Creative Industries"
	SectorInfrastructure = "Infrastructure & Real Estate"
	SectorSocialImpact   = "Social Impact"
	SectorBusiness       = "Business & Professional Services"
)

// Sectors lists the twelve allowed sector labels (short ICT form).
func Sectors() []string {
	return []string{
		SectorICT,
		SectorHealth,
		SectorEnergy,
		SectorAgriculture,
		SectorEnvironment,
		SectorIndustry,
		SectorTransportation,
		SectorEducation,
		SectorCreative,
		SectorInfrastructure,
		SectorSocialImpact,
		SectorBusiness,
	}
}

// Investment stage labels.
const (
	StagePreSeed = "Pre-Seed"
	StageSeed    = "Seed"
	StageSeriesA = "Series A"
	StageSeriesB = "Series B"
	StageSeriesC = "Series C"
)

// Stages lists the allowed VC stage labels in ascending order.
func Stages() []string {
	return []string{StagePreSeed, StageSeed, StageSeriesA, StageSeriesB, StageSeriesC}
}

// Angel sub-types.
const (
	AngelIndividual = "individual"
	AngelNetwork    = "network"
)

// ExtractionRecord is the structured result for one organization.
//
// Sectors, AdditionalInfo and Sources hold whatever shape the model produced
// until the reconciler normalizes them to []string, string and []string.
type ExtractionRecord struct {
	Name    string `json:"name"`
	Country string `json:"country,omitempty"`
	Website string `json:"website,omitempty"`

	FundingClassification string   `json:"funding_classification"`
	Sectors               any      `json:"sectors"`
	AngelType             *string  `json:"angel_type"`
	TicketSizeUSDMin      *float64 `json:"ticket_size_usd_min"`
	TicketSizeUSDMax      *float64 `json:"ticket_size_usd_max"`
	TicketSizeCurrency    *string  `json:"ticket_size_currency"`
	Stages                []string `json:"stages"`
	AdditionalInfo        any      `json:"additional_info"`
	Sources               any      `json:"sources"`
	Confidence            float64  `json:"confidence"`

	// Notes is set on the fallback record built from unparseable model output.
	Notes string `json:"notes,omitempty"`
}

// SectorList returns Sectors when it is already a normalized string slice.
func (r *ExtractionRecord) SectorList() []string {
	if s, ok := r.Sectors.([]string); ok {
		return s
	}
	return nil
}

// Note returns AdditionalInfo when it is a string.
func (r *ExtractionRecord) Note() string {
	s, _ := r.AdditionalInfo.(string)
	return s
}

// HeuristicRecord builds the record used when extraction fails entirely:
// the heuristic classification and nothing the model would have supplied.
func HeuristicRecord(org Organization, classification string) *ExtractionRecord {
	return &ExtractionRecord{
		Name:                  org.Name,
		Country:               org.Country,
		Website:               org.Website,
		FundingClassification: classification,
		Sectors:               []string{},
		Stages:                []string{},
		Sources:               []string{},
		Confidence:            0.0,
	}
}

// NormalizedRow maps output column names to cell values; nil means empty.
type NormalizedRow map[string]*string

// Value returns the cell value for col, or "" when empty.
func (r NormalizedRow) Value(col string) string {
	if v := r[col]; v != nil {
		return *v
	}
	return ""
}

// Str returns a pointer to s, or nil when s is empty.
func Str(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package reconcile

import (
	"fmt"
	"strings"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/taxonomy"
)

// noteTemplates render a description from name, region and sector text.
var noteTemplates = map[string]func(name, region, sectors string) string{
	model.ClassVentureCapital: func(name, region, sectors string) string {
		return fmt.Sprintf("A venture capital firm investing across %s. %s backs startups in %s with funding and strategic support.", sectors, name, region)
	},
	model.ClassInvestmentFirms: func(name, region, sectors string) string {
		return fmt.Sprintf("An investment firm providing capital and strategic support across %s. %s partners with companies in %s to scale and optimize operations.", sectors, name, region)
	},
	model.ClassAngelInvestors: func(name, region, sectors string) string {
		kind := "investor"
		if strings.Contains(strings.ToLower(name), "network") {
			kind = "network"
		}
		return fmt.Sprintf("An angel %s backing early-stage startups in %s. %s supports founders in %s with capital and guidance.", kind, sectors, name, region)
	},
	model.ClassMicrofinance: func(name, region, _ string) string {
		return fmt.Sprintf("A microfinance institution enabling access to finance for micro and small enterprises. %s serves entrepreneurs in %s through tailored credit solutions.", name, region)
	},
	model.ClassAccelerators: func(name, region, _ string) string {
		return fmt.Sprintf("An accelerator delivering programs and mentorship for startups. %s helps founders in %s validate, build, and grow.", name, region)
	},
	model.ClassIncubators: func(name, region, _ string) string {
		return fmt.Sprintf("An incubator providing workspace and hands-on support for early ventures. %s nurtures entrepreneurs in %s from idea to startup.", name, region)
	},
	model.ClassSovereignWealth: func(name, region, _ string) string {
		return fmt.Sprintf("A sovereign wealth fund investing for long-term national value. %s allocates capital to diversified sectors in %s.", name, region)
	},
	model.ClassCoworkingSpaces: func(name, region, _ string) string {
		return fmt.Sprintf("A coworking hub offering flexible workspace and community for entrepreneurs. %s hosts teams and events in %s.", name, region)
	},
	model.ClassSupportAgencies: func(name, region, _ string) string {
		return fmt.Sprintf("An ecosystem support organization delivering programs and services for entrepreneurs. %s promotes startup growth in %s.", name, region)
	},
	model.ClassUniversityResearch: func(name, region, _ string) string {
		return fmt.Sprintf("A university/research center fostering innovation and commercialization. %s supports research-based ventures in %s.", name, region)
	},
}

// SynthesizeNote writes a one or two sentence description for an
// organization the model did not describe. country falls back to "the
// region" and an empty sector list to "key industries".
func SynthesizeNote(name, country, classification string, sectors []string) string {
	region := strings.TrimSpace(country)
	if region == "" {
		region = "the region"
	}
	labels := make([]string, len(sectors))
	for i, s := range sectors {
		labels[i] = taxonomy.SectorForSheet(s)
	}
	sectorText := "key industries"
	if len(labels) > 0 {
		sectorText = strings.Join(labels, ", ")
	}

	var text string
	if tmpl, ok := noteTemplates[classification]; ok {
		text = tmpl(name, region, sectorText)
	} else {
		text = fmt.Sprintf("An organization operating across %s. %s supports businesses in %s.", sectorText, name, region)
	}
	return Clip(text, NoteLimit)
}

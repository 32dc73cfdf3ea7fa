// Package extract turns gathered evidence into a structured record by
// prompting a completion provider and parsing its JSON answer.
package extract

import (
	"fmt"
	"strings"

	"github.com/sells-group/enrich-cli/internal/model"
)

const (
	maxSnippets  = 6
	snippetChars = 4000
)

// Instructions is the fixed extraction prompt: output contract, label
// vocabularies and the rules the model must follow.
const Instructions = `You extract structured investor information for a spreadsheet.
OUTPUT EXACTLY ONE JSON OBJECT. No prose, no markdown.

JSON FIELDS:
{
  "name": string,
  "country": string|null,
  "website": string|null,
  "funding_classification": string,
  "sectors": [string],
  "angel_type": "individual"|"network"|null,
  "ticket_size_usd_min": number|null,
  "ticket_size_usd_max": number|null,
  "ticket_size_currency": string|null,
  "stages": [string],
  "additional_info": string,
  "sources": [string],
  "confidence": number
}

funding_classification is EXACTLY one of:
Venture Capital Funds | Angel Investors | Microfinance Institutions | Accelerators | Incubators |
Investment Firms | Sovereign Wealth Funds | Coworking Spaces | Entrepreneurship Support Agencies |
Universities & Research Centers

sectors holds zero or more EXACT labels from:
- Information & Communication Technology (ICT): software, AI, cloud, data, e-commerce, cybersecurity, FinTech, InsurTech, PropTech.
- Health: biotech, pharma, MedTech, digital health, life sciences.
- Energy: oil & gas, renewables, cleantech, storage, efficiency.
- Agriculture: AgriTech, FoodTech, sustainable farming, alternative proteins.
- Environment: water, waste and recycling, climate, conservation, carbon capture.
- Industry & Manufacturing: robotics, automation, advanced materials, 3D printing.
- Transportation & Mobility: aviation, automotive, shipping, logistics, EVs, space.
- Education: EdTech, online learning, training, skills.
- Creative Industries: media, gaming, film, design, digital content.
- Infrastructure & Real Estate: housing, smart cities, construction, industrial zones.
- Social Impact: poverty reduction, women empowerment, refugees, youth employment.
- Business & Professional Services: banking, insurance, asset management, consulting, legal, advisory.

CLASSIFICATION RULES:
- Commercial banks or holding groups investing broadly are "Investment Firms" unless state-owned wealth vehicles.
- Sovereign or state wealth vehicles are "Sovereign Wealth Funds".
- University labs, research parks and tech transfer offices are "Universities & Research Centers".
- Government or NGO ecosystem enablers are "Entrepreneurship Support Agencies".
- Shared offices and hubs are "Coworking Spaces".

ANGEL RULE: when funding_classification is "Angel Investors", angel_type is "network" if the
name or text mentions a network, group or syndicate, otherwise "individual".

TICKETS & STAGES: for venture capital, list stated stages (Pre-Seed, Seed, Series A, Series B,
Series C). If only amounts are given, map them: Pre-Seed 100k-500k, Seed 500k-2M,
Series A 2-10M, Series B 10-30M, Series C 30M+. Keep ticket_size_currency when not USD.

additional_info is REQUIRED: one or two short sentences, at most 220 characters, following
"<What the institution is/does>. <Name> supports <who> in <country/region> with <how>."
No bullet points, labels or biographies.

sources lists up to 5 URLs you used. confidence is between 0 and 1.

Final answer: ONE JSON object only.`

// BuildPrompt appends the organization's identity and up to six evidence
// snippets, each capped at 4000 characters, to instructions.
func BuildPrompt(instructions string, org model.Organization, ev *model.Evidence) string {
	var snippets []string
	for _, p := range ev.Pages() {
		if len(snippets) == maxSnippets {
			break
		}
		snippets = append(snippets, fmt.Sprintf("URL: %s\nTEXT: %s", p.URL, model.Truncate(p.Text, snippetChars)))
	}

	var b strings.Builder
	b.WriteString(instructions)
	b.WriteString("\n\nORGANIZATION:\n")
	fmt.Fprintf(&b, "name: %s\n", org.Name)
	fmt.Fprintf(&b, "country: %s\n", org.Country)
	fmt.Fprintf(&b, "website: %s\n", org.Website)
	b.WriteString("\nSCRAPED:\n")
	b.WriteString(strings.Join(snippets, "\n\n"))
	b.WriteString("\n")
	return b.String()
}

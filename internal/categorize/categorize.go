// Package categorize maps normalized free text onto small, fixed taxonomies.
//
// Every taxonomy is an ordered list of rules. A rule matches when any of its
// keywords is a substring of the lower-cased input; the first matching rule
// wins. Inputs that match nothing resolve to Uncategorized. Matching is plain
// substring containment, so "manufacturer" also matches inside longer words.
package categorize

import (
	"database/sql"
	"fmt"
	"strings"
)

// Label is a category name from one of the taxonomies below.
type Label string

// Uncategorized is returned by every taxonomy when no rule matches.
const Uncategorized Label = "Uncategorized"

// Job title labels.
const (
	IndividualContributor Label = "Individual Contributor"
	EntryLevel            Label = "Entry-level"
	ManagerialLevel       Label = "Managerial-level"
	DirectorLevel         Label = "Director-level"
	ExecutiveLevel        Label = "Executive-level"
)

// Industry labels.
const (
	Manufacturing          Label = "Manufacturing"
	Technology             Label = "Technology"
	EducationAndTraining   Label = "Education and Training"
	EnergyAndUtilities     Label = "Energy and Utilities"
	TransportAndAutomotive Label = "Transport and Automotive"
	FinanceAndInsurance    Label = "Finance and Insurance"
	RetailAndConsumer      Label = "Retail and Consumer Services"
	PublicSector           Label = "Public Sector and Non-Profit"
	HealthcareAndLife      Label = "Healthcare and Life Sciences"
	BusinessServices       Label = "Business and Professional Services"
	Entertainment          Label = "Entertainment"
)

// Rule pairs a keyword set with the label it resolves to.
type Rule struct {
	Label    Label    `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// Taxonomy is an ordered rule list. Order is significant.
type Taxonomy struct {
	Name  string `yaml:"name"`
	Rules []Rule `yaml:"rules"`
}

// JobTitles is the built-in job title taxonomy.
var JobTitles = Taxonomy{
	Name: "job_title",
	Rules: []Rule{
		{Label: IndividualContributor, Keywords: []string{"developer", "engineer", "scientist", "analyst", "specialist", "senior"}},
		{Label: EntryLevel, Keywords: []string{"intern", "junior", "trainee"}},
		{Label: ManagerialLevel, Keywords: []string{"manager", "lead", "supervisor"}},
		{Label: DirectorLevel, Keywords: []string{"director", "head"}},
		{Label: ExecutiveLevel, Keywords: []string{"chief", "officer", "ceo"}},
	},
}

// Industries is the built-in industry taxonomy.
var Industries = Taxonomy{
	Name: "industry",
	Rules: []Rule{
		{Label: Manufacturing, Keywords: []string{"manufacturer"}},
		{Label: Technology, Keywords: []string{"software"}},
		{Label: EducationAndTraining, Keywords: []string{"education"}},
		{Label: EnergyAndUtilities, Keywords: []string{"utilities"}},
		{Label: TransportAndAutomotive, Keywords: []string{"transportation"}},
		{Label: FinanceAndInsurance, Keywords: []string{"finance"}},
		{Label: RetailAndConsumer, Keywords: []string{"retail"}},
		{Label: PublicSector, Keywords: []string{"government"}},
		{Label: HealthcareAndLife, Keywords: []string{"healthcare"}},
		{Label: BusinessServices, Keywords: []string{"business"}},
		{Label: Entertainment, Keywords: []string{"entertainment"}},
	},
}

// Categorize returns the label of the first rule with a keyword contained in
// the lower-cased text, or Uncategorized.
func (t Taxonomy) Categorize(text string) Label {
	lower := strings.ToLower(text)
	for _, r := range t.Rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return r.Label
			}
		}
	}
	return Uncategorized
}

// Labels lists the taxonomy's labels in rule order followed by Uncategorized.
func (t Taxonomy) Labels() []Label {
	out := make([]Label, 0, len(t.Rules)+1)
	seen := make(map[Label]struct{}, len(t.Rules))
	for _, r := range t.Rules {
		if _, ok := seen[r.Label]; ok {
			continue
		}
		seen[r.Label] = struct{}{}
		out = append(out, r.Label)
	}
	return append(out, Uncategorized)
}

// JobTitle categorizes a job title with the built-in taxonomy.
func JobTitle(title string) Label { return JobTitles.Categorize(title) }

// Industry categorizes an industry with the built-in taxonomy.
func Industry(industry string) Label { return Industries.Categorize(industry) }

// JobTitleOf is JobTitle for arbitrary values; see Text.
func JobTitleOf(v any) Label { return JobTitle(Text(v)) }

// IndustryOf is Industry for arbitrary values; see Text.
func IndustryOf(v any) Label { return Industry(Text(v)) }

// Text coerces v to its string form. nil and invalid sql.NullString values
// become "" so that missing values fall through to Uncategorized. fmt.Sprint
// recovers panicking String methods, which keeps Text total.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case []byte:
		return string(t)
	case sql.NullString:
		if !t.Valid {
			return ""
		}
		return t.String
	default:
		return fmt.Sprint(t)
	}
}

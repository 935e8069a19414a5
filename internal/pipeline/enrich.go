package pipeline

import (
	"context"
	"log"
	"time"

	"leadetl/internal/categorize"
	"leadetl/internal/lead"
	"leadetl/internal/normalize"
)

// Stats counts what Enrich did to a dataset.
type Stats struct {
	Rows                    int
	SpellCorrected          int // titles changed by spell correction
	Translated              int // industries changed by translation
	TranslateFallbacks      int // industries kept because translation failed
	UncategorizedTitles     int
	UncategorizedIndustries int
}

// Enricher holds the per-row collaborators. A nil Spell or Translate leaves
// the corresponding field unchanged.
type Enricher struct {
	Spell     normalize.SpellFunc
	Translate normalize.TranslateFunc
	Rules     categorize.RuleSet

	// ProgressEvery logs a progress line every N rows; 0 disables it.
	ProgressEvery int
}

// Enrich rewrites ds in place: job titles are spell-corrected and
// categorized, industries are translated to English and categorized. NULL
// fields are never handed to a collaborator and categorize as Uncategorized.
// Rows are processed in order on the calling goroutine; cancellation is
// checked between rows.
func (e Enricher) Enrich(ctx context.Context, ds lead.Dataset) (Stats, error) {
	rules := withDefaultRules(e.Rules)
	st := Stats{Rows: len(ds)}
	start := time.Now()

	for i := range ds {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		r := &ds[i]

		if r.JobTitle.Valid {
			corrected := normalize.CorrectSpelling(r.JobTitle.String, e.Spell)
			if corrected != r.JobTitle.String {
				st.SpellCorrected++
			}
			r.JobTitle.String = corrected
		}
		r.JobCategory = rules.JobTitle.Categorize(r.JobTitle.String)
		if r.JobCategory == categorize.Uncategorized {
			st.UncategorizedTitles++
		}

		if r.Industry.Valid {
			out, fellBack := normalize.Translation(ctx, r.Industry.String, e.Translate)
			switch {
			case fellBack:
				st.TranslateFallbacks++
			case out != r.Industry.String:
				st.Translated++
			}
			r.Industry.String = out
		}
		r.IndustryCategory = rules.Industry.Categorize(r.Industry.String)
		if r.IndustryCategory == categorize.Uncategorized {
			st.UncategorizedIndustries++
		}

		if e.ProgressEvery > 0 && (i+1)%e.ProgressEvery == 0 {
			log.Printf("transform: progress rows=%d/%d elapsed=%s",
				i+1, len(ds), time.Since(start).Truncate(time.Millisecond))
		}
	}

	log.Printf(
		"transform: done rows=%d spell_corrected=%d translated=%d translate_fallback=%d uncategorized_titles=%d uncategorized_industries=%d",
		st.Rows, st.SpellCorrected, st.Translated, st.TranslateFallbacks, st.UncategorizedTitles, st.UncategorizedIndustries,
	)
	return st, nil
}

// withDefaultRules fills empty taxonomies with the built-ins.
func withDefaultRules(rs categorize.RuleSet) categorize.RuleSet {
	if len(rs.JobTitle.Rules) == 0 {
		rs.JobTitle = categorize.JobTitles
	}
	if len(rs.Industry.Rules) == 0 {
		rs.Industry = categorize.Industries
	}
	return rs
}

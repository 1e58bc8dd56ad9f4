package translate

import (
	"context"
	"fmt"

	"legisense/internal/analysis"
	"legisense/internal/models"
	"legisense/internal/simulation"
)

// TranslatePages translates extracted page text, preserving page order.
func TranslatePages(ctx context.Context, tr Translator, pages []models.Page, source, target string) ([]models.Page, error) {
	out := make([]models.Page, 0, len(pages))
	for _, p := range pages {
		text, err := tr.Translate(ctx, p.Text, source, target)
		if err != nil {
			return nil, fmt.Errorf("translate page %d: %w", p.PageNumber, err)
		}
		out = append(out, models.Page{PageNumber: p.PageNumber, Text: text})
	}
	return out, nil
}

// TranslateAnalysis translates the reader-facing strings of an analysis
// result. Category and risk tags stay canonical so the UI can keep matching
// on them.
func TranslateAnalysis(ctx context.Context, tr Translator, res analysis.Result, source, target string) (analysis.Result, error) {
	var err error
	t := func(s string) string {
		if err != nil {
			return s
		}
		var out string
		out, err = tr.Translate(ctx, s, source, target)
		if err != nil {
			return s
		}
		return out
	}

	out := analysis.Result{
		TLDRBullets:        make([]string, 0, len(res.TLDRBullets)),
		Clauses:            make([]analysis.Clause, 0, len(res.Clauses)),
		RiskFlags:          make([]analysis.RiskFlag, 0, len(res.RiskFlags)),
		ComparativeContext: make([]analysis.ComparativeContext, 0, len(res.ComparativeContext)),
		SuggestedQuestions: make([]string, 0, len(res.SuggestedQuestions)),
	}
	for _, s := range res.TLDRBullets {
		out.TLDRBullets = append(out.TLDRBullets, t(s))
	}
	for _, c := range res.Clauses {
		out.Clauses = append(out.Clauses, analysis.Clause{
			Category:        c.Category,
			OriginalSnippet: t(c.OriginalSnippet),
			Explanation:     t(c.Explanation),
			Risk:            c.Risk,
			Icon:            c.Icon,
		})
	}
	for _, f := range res.RiskFlags {
		out.RiskFlags = append(out.RiskFlags, analysis.RiskFlag{
			Text:  t(f.Text),
			Level: f.Level,
			Why:   t(f.Why),
		})
	}
	for _, c := range res.ComparativeContext {
		out.ComparativeContext = append(out.ComparativeContext, analysis.ComparativeContext{
			Label:      t(c.Label),
			Standard:   t(c.Standard),
			Contract:   t(c.Contract),
			Assessment: t(c.Assessment),
		})
	}
	for _, q := range res.SuggestedQuestions {
		out.SuggestedQuestions = append(out.SuggestedQuestions, t(q))
	}
	if err != nil {
		return analysis.Result{}, err
	}
	return out, nil
}

// TranslateExtraction translates the narrative strings of a simulation
// payload. Enum tags, numeric values, and session parameters pass through
// untouched.
func TranslateExtraction(ctx context.Context, tr Translator, ex simulation.Extraction, source, target string) (simulation.Extraction, error) {
	var err error
	t := func(s string) string {
		if err != nil {
			return s
		}
		var out string
		out, err = tr.Translate(ctx, s, source, target)
		if err != nil {
			return s
		}
		return out
	}

	out := ex
	out.Session.Title = t(ex.Session.Title)
	out.Session.JurisdictionNote = t(ex.Session.JurisdictionNote)

	out.Timeline = make([]simulation.TimelineNode, 0, len(ex.Timeline))
	for _, n := range ex.Timeline {
		out.Timeline = append(out.Timeline, simulation.TimelineNode{
			Order:               n.Order,
			Title:               t(n.Title),
			Description:         t(n.Description),
			DetailedDescription: t(n.DetailedDescription),
			Risks:               translateAll(n.Risks, t),
		})
	}
	out.PenaltyForecast = make([]simulation.PenaltyForecastRow, 0, len(ex.PenaltyForecast))
	for _, r := range ex.PenaltyForecast {
		r.Label = t(r.Label)
		out.PenaltyForecast = append(out.PenaltyForecast, r)
	}
	out.ExitComparisons = make([]simulation.ExitComparison, 0, len(ex.ExitComparisons))
	for _, c := range ex.ExitComparisons {
		c.Label = t(c.Label)
		c.PenaltyText = t(c.PenaltyText)
		c.BenefitsLost = t(c.BenefitsLost)
		out.ExitComparisons = append(out.ExitComparisons, c)
	}
	out.Narratives = make([]simulation.Narrative, 0, len(ex.Narratives))
	for _, n := range ex.Narratives {
		n.Title = t(n.Title)
		n.Subtitle = t(n.Subtitle)
		n.Narrative = t(n.Narrative)
		n.KeyPoints = translateAll(n.KeyPoints, t)
		n.FinancialImpact = translateAll(n.FinancialImpact, t)
		out.Narratives = append(out.Narratives, n)
	}
	out.LongTerm = make([]simulation.LongTermPoint, 0, len(ex.LongTerm))
	for _, p := range ex.LongTerm {
		p.Label = t(p.Label)
		p.Description = t(p.Description)
		out.LongTerm = append(out.LongTerm, p)
	}
	out.RiskAlerts = make([]simulation.RiskAlert, 0, len(ex.RiskAlerts))
	for _, a := range ex.RiskAlerts {
		a.Message = t(a.Message)
		out.RiskAlerts = append(out.RiskAlerts, a)
	}
	if err != nil {
		return simulation.Extraction{}, err
	}
	return out, nil
}

func translateAll(ss []string, t func(string) string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		out = append(out, t(s))
	}
	return out
}

package analysis

import (
	"strconv"
	"strings"
)

// Normalize coerces arbitrary decoded JSON into a Result. It never fails:
// missing or malformed sections collapse to empty slices so a degenerate
// model response still yields a persistable analysis.
func Normalize(raw any) Result {
	res := Result{
		TLDRBullets:        []string{},
		Clauses:            []Clause{},
		RiskFlags:          []RiskFlag{},
		ComparativeContext: []ComparativeContext{},
		SuggestedQuestions: []string{},
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return res
	}
	res.TLDRBullets = normalizeStringList(obj["tldrBullets"], MaxTLDRBullets)
	res.SuggestedQuestions = normalizeStringList(obj["suggestedQuestions"], MaxSuggestedQuestions)

	if items, ok := obj["clauses"].([]any); ok {
		for _, it := range items {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			res.Clauses = append(res.Clauses, normalizeClause(m))
		}
	}
	if items, ok := obj["riskFlags"].([]any); ok {
		for _, it := range items {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			res.RiskFlags = append(res.RiskFlags, RiskFlag{
				Text:  strings.TrimSpace(asString(m["text"])),
				Level: normalizeRisk(m["level"]),
				Why:   strings.TrimSpace(asString(m["why"])),
			})
		}
	}
	if items, ok := obj["comparativeContext"].([]any); ok {
		for _, it := range items {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			res.ComparativeContext = append(res.ComparativeContext, ComparativeContext{
				Label:      strings.TrimSpace(asString(m["label"])),
				Standard:   strings.TrimSpace(asString(m["standard"])),
				Contract:   strings.TrimSpace(asString(m["contract"])),
				Assessment: strings.TrimSpace(asString(m["assessment"])),
			})
		}
	}
	return res
}

func normalizeClause(m map[string]any) Clause {
	c := Clause{
		Category:        strings.TrimSpace(asString(m["category"])),
		OriginalSnippet: strings.TrimSpace(asString(m["originalSnippet"])),
		Explanation:     strings.TrimSpace(asString(m["explanation"])),
		Risk:            normalizeRisk(m["risk"]),
	}
	if c.Category == "" {
		c.Category = DefaultClauseCategory
	}
	if icon := iconValue(m["icon"]); icon != nil {
		c.Icon = icon
	}
	return c
}

// iconValue passes any non-empty icon through untouched, including the
// surrounding whitespace. Zero, false, null, and the empty string mean no
// icon; other scalars keep their literal form.
func iconValue(v any) *string {
	switch x := v.(type) {
	case string:
		if x == "" {
			return nil
		}
		return &x
	case float64:
		if x == 0 {
			return nil
		}
		s := strconv.FormatFloat(x, 'f', -1, 64)
		return &s
	case bool:
		if !x {
			return nil
		}
		s := "true"
		return &s
	default:
		return nil
	}
}

// normalizeRisk lowercases the model's risk tag and falls back to low for
// anything outside the known set.
func normalizeRisk(v any) string {
	risk := strings.ToLower(strings.TrimSpace(asString(v)))
	if _, ok := ValidRiskLevels[risk]; !ok {
		return DefaultRiskLevel
	}
	return risk
}

// normalizeStringList truncates to the first max items, then coerces each
// item to a string and drops blanks. Filtering happens after the cap, so
// blank entries shrink the result below max rather than pulling later items
// in.
func normalizeStringList(v any, max int) []string {
	out := []string{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	if len(items) > max {
		items = items[:max]
	}
	for _, it := range items {
		s := strings.TrimSpace(asString(it))
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// asString stringifies the scalars JSON decoding can produce. Numbers and
// booleans come back in their literal form; anything else is empty.
func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

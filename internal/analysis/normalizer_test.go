package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var raw any
	require.NoError(t, json.Unmarshal([]byte(s), &raw))
	return raw
}

func TestNormalizeEmptyObject(t *testing.T) {
	res := Normalize(decode(t, `{}`))
	require.NotNil(t, res.TLDRBullets)
	require.NotNil(t, res.Clauses)
	require.NotNil(t, res.RiskFlags)
	require.NotNil(t, res.ComparativeContext)
	require.NotNil(t, res.SuggestedQuestions)
	require.Empty(t, res.TLDRBullets)
	require.Empty(t, res.Clauses)
	require.Empty(t, res.RiskFlags)
	require.Empty(t, res.ComparativeContext)
	require.Empty(t, res.SuggestedQuestions)
}

func TestNormalizeNilInput(t *testing.T) {
	res := Normalize(nil)
	require.Empty(t, res.TLDRBullets)
	require.Empty(t, res.Clauses)
}

func TestNormalizeTLDRCap(t *testing.T) {
	res := Normalize(decode(t, `{"tldrBullets": ["a","b","c","d","e","f","g","h","i","j"]}`))
	require.Equal(t, []string{"a", "b", "c", "d", "e"}, res.TLDRBullets)
}

func TestNormalizeDropsBlankStrings(t *testing.T) {
	res := Normalize(decode(t, `{"tldrBullets": ["", "  ", "valid"]}`))
	require.Equal(t, []string{"valid"}, res.TLDRBullets)
}

func TestNormalizeBlanksShrinkBelowCap(t *testing.T) {
	res := Normalize(decode(t, `{"tldrBullets": ["", "", "a", "b", "c", "d", "e"]}`))
	require.Equal(t, []string{"a", "b", "c"}, res.TLDRBullets)
}

func TestNormalizeCoercesScalarsToStrings(t *testing.T) {
	res := Normalize(decode(t, `{"tldrBullets": [42, "kept", true, 1.5], "suggestedQuestions": [7]}`))
	require.Equal(t, []string{"42", "kept", "true", "1.5"}, res.TLDRBullets)
	require.Equal(t, []string{"7"}, res.SuggestedQuestions)
}

func TestNormalizeCoercesClauseFields(t *testing.T) {
	res := Normalize(decode(t, `{"clauses": [{"category": 12, "originalSnippet": 30, "explanation": "numeric snippet", "risk": "low"}]}`))
	require.Len(t, res.Clauses, 1)
	require.Equal(t, "12", res.Clauses[0].Category)
	require.Equal(t, "30", res.Clauses[0].OriginalSnippet)
}

func TestNormalizeQuestionCap(t *testing.T) {
	res := Normalize(decode(t, `{"suggestedQuestions": ["1","2","3","4","5","6","7","8","9"]}`))
	require.Len(t, res.SuggestedQuestions, MaxSuggestedQuestions)
}

func TestNormalizeClauseDefaults(t *testing.T) {
	res := Normalize(decode(t, `{"clauses": [{"category": "", "originalSnippet": "pay within 30 days", "explanation": "payment window", "risk": "SEVERE"}]}`))
	require.Len(t, res.Clauses, 1)
	require.Equal(t, DefaultClauseCategory, res.Clauses[0].Category)
	require.Equal(t, "low", res.Clauses[0].Risk)
	require.Nil(t, res.Clauses[0].Icon)
}

func TestNormalizeUnrecognizedCategoryPassesThrough(t *testing.T) {
	res := Normalize(decode(t, `{"clauses": [{"category": "Nonexistent", "explanation": "x", "risk": "medium"}]}`))
	require.Len(t, res.Clauses, 1)
	require.Equal(t, "Nonexistent", res.Clauses[0].Category)
	require.Equal(t, "medium", res.Clauses[0].Risk)
}

func TestNormalizeRiskCaseFolding(t *testing.T) {
	res := Normalize(decode(t, `{"clauses": [{"category": "Confidentiality", "explanation": "x", "risk": "HIGH"}]}`))
	require.Equal(t, "high", res.Clauses[0].Risk)
}

func TestNormalizeDropsNonObjectClauses(t *testing.T) {
	res := Normalize(decode(t, `{"clauses": [42, {"category": "Confidentiality", "explanation": "keep secrets", "risk": "low"}]}`))
	require.Len(t, res.Clauses, 1)
	require.Equal(t, "Confidentiality", res.Clauses[0].Category)
}

func TestNormalizeClauseIcon(t *testing.T) {
	res := Normalize(decode(t, `{"clauses": [{"category": "Payment Terms", "explanation": "x", "risk": "low", "icon": "coin"}]}`))
	require.NotNil(t, res.Clauses[0].Icon)
	require.Equal(t, "coin", *res.Clauses[0].Icon)
}

func TestNormalizeClauseIconPassesThroughUntouched(t *testing.T) {
	res := Normalize(decode(t, `{"clauses": [
		{"category": "Payment Terms", "explanation": "a", "risk": "low", "icon": " scales "},
		{"category": "Payment Terms", "explanation": "b", "risk": "low", "icon": 4},
		{"category": "Payment Terms", "explanation": "c", "risk": "low", "icon": 0},
		{"category": "Payment Terms", "explanation": "d", "risk": "low", "icon": false},
		{"category": "Payment Terms", "explanation": "e", "risk": "low", "icon": ""}
	]}`))
	require.Len(t, res.Clauses, 5)
	require.Equal(t, " scales ", *res.Clauses[0].Icon)
	require.Equal(t, "4", *res.Clauses[1].Icon)
	require.Nil(t, res.Clauses[2].Icon)
	require.Nil(t, res.Clauses[3].Icon)
	require.Nil(t, res.Clauses[4].Icon)
}

func TestNormalizeRiskFlags(t *testing.T) {
	res := Normalize(decode(t, `{"riskFlags": [{"text": "uncapped indemnity", "level": "bogus", "why": "no liability ceiling"}]}`))
	require.Len(t, res.RiskFlags, 1)
	require.Equal(t, "uncapped indemnity", res.RiskFlags[0].Text)
	require.Equal(t, "low", res.RiskFlags[0].Level)
	require.Equal(t, "no liability ceiling", res.RiskFlags[0].Why)
}

func TestNormalizeComparativeContext(t *testing.T) {
	res := Normalize(decode(t, `{"comparativeContext": ["bad", {"label": "Notice period", "standard": "30 days", "contract": "7 days", "assessment": "below market"}]}`))
	require.Len(t, res.ComparativeContext, 1)
	require.Equal(t, "Notice period", res.ComparativeContext[0].Label)
	require.Equal(t, "7 days", res.ComparativeContext[0].Contract)
}

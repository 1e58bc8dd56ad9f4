package providers

import (
	"errors"
	"testing"
)

func TestClassifyError(t *testing.T) {
	cases := map[string]ErrorType{
		"insufficient_quota":                       ErrorQuota,
		"402 Insufficient credits":                 ErrorQuota,
		"RESOURCE_EXHAUSTED: Gemini quota reached": ErrorQuota,
		"429 rate":                                 ErrorRate,
		"context too long":                         ErrorContext,
		"timeout":                                  ErrorTransient,
		"503 the model is overloaded":              ErrorTransient,
		"bad request":                              ErrorPermanent,
	}
	for msg, want := range cases {
		if got := ClassifyError(errors.New(msg)); got != want {
			t.Fatalf("classify %q: got %s want %s", msg, got, want)
		}
	}
}

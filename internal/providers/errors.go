package providers

import "strings"

// ErrorType buckets a provider failure for the failover loop. Quota and rate
// failures put the provider on cooldown, transient failures retry in place,
// permanent failures move on to the next provider.
type ErrorType string

const (
	ErrorQuota     ErrorType = "quota"
	ErrorRate      ErrorType = "rate"
	ErrorTransient ErrorType = "transient"
	ErrorPermanent ErrorType = "permanent"
	ErrorContext   ErrorType = "context"
)

// ClassifyError maps the error strings our providers produce onto an
// ErrorType. OpenRouter reports exhausted credit as HTTP 402 "Insufficient
// credits"; Gemini reports quota exhaustion as RESOURCE_EXHAUSTED and
// overload as a 503.
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ""
	}
	e := strings.ToLower(err.Error())
	switch {
	case strings.Contains(e, "quota"),
		strings.Contains(e, "credit"),
		strings.Contains(e, "402"),
		strings.Contains(e, "resource_exhausted"),
		strings.Contains(e, "billing"):
		return ErrorQuota
	case strings.Contains(e, "rate"), strings.Contains(e, "429"):
		return ErrorRate
	case strings.Contains(e, "context"), strings.Contains(e, "too long"), strings.Contains(e, "token limit"):
		return ErrorContext
	case strings.Contains(e, "timeout"),
		strings.Contains(e, "temporarily"),
		strings.Contains(e, "unavailable"),
		strings.Contains(e, "overloaded"),
		strings.Contains(e, "502"),
		strings.Contains(e, "503"):
		return ErrorTransient
	default:
		return ErrorPermanent
	}
}

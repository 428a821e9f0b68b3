package model

import "strings"

// Severity represents how serious a review issue is.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// NormalizeSeverity maps a provider-supplied severity onto one of the three
// known values. Matching is case-insensitive; anything unrecognized is info.
func NormalizeSeverity(raw string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(raw))) {
	case SeverityWarning:
		return SeverityWarning
	case SeverityCritical:
		return SeverityCritical
	default:
		return SeverityInfo
	}
}

// RequestState tracks the console's single outstanding review request.
type RequestState string

const (
	RequestStateIdle    RequestState = "idle"
	RequestStateLoading RequestState = "loading"
	RequestStateSettled RequestState = "settled"
)

// CopyTarget identifies which text a clipboard copy refers to.
type CopyTarget string

const (
	CopyTargetOriginal   CopyTarget = "original"
	CopyTargetRefactored CopyTarget = "refactored"
)

// ParseCopyTarget returns the CopyTarget for s and whether it is known.
func ParseCopyTarget(s string) (CopyTarget, bool) {
	switch CopyTarget(s) {
	case CopyTargetOriginal, CopyTargetRefactored:
		return CopyTarget(s), true
	default:
		return "", false
	}
}

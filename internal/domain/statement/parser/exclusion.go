package parser

import "strings"

// ExclusionList identifies transactions that are not genuine expenses, such
// as transfers between accounts and card top-ups. Matching is a
// best-effort lower-cased substring check against the resolved category label;
// keyword lists are configuration, not logic, so new banks or locales extend
// the list without code changes.
type ExclusionList []string

// DefaultExclusions covers the vocabulary of the currently supported formats.
func DefaultExclusions() ExclusionList {
	return ExclusionList{
		"перевод",    // transfers
		"пополнение", // top-ups
		"зачисление", // incoming credits
	}
}

// Excluded reports whether a category label marks a non-expense transaction.
func (l ExclusionList) Excluded(label string) bool {
	lowered := strings.ToLower(label)
	for _, kw := range l {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

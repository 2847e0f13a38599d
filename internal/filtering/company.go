package filtering

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransform = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases the string, trims whitespace and strips diacritics so
// that company names compare the same regardless of accents or casing.
func Normalize(s string) string {
	folded, _, err := transform.String(foldTransform, s)
	if err != nil {
		folded = s
	}

	return strings.ToLower(strings.TrimSpace(folded))
}

// ParseCompanyList splits a comma separated list of company names, trimming
// each entry and dropping empty ones.
func ParseCompanyList(raw string) []string {
	parts := strings.Split(raw, ",")
	list := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			list = append(list, trimmed)
		}
	}

	return list
}

// CompanyFilter decides which companies a search run keeps. Matching is done
// on normalized substrings, exclusion terms always win over inclusion terms,
// and an empty inclusion list admits every company.
type CompanyFilter struct {
	include []string
	exclude []string
}

// NewCompanyFilter builds a filter from raw inclusion and exclusion entries.
// Each entry may itself be a comma separated list, matching how the terms
// arrive from flags and configuration files.
func NewCompanyFilter(include, exclude []string) *CompanyFilter {
	return &CompanyFilter{
		include: normalizeTerms(include),
		exclude: normalizeTerms(exclude),
	}
}

func normalizeTerms(raw []string) []string {
	terms := make([]string, 0, len(raw))
	for _, entry := range raw {
		for _, term := range ParseCompanyList(entry) {
			terms = append(terms, Normalize(term))
		}
	}

	return terms
}

// Allow reports whether the company passes the filter. A nil filter admits
// every company.
func (f *CompanyFilter) Allow(company string) bool {
	if f == nil {
		return true
	}

	name := Normalize(company)

	for _, term := range f.exclude {
		if strings.Contains(name, term) {
			return false
		}
	}

	if len(f.include) == 0 {
		return true
	}

	for _, term := range f.include {
		if strings.Contains(name, term) {
			return true
		}
	}

	return false
}

// Empty reports whether the filter has no terms and therefore admits every
// company.
func (f *CompanyFilter) Empty() bool {
	return f == nil || (len(f.include) == 0 && len(f.exclude) == 0)
}

// Status represents the effective filter terms, suitable for logging.
type Status struct {
	Enabled bool
	Include []string
	Exclude []string
}

// Status returns the normalized terms the filter matches against.
func (f *CompanyFilter) Status() Status {
	if f == nil {
		return Status{}
	}

	return Status{
		Enabled: !f.Empty(),
		Include: append([]string(nil), f.include...),
		Exclude: append([]string(nil), f.exclude...),
	}
}

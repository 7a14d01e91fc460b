// Package recommend maps a free-text business sector to the ISO standards a
// company in that sector usually targets.
package recommend

import "strings"

// Baseline is recommended when no sector rule matches.
const Baseline = "ISO 9001"

type rule struct {
	keywords []string
	codes    []string
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{keywords: []string{"software", "tecnologia", "tech"}, codes: []string{"ISO 27001", "ISO 9001"}},
	{keywords: []string{"industria", "fábrica"}, codes: []string{"ISO 9001", "ISO 14001"}},
	{keywords: []string{"clinica", "saude", "saúde"}, codes: []string{"ISO 13485", "ISO 9001"}},
	{keywords: []string{"alimento", "restaurante"}, codes: []string{"ISO 22000", "ISO 9001"}},
}

// Standards returns the ordered, non-empty list of recommended ISO codes for
// sector. Matching is a case-insensitive substring test.
func Standards(sector string) []string {
	s := strings.ToLower(sector)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(s, kw) {
				return append([]string(nil), r.codes...)
			}
		}
	}
	return []string{Baseline}
}

// Standard is an entry of the catalog offered for selection.
type Standard struct {
	Code  string
	Title string
}

var catalog = []Standard{
	{Code: "ISO 9001", Title: "Quality Management"},
	{Code: "ISO 27001", Title: "Information Security"},
	{Code: "ISO 14001", Title: "Environmental Management"},
	{Code: "ISO 45001", Title: "Occupational Health & Safety"},
	{Code: "ISO 22000", Title: "Food Safety Management"},
	{Code: "ISO 13485", Title: "Medical Devices"},
}

// Catalog lists the common standards companies can pick from.
func Catalog() []Standard {
	return append([]Standard(nil), catalog...)
}

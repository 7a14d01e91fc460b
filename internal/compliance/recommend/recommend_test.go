package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStandards(t *testing.T) {
	tests := []struct {
		name   string
		sector string
		want   []string
	}{
		{name: "software", sector: "Software Development", want: []string{"ISO 27001", "ISO 9001"}},
		{name: "tech uppercase", sector: "FINTECH STARTUP", want: []string{"ISO 27001", "ISO 9001"}},
		{name: "tecnologia", sector: "Empresa de Tecnologia", want: []string{"ISO 27001", "ISO 9001"}},
		{name: "industry", sector: "Industria metalúrgica", want: []string{"ISO 9001", "ISO 14001"}},
		{name: "factory accented", sector: "Fábrica de móveis", want: []string{"ISO 9001", "ISO 14001"}},
		{name: "health", sector: "Clinica odontológica", want: []string{"ISO 13485", "ISO 9001"}},
		{name: "health accented", sector: "Saúde ocupacional", want: []string{"ISO 13485", "ISO 9001"}},
		{name: "food", sector: "Restaurante", want: []string{"ISO 22000", "ISO 9001"}},
		{name: "unknown", sector: "Pet Grooming", want: []string{"ISO 9001"}},
		{name: "empty", sector: "", want: []string{"ISO 9001"}},
		// both the tech and food rules match; the tech rule comes first
		{name: "first match wins", sector: "restaurante tech", want: []string{"ISO 27001", "ISO 9001"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Standards(tt.sector)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStandardsHasNoDuplicates(t *testing.T) {
	for _, sector := range []string{"software", "industria", "clinica", "alimento", "other"} {
		seen := map[string]bool{}
		for _, code := range Standards(sector) {
			assert.False(t, seen[code], "duplicate %q for sector %q", code, sector)
			seen[code] = true
		}
	}
}

func TestStandardsReturnsCopy(t *testing.T) {
	got := Standards("software")
	got[0] = "mutated"
	assert.Equal(t, "ISO 27001", Standards("software")[0])
}

func TestCatalog(t *testing.T) {
	c := Catalog()
	assert.Len(t, c, 6)
	assert.Equal(t, "ISO 9001", c[0].Code)
	c[0].Code = "mutated"
	assert.Equal(t, "ISO 9001", Catalog()[0].Code)
}

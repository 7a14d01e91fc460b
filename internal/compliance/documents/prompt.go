package documents

import (
	"fmt"
	"strings"

	"github.com/gartstein/isocompliance/internal/compliance/llm"
	"github.com/gartstein/isocompliance/internal/compliance/models"
)

// Document types produced by every generation run.
const (
	TypeQualityManual = "Quality Manual"
	TypeCompanyPolicy = "Company Policy"
	TypeActionPlan    = "Action Plan"
)

const systemPrompt = `You are a senior ISO certification specialist and lead auditor.
You write formal, technical compliance documentation that is ready for an audit.
Adapt the content to the size and operational reality of the company.
Return JSON only, with no markdown fences and no commentary.`

const formatExample = `[
  { "type": "Quality Manual", "content": "..." },
  { "type": "Company Policy", "content": "..." },
  { "type": "Action Plan", "content": "..." }
]`

// BuildPrompt composes the generation request for a company and its
// selected standards.
func BuildPrompt(company *models.Company, standards []string) llm.Prompt {
	var sb strings.Builder
	sb.WriteString("Generate three formal ISO certification documents for the following company.\n\n")
	fmt.Fprintf(&sb, "Name: %s\n", company.Name)
	fmt.Fprintf(&sb, "Sector: %s\n", company.Sector)
	fmt.Fprintf(&sb, "Size: %s employees\n", company.Size)
	fmt.Fprintf(&sb, "Applicable standards: %s\n\n", strings.Join(standards, ", "))
	sb.WriteString("The documents must be:\n")
	fmt.Fprintf(&sb, "1. %s (or integrated management system manual)\n", TypeQualityManual)
	fmt.Fprintf(&sb, "2. %s (commitment to the selected standards)\n", TypeCompanyPolicy)
	fmt.Fprintf(&sb, "3. %s (steps for implementation and maintenance)\n\n", TypeActionPlan)
	sb.WriteString("Return ONLY a JSON array of objects in exactly this format:\n")
	sb.WriteString(formatExample)

	return llm.Prompt{System: systemPrompt, User: sb.String()}
}

// Fallback returns the deterministic drafts used when generation fails or
// the response cannot be parsed.
func Fallback(company *models.Company, standards []string) []models.DocumentDraft {
	list := strings.Join(standards, ", ")
	return []models.DocumentDraft{
		{
			Type: TypeQualityManual,
			Content: fmt.Sprintf("Quality management system of %s (%s, %s employees).\n"+
				"Scope: all operations covered by %s.\n"+
				"The organization commits to documented processes, internal audits and continual improvement.",
				company.Name, company.Sector, company.Size, list),
		},
		{
			Type: TypeCompanyPolicy,
			Content: fmt.Sprintf("%s establishes its policy of excellence based on the standards %s.",
				company.Name, list),
		},
		{
			Type: TypeActionPlan,
			Content: fmt.Sprintf("Strategic roadmap for compliance with %s:\n"+
				"- Map internal processes\n"+
				"- Train staff on the requirements of each standard\n"+
				"- Schedule an internal audit\n"+
				"- Hold a management review before the certification audit",
				list),
		},
	}
}

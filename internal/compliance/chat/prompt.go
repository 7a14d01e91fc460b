package chat

import (
	"fmt"
	"strings"

	"github.com/gartstein/isocompliance/internal/compliance/llm"
	"github.com/gartstein/isocompliance/internal/compliance/models"
)

// FallbackReply is stored as the assistant turn when generation fails.
const FallbackReply = "Sorry, I had a problem processing your request. Please try again in a moment."

const noStandards = "none selected yet"

const systemPrompt = `You are a senior consultant specialised in ISO certification and quality management.
You give daily technical support to the company described below.
Answer in a professional, welcoming and highly technical way, as a real consultant would.`

// BuildPrompt renders the company context, its standards, the prior
// conversation and the new question into a single prompt.
func BuildPrompt(company *models.Company, standards []string, history []models.ChatMessage, question string) llm.Prompt {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Company: %s\n", company.Name)
	fmt.Fprintf(&sb, "Sector: %s\n", company.Sector)
	fmt.Fprintf(&sb, "Size: %s employees\n", company.Size)
	if len(standards) == 0 {
		fmt.Fprintf(&sb, "Standards of interest: %s\n", noStandards)
	} else {
		fmt.Fprintf(&sb, "Standards of interest: %s\n", strings.Join(standards, ", "))
	}

	if len(history) > 0 {
		sb.WriteString("\nConversation so far:\n")
		for _, m := range history {
			fmt.Fprintf(&sb, "%s: %s\n", speaker(m.Role), m.Content)
		}
	}

	fmt.Fprintf(&sb, "\nClient asks: %s\n", question)

	return llm.Prompt{System: systemPrompt, User: sb.String()}
}

func speaker(role models.Role) string {
	if role == models.RoleUser {
		return "Client"
	}
	return "Consultant"
}

// window keeps the last n messages; n <= 0 keeps everything.
func window(history []models.ChatMessage, n int) []models.ChatMessage {
	if n <= 0 || len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

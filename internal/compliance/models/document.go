package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is a generated compliance draft. Documents are append-only.
type Document struct {
	ID        uint64
	CompanyID uuid.UUID
	Type      string
	Content   string
	CreatedAt time.Time
}

// DocumentDraft is a document that has not been persisted yet.
type DocumentDraft struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Role identifies the speaker of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one turn of the support conversation of a company.
type ChatMessage struct {
	ID        uint64
	CompanyID uuid.UUID
	Role      Role
	Content   string
	CreatedAt time.Time
}

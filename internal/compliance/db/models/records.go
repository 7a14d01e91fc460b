// Package models contains the table models of the compliance store,
// configured to work using GORM as the ORM.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Company is the companies table. It uses a UUID primary key assigned by the
// service layer.
type Company struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null"`
	Sector    string    `gorm:"not null"`
	Size      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"index"`
}

// ISOSelection is the iso_selections table. The serial ID keeps insertion
// order.
type ISOSelection struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	ISOCode   string    `gorm:"column:iso_code;not null"`
	Company   Company   `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`
}

func (ISOSelection) TableName() string { return "iso_selections" }

// Document is the documents table.
type Document struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	Type      string    `gorm:"not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time
	Company   Company `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`
}

// ChatMessage is the chat_messages table.
type ChatMessage struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	Role      string    `gorm:"size:16;not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time
	Company   Company `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`
}

// All lists every table model, in migration order.
func All() []interface{} {
	return []interface{}{&Company{}, &ISOSelection{}, &Document{}, &ChatMessage{}}
}

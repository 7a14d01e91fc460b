package db

import (
	"github.com/gartstein/isocompliance/internal/compliance/db/models"
	domain "github.com/gartstein/isocompliance/internal/compliance/models"
)

func companyRecord(c *domain.Company) *models.Company {
	return &models.Company{
		ID:        c.ID,
		Name:      c.Name,
		Sector:    c.Sector,
		Size:      c.Size,
		CreatedAt: c.CreatedAt,
	}
}

func companyModel(rec *models.Company) *domain.Company {
	return &domain.Company{
		ID:        rec.ID,
		Name:      rec.Name,
		Sector:    rec.Sector,
		Size:      rec.Size,
		CreatedAt: rec.CreatedAt,
	}
}

func selectionModel(rec models.ISOSelection) domain.StandardSelection {
	return domain.StandardSelection{
		ID:        rec.ID,
		CompanyID: rec.CompanyID,
		ISOCode:   rec.ISOCode,
	}
}

func documentModel(rec models.Document) domain.Document {
	return domain.Document{
		ID:        rec.ID,
		CompanyID: rec.CompanyID,
		Type:      rec.Type,
		Content:   rec.Content,
		CreatedAt: rec.CreatedAt,
	}
}

func chatModel(rec models.ChatMessage) domain.ChatMessage {
	return domain.ChatMessage{
		ID:        rec.ID,
		CompanyID: rec.CompanyID,
		Role:      domain.Role(rec.Role),
		Content:   rec.Content,
		CreatedAt: rec.CreatedAt,
	}
}

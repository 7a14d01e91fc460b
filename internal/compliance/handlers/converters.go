package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	e "github.com/gartstein/isocompliance/internal/compliance/errors"
	"github.com/gartstein/isocompliance/internal/compliance/models"
	"github.com/gartstein/isocompliance/internal/compliance/recommend"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type companyRequest struct {
	Name   string `json:"name"`
	Sector string `json:"sector"`
	Size   string `json:"size"`
}

type recommendRequest struct {
	Sector *string `json:"sector"`
}

type recommendResponse struct {
	Recommended []string `json:"recommended"`
}

type selectRequest struct {
	Isos []string `json:"isos"`
}

type chatRequest struct {
	Content *string `json:"content"`
}

type companyResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Sector    string    `json:"sector"`
	Size      string    `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

type selectionResponse struct {
	ID        uint64    `json:"id"`
	CompanyID uuid.UUID `json:"companyId"`
	ISOCode   string    `json:"isoCode"`
}

type documentResponse struct {
	ID        uint64    `json:"id"`
	CompanyID uuid.UUID `json:"companyId"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type chatMessageResponse struct {
	ID        uint64      `json:"id"`
	CompanyID uuid.UUID   `json:"companyId"`
	Role      models.Role `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
}

type standardResponse struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

type errorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (r companyRequest) toModel() *models.Company {
	return &models.Company{Name: r.Name, Sector: r.Sector, Size: r.Size}
}

func companyToResponse(c *models.Company) companyResponse {
	return companyResponse{ID: c.ID, Name: c.Name, Sector: c.Sector, Size: c.Size, CreatedAt: c.CreatedAt}
}

func companiesToResponse(companies []models.Company) []companyResponse {
	out := make([]companyResponse, 0, len(companies))
	for i := range companies {
		out = append(out, companyToResponse(&companies[i]))
	}
	return out
}

func selectionsToResponse(selections []models.StandardSelection) []selectionResponse {
	out := make([]selectionResponse, 0, len(selections))
	for _, s := range selections {
		out = append(out, selectionResponse{ID: s.ID, CompanyID: s.CompanyID, ISOCode: s.ISOCode})
	}
	return out
}

func documentsToResponse(docs []models.Document) []documentResponse {
	out := make([]documentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentResponse{
			ID:        d.ID,
			CompanyID: d.CompanyID,
			Type:      d.Type,
			Content:   d.Content,
			CreatedAt: d.CreatedAt,
		})
	}
	return out
}

func chatMessageToResponse(m *models.ChatMessage) chatMessageResponse {
	return chatMessageResponse{
		ID:        m.ID,
		CompanyID: m.CompanyID,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

func chatMessagesToResponse(msgs []models.ChatMessage) []chatMessageResponse {
	out := make([]chatMessageResponse, 0, len(msgs))
	for i := range msgs {
		out = append(out, chatMessageToResponse(&msgs[i]))
	}
	return out
}

func catalogToResponse(standards []recommend.Standard) []standardResponse {
	out := make([]standardResponse, 0, len(standards))
	for _, s := range standards {
		out = append(out, standardResponse{Code: s.Code, Title: s.Title})
	}
	return out
}

// mapServiceError maps domain or repository errors to an HTTP status and
// body. Internal failures are logged and reported without detail.
func (h *CompanyHandler) mapServiceError(err error) (int, errorResponse) {
	var ve *e.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, errorResponse{Message: ve.Message, Field: ve.Field}
	case errors.Is(err, e.ErrInvalidInput):
		return http.StatusBadRequest, errorResponse{Message: err.Error()}
	case errors.Is(err, e.ErrNotFound):
		return http.StatusNotFound, errorResponse{Message: "company not found"}
	case errors.Is(err, e.ErrPreconditionFailed):
		return http.StatusBadRequest, errorResponse{Message: strings.TrimPrefix(err.Error(), e.ErrPreconditionFailed.Error()+": ")}
	default:
		h.logger.Error("Internal server error", zap.Error(err))
		return http.StatusInternalServerError, errorResponse{Message: "internal server error"}
	}
}

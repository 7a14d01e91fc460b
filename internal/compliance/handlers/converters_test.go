package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	e "github.com/gartstein/isocompliance/internal/compliance/errors"
	"github.com/gartstein/isocompliance/internal/compliance/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMapServiceError(t *testing.T) {
	core, recorded := observer.New(zap.ErrorLevel)
	h := &CompanyHandler{logger: zap.New(core)}

	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedBody errorResponse
	}{
		{"validation", e.Invalid("sector", "sector is required"), http.StatusBadRequest, errorResponse{Message: "sector is required", Field: "sector"}},
		{"wrapped validation", fmt.Errorf("create: %w", e.Invalid("name", "name is required")), http.StatusBadRequest, errorResponse{Message: "name is required", Field: "name"}},
		{"invalid input", e.ErrInvalidInput, http.StatusBadRequest, errorResponse{Message: "invalid input"}},
		{"not found", fmt.Errorf("lookup: %w", e.ErrNotFound), http.StatusNotFound, errorResponse{Message: "company not found"}},
		{"precondition", e.ErrNoStandardsSelected, http.StatusBadRequest, errorResponse{Message: "select standards before generating documents"}},
		{"internal", errors.New("some internal error"), http.StatusInternalServerError, errorResponse{Message: "internal server error"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := h.mapServiceError(tt.err)
			if code != tt.expectedCode {
				t.Errorf("expected code %d, got %d", tt.expectedCode, code)
			}
			if body != tt.expectedBody {
				t.Errorf("expected body %+v, got %+v", tt.expectedBody, body)
			}
		})
	}

	if recorded.FilterMessage("Internal server error").Len() != 1 {
		t.Error("expected only the internal error to be logged")
	}
}

func TestCompanyToResponse(t *testing.T) {
	company := &models.Company{ID: uuid.New(), Name: "Acme", Sector: "Food", Size: "1-10"}

	resp := companyToResponse(company)

	if resp.ID != company.ID || resp.Name != "Acme" || resp.Sector != "Food" || resp.Size != "1-10" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestListConvertersNeverNil(t *testing.T) {
	if companiesToResponse(nil) == nil {
		t.Error("expected empty companies slice")
	}
	if selectionsToResponse(nil) == nil {
		t.Error("expected empty selections slice")
	}
	if documentsToResponse(nil) == nil {
		t.Error("expected empty documents slice")
	}
	if chatMessagesToResponse(nil) == nil {
		t.Error("expected empty chat slice")
	}
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	e "github.com/gartstein/isocompliance/internal/compliance/errors"
	"github.com/gartstein/isocompliance/internal/compliance/models"
	"github.com/gartstein/isocompliance/internal/compliance/recommend"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

var codec runtime.Marshaler = &runtime.JSONBuiltin{}

// CompanyController defines the business logic interface
// that the HTTP handlers will invoke.
type CompanyController interface {
	CreateCompany(ctx context.Context, company *models.Company) (*models.Company, error)
	ListCompanies(ctx context.Context) ([]models.Company, error)
	GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error)
	RecommendStandards(sector string) []string
	StandardCatalog() []recommend.Standard
	SelectStandards(ctx context.Context, companyID uuid.UUID, codes []string) ([]models.StandardSelection, error)
	ListStandards(ctx context.Context, companyID uuid.UUID) ([]models.StandardSelection, error)
	GenerateDocuments(ctx context.Context, companyID uuid.UUID) ([]models.Document, error)
	ListDocuments(ctx context.Context, companyID uuid.UUID) ([]models.Document, error)
	ListChatMessages(ctx context.Context, companyID uuid.UUID) ([]models.ChatMessage, error)
	SendChatMessage(ctx context.Context, companyID uuid.UUID, content string) (*models.ChatMessage, error)
}

// CompanyHandler serves the JSON API over a CompanyController.
type CompanyHandler struct {
	service CompanyController
	logger  *zap.Logger
}

func NewCompanyHandler(service CompanyController, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{
		service: service,
		logger:  logger.Named("http_handler"),
	}
}

// Register adds the API routes to mux.
func (h *CompanyHandler) Register(mux *runtime.ServeMux) error {
	routes := []struct {
		method  string
		pattern string
		handler runtime.HandlerFunc
	}{
		{http.MethodPost, "/api/companies", h.createCompany},
		{http.MethodGet, "/api/companies", h.listCompanies},
		{http.MethodGet, "/api/companies/{id}", h.getCompany},
		{http.MethodPost, "/api/iso/recommend", h.recommend},
		{http.MethodGet, "/api/iso/catalog", h.catalog},
		{http.MethodPost, "/api/companies/{id}/iso", h.selectStandards},
		{http.MethodGet, "/api/companies/{id}/iso", h.listStandards},
		{http.MethodPost, "/api/companies/{id}/documents/generate", h.generateDocuments},
		{http.MethodGet, "/api/companies/{id}/documents", h.listDocuments},
		{http.MethodGet, "/api/companies/{id}/chat", h.listChatMessages},
		{http.MethodPost, "/api/companies/{id}/chat", h.sendChatMessage},
	}
	for _, rt := range routes {
		if err := mux.HandlePath(rt.method, rt.pattern, rt.handler); err != nil {
			return fmt.Errorf("failed to register %s %s: %w", rt.method, rt.pattern, err)
		}
	}
	return nil
}

func (h *CompanyHandler) createCompany(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req companyRequest
	if !h.decode(w, r, &req) {
		return
	}
	created, err := h.service.CreateCompany(r.Context(), req.toModel())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, companyToResponse(created))
}

func (h *CompanyHandler) listCompanies(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	companies, err := h.service.ListCompanies(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, companiesToResponse(companies))
}

func (h *CompanyHandler) getCompany(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, ok := h.companyID(w, params)
	if !ok {
		return
	}
	company, err := h.service.GetCompany(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, companyToResponse(company))
}

func (h *CompanyHandler) recommend(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req recommendRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Sector == nil {
		h.writeError(w, e.Invalid("sector", "sector is required"))
		return
	}
	h.writeJSON(w, http.StatusOK, recommendResponse{Recommended: h.service.RecommendStandards(*req.Sector)})
}

func (h *CompanyHandler) catalog(w http.ResponseWriter, _ *http.Request, _ map[string]string) {
	h.writeJSON(w, http.StatusOK, catalogToResponse(h.service.StandardCatalog()))
}

func (h *CompanyHandler) selectStandards(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, ok := h.companyID(w, params)
	if !ok {
		return
	}
	var req selectRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Isos == nil {
		h.writeError(w, e.Invalid("isos", "isos must be a list of standard codes"))
		return
	}
	selections, err := h.service.SelectStandards(r.Context(), id, req.Isos)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, selectionsToResponse(selections))
}

func (h *CompanyHandler) listStandards(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, ok := h.companyID(w, params)
	if !ok {
		return
	}
	selections, err := h.service.ListStandards(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, selectionsToResponse(selections))
}

func (h *CompanyHandler) generateDocuments(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, ok := h.companyID(w, params)
	if !ok {
		return
	}
	docs, err := h.service.GenerateDocuments(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, documentsToResponse(docs))
}

func (h *CompanyHandler) listDocuments(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, ok := h.companyID(w, params)
	if !ok {
		return
	}
	docs, err := h.service.ListDocuments(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, documentsToResponse(docs))
}

func (h *CompanyHandler) listChatMessages(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, ok := h.companyID(w, params)
	if !ok {
		return
	}
	msgs, err := h.service.ListChatMessages(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, chatMessagesToResponse(msgs))
}

func (h *CompanyHandler) sendChatMessage(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, ok := h.companyID(w, params)
	if !ok {
		return
	}
	var req chatRequest
	if !h.decode(w, r, &req) {
		return
	}
	content := ""
	if req.Content != nil {
		content = *req.Content
	}
	reply, err := h.service.SendChatMessage(r.Context(), id, content)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, chatMessageToResponse(reply))
}

func (h *CompanyHandler) companyID(w http.ResponseWriter, params map[string]string) (uuid.UUID, bool) {
	id, err := uuid.Parse(params["id"])
	if err != nil {
		h.writeError(w, e.Invalid("id", "invalid company ID"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *CompanyHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	err := codec.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil {
		return true
	}
	if errors.Is(err, io.EOF) {
		h.writeError(w, e.Invalid("", "request body required"))
	} else {
		h.writeError(w, e.Invalid("", "invalid request body"))
	}
	return false
}

func (h *CompanyHandler) writeError(w http.ResponseWriter, err error) {
	code, body := h.mapServiceError(err)
	h.writeJSON(w, code, body)
}

func (h *CompanyHandler) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	data, err := codec.Marshal(v)
	if err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
		http.Error(w, `{"message":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", codec.ContentType(v))
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		h.logger.Debug("Failed to write response", zap.Error(err))
	}
}

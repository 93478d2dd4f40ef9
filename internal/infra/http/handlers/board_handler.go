package handlers

import (
	"log/slog"
	"net/http"

	"github.com/xavierca1/dealer-leads/internal/entity"
	"github.com/xavierca1/dealer-leads/internal/infra/http/middleware"
	"github.com/xavierca1/dealer-leads/internal/usecase"
)

// BoardHandler serves the dashboard side: stats, advisor load and catalogs.
type BoardHandler struct {
	queryUC *usecase.LeadQueryUseCase
	models  []string
	logger  *slog.Logger
}

func NewBoardHandler(queryUC *usecase.LeadQueryUseCase, models []string, logger *slog.Logger) *BoardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BoardHandler{queryUC: queryUC, models: models, logger: logger}
}

type CatalogResponse struct {
	Statuses []entity.StatusInfo `json:"statuses"`
	Sources  []entity.SourceInfo `json:"sources"`
	Models   []string            `json:"models"`
}

// Dashboard handles GET /dashboard.
func (h *BoardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.queryUC.Dashboard(r.Context(), middleware.ViewerID(r.Context()))
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Advisors handles GET /advisors.
func (h *BoardHandler) Advisors(w http.ResponseWriter, r *http.Request) {
	loads, err := h.queryUC.AdvisorLoads(r.Context())
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loads)
}

// Catalog handles GET /catalog.
func (h *BoardHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CatalogResponse{
		Statuses: entity.StatusFlow,
		Sources:  entity.Sources,
		Models:   h.models,
	})
}

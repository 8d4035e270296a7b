package handlers

import (
	"errors"
	"net/http"
	"strings"

	chiRoute "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"innovator-portal/pkg/database"
	"innovator-portal/pkg/middleware"
	"innovator-portal/pkg/models"
	"innovator-portal/pkg/utils"
)

type IdeasHandler struct {
	db     database.IdeaRepository
	logger *zap.Logger
}

func NewIdeasHandler(db database.IdeaRepository, logger *zap.Logger) *IdeasHandler {
	return &IdeasHandler{db: db, logger: logger}
}

// GET /
func (h *IdeasHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.db.HealthCheck(); err != nil {
		utils.WriteErrorResponse(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{"status": "ok"})
}

// GET /api/v1/innovator/view-ideas
func (h *IdeasHandler) ListIdeas(w http.ResponseWriter, r *http.Request) {
	p, err := middleware.RequirePrincipal(r.Context())
	if err != nil { utils.WriteUnauthorizedResponse(w, "Not authenticated"); return }
	list, err := h.db.ListIdeas(p.UserID)
	if err != nil { h.internal(w, "list", err); return }
	utils.WriteSuccessResponse(w, list)
}

// POST /api/v1/innovator/submit-idea
func (h *IdeasHandler) SubmitIdea(w http.ResponseWriter, r *http.Request) {
	p, err := middleware.RequirePrincipal(r.Context())
	if err != nil { utils.WriteUnauthorizedResponse(w, "Not authenticated"); return }
	var req models.IdeaDraft
	if err := utils.ParseJSONBody(r, &req); err != nil { utils.WriteBadRequestResponse(w, "Invalid request body"); return }
	if !req.HasContent() {
		utils.WriteErrorResponse(w, http.StatusUnprocessableEntity, "Title or description is required")
		return
	}
	if msg := checkEnums(req.Status, req.Visibility); msg != "" {
		utils.WriteErrorResponse(w, http.StatusUnprocessableEntity, msg)
		return
	}
	idea, err := h.db.CreateIdea(p.UserID, req)
	if err != nil { h.internal(w, "create", err); return }
	utils.WriteCreatedResponse(w, idea)
}

// PUT /api/v1/innovator/update-idea/{id}
func (h *IdeasHandler) UpdateIdea(w http.ResponseWriter, r *http.Request) {
	p, err := middleware.RequirePrincipal(r.Context())
	if err != nil { utils.WriteUnauthorizedResponse(w, "Not authenticated"); return }
	id := chiRoute.URLParam(r, "id")
	if strings.TrimSpace(id) == "" { utils.WriteBadRequestResponse(w, "idea id required"); return }
	var patch models.IdeaPatch
	if err := utils.ParseJSONBody(r, &patch); err != nil { utils.WriteBadRequestResponse(w, "Invalid request body"); return }
	var status models.IdeaStatus
	var visibility models.Visibility
	if patch.Status != nil { status = *patch.Status }
	if patch.Visibility != nil { visibility = *patch.Visibility }
	if msg := checkEnums(status, visibility); msg != "" {
		utils.WriteErrorResponse(w, http.StatusUnprocessableEntity, msg)
		return
	}
	idea, err := h.db.UpdateIdea(p.UserID, id, patch)
	if errors.Is(err, database.ErrNotFound) { utils.WriteNotFoundResponse(w, "Idea not found"); return }
	if err != nil { h.internal(w, "update", err); return }
	utils.WriteSuccessResponse(w, idea)
}

// DELETE /api/v1/innovator/delete-idea/{id}
func (h *IdeasHandler) DeleteIdea(w http.ResponseWriter, r *http.Request) {
	p, err := middleware.RequirePrincipal(r.Context())
	if err != nil { utils.WriteUnauthorizedResponse(w, "Not authenticated"); return }
	id := chiRoute.URLParam(r, "id")
	if strings.TrimSpace(id) == "" { utils.WriteBadRequestResponse(w, "idea id required"); return }
	err = h.db.DeleteIdea(p.UserID, id)
	if errors.Is(err, database.ErrNotFound) { utils.WriteNotFoundResponse(w, "Idea not found"); return }
	if err != nil { h.internal(w, "delete", err); return }
	utils.WriteSuccessResponse(w, map[string]interface{}{"deleted": true, "id": id})
}

func (h *IdeasHandler) internal(w http.ResponseWriter, op string, err error) {
	h.logger.Error("idea repository failed", zap.String("op", op), zap.Error(err))
	utils.WriteInternalServerErrorResponse(w, "Internal server error")
}

// checkEnums returns a client-facing message for an unknown status or visibility.
func checkEnums(status models.IdeaStatus, visibility models.Visibility) string {
	if status != "" && !status.Valid() {
		return "Invalid status: " + string(status)
	}
	if visibility != "" && !visibility.Valid() {
		return "Invalid visibility: " + string(visibility)
	}
	return ""
}

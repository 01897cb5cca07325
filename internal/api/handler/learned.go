package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cmdstash/cmdstash/internal/api/middleware"
	"github.com/cmdstash/cmdstash/internal/api/response"
	"github.com/cmdstash/cmdstash/internal/api/validation"
	"github.com/cmdstash/cmdstash/internal/command"
	"github.com/cmdstash/cmdstash/internal/learned"
)

// learnRequest is the request body for POST /api/learn.
type learnRequest struct {
	ExecutedCommand string  `json:"executed_command"`
	OS              *string `json:"os"`
	Pwd             *string `json:"pwd"`
	LsOutput        *string `json:"ls_output"`
}

// promoteRequest is the request body for POST /api/learned/{id}/promote.
type promoteRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Platform    string   `json:"platform"`
	Visibility  *string  `json:"visibility"`
	Tags        []string `json:"tags"`
}

// learnedResponse is the API representation of a learned command.
type learnedResponse struct {
	ID         string     `json:"id"`
	Content    string     `json:"content"`
	OS         *string    `json:"os"`
	Pwd        *string    `json:"pwd"`
	LsOutput   *string    `json:"ls_output"`
	UsageCount int        `json:"usage_count"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}

// learnedPage is the response body for GET /api/learned.
type learnedPage struct {
	Items  []learnedResponse `json:"items"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// LearnedHandler handles the learned-command endpoints.
type LearnedHandler struct {
	repo     learned.Repository
	commands command.Repository
}

// NewLearnedHandler creates a new LearnedHandler.
func NewLearnedHandler(repo learned.Repository, commands command.Repository) *LearnedHandler {
	return &LearnedHandler{
		repo:     repo,
		commands: commands,
	}
}

// Learn handles POST /api/learn.
func (h *LearnedHandler) Learn(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetToken(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req learnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}

	content := strings.TrimSpace(req.ExecutedCommand)
	if content == "" {
		response.Err(w, http.StatusBadRequest, "executed_command is required")
		return
	}

	entry := learned.Entry{
		Content:  content,
		OS:       req.OS,
		Pwd:      req.Pwd,
		LsOutput: req.LsOutput,
	}
	if err := h.repo.Record(r.Context(), token.ID, entry); err != nil {
		slog.Error("failed to record learned command", "error", err)
		response.Err(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// List handles GET /api/learned.
func (h *LearnedHandler) List(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetToken(r.Context())

	var limit, offset int
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			response.Err(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			response.Err(w, http.StatusBadRequest, "offset must be an integer")
			return
		}
		offset = n
	}

	page, err := h.repo.List(r.Context(), token.ID, limit, offset)
	if err != nil {
		slog.Error("failed to list learned commands", "error", err)
		response.Err(w, http.StatusInternalServerError, "internal server error")
		return
	}

	items := make([]learnedResponse, 0, len(page.Items))
	for _, lc := range page.Items {
		items = append(items, learnedResponse{
			ID:         lc.ID.String(),
			Content:    lc.Content,
			OS:         lc.OS,
			Pwd:        lc.Pwd,
			LsOutput:   lc.LsOutput,
			UsageCount: lc.UsageCount,
			CreatedAt:  lc.CreatedAt,
			LastUsedAt: lc.LastUsedAt,
		})
	}

	response.JSON(w, http.StatusOK, learnedPage{
		Items:  items,
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

// Promote handles POST /api/learned/{id}/promote: it copies an owned
// learned command into the catalog, carrying its usage counter.
func (h *LearnedHandler) Promote(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetToken(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req promoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}

	visibility := command.VisibilityPrivate
	if req.Visibility != nil {
		visibility = *req.Visibility
	}
	if err := validation.Visibility(visibility); err != nil {
		response.Err(w, http.StatusBadRequest, err.Error())
		return
	}

	lc, err := h.repo.Get(r.Context(), token.ID, id)
	if err != nil {
		if errors.Is(err, learned.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "learned command not found")
			return
		}
		slog.Error("failed to load learned command", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "internal server error")
		return
	}

	created, err := h.commands.Create(r.Context(), token.ID, command.CreateParams{
		Title:       req.Title,
		Text:        lc.Content,
		Description: req.Description,
		Platform:    req.Platform,
		Visibility:  visibility,
		UsageCount:  lc.UsageCount,
		Tags:        req.Tags,
	})
	if err != nil {
		slog.Error("failed to promote learned command", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response.JSON(w, http.StatusCreated, toCommandResponse(created))
}

package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cmdstash/cmdstash/internal/api/middleware"
	"github.com/cmdstash/cmdstash/internal/api/response"
	"github.com/cmdstash/cmdstash/internal/api/validation"
	"github.com/cmdstash/cmdstash/internal/command"
)

// createCommandRequest is the request body for POST /api/commands.
type createCommandRequest struct {
	Title       *string  `json:"title"`
	Text        string   `json:"text"`
	Description *string  `json:"description"`
	Platform    string   `json:"platform"`
	Visibility  *string  `json:"visibility"`
	Favorite    *bool    `json:"favorite"`
	Tags        []string `json:"tags"`
}

// commandResponse is the API representation of a command with its tags.
type commandResponse struct {
	ID          string     `json:"id"`
	Title       *string    `json:"title"`
	Text        string     `json:"text"`
	Description *string    `json:"description"`
	Platform    string     `json:"platform"`
	Visibility  string     `json:"visibility"`
	Favorite    bool       `json:"favorite"`
	UsageCount  int        `json:"usage_count"`
	Tags        []string   `json:"tags"`
	CreatedAt   time.Time  `json:"created_at"`
	LastUsedAt  *time.Time `json:"last_used_at"`
}

// commandPage is the response body for GET /api/commands.
type commandPage struct {
	Items  []commandResponse `json:"items"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// suggestRequest is the request body for POST /api/suggest. The os and pwd
// context fields are accepted for future relevance scoring.
type suggestRequest struct {
	Query string  `json:"query"`
	OS    *string `json:"os"`
	Pwd   *string `json:"pwd"`
}

// toCommandResponse converts a catalog model to its API representation.
func toCommandResponse(c *command.CommandWithTags) commandResponse {
	return commandResponse{
		ID:          c.ID.String(),
		Title:       c.Title,
		Text:        c.Text,
		Description: c.Description,
		Platform:    c.Platform,
		Visibility:  c.Visibility,
		Favorite:    c.Favorite,
		UsageCount:  c.UsageCount,
		Tags:        c.Tags,
		CreatedAt:   c.CreatedAt,
		LastUsedAt:  c.LastUsedAt,
	}
}

// CommandHandler handles catalog endpoints.
type CommandHandler struct {
	repo command.Repository
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(repo command.Repository) *CommandHandler {
	return &CommandHandler{repo: repo}
}

// List handles GET /api/commands. Anonymous callers get the public-only
// view; authenticated callers additionally see their own commands.
func (h *CommandHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := command.ListFilter{}

	if token := middleware.GetToken(r.Context()); token != nil {
		filter.OwnerToken = &token.ID
	}

	if v := r.URL.Query().Get("q"); v != "" {
		filter.Text = &v
	}
	if v := r.URL.Query().Get("tag"); v != "" {
		filter.Tag = &v
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			response.Err(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		filter.Limit = limit
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			response.Err(w, http.StatusBadRequest, "offset must be an integer")
			return
		}
		filter.Offset = offset
	}

	page, err := h.repo.List(r.Context(), filter)
	if err != nil {
		slog.Error("failed to list commands", "error", err)
		response.Err(w, http.StatusInternalServerError, "internal server error")
		return
	}

	items := make([]commandResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, toCommandResponse(&page.Items[i]))
	}

	response.JSON(w, http.StatusOK, commandPage{
		Items:  items,
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

// Create handles POST /api/commands.
func (h *CommandHandler) Create(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetToken(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}

	if err := validation.CommandPayload(req.Text, req.Platform); err != nil {
		response.Err(w, http.StatusBadRequest, err.Error())
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

	favorite := false
	if req.Favorite != nil {
		favorite = *req.Favorite
	}

	created, err := h.repo.Create(r.Context(), token.ID, command.CreateParams{
		Title:       req.Title,
		Text:        req.Text,
		Description: req.Description,
		Platform:    req.Platform,
		Visibility:  visibility,
		Favorite:    favorite,
		Tags:        req.Tags,
	})
	if err != nil {
		slog.Error("failed to create command", "error", err)
		response.Err(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response.JSON(w, http.StatusCreated, toCommandResponse(created))
}

// Delete handles DELETE /api/commands/{id}. A command that exists under a
// different owner reports the same 404 as one that never existed.
func (h *CommandHandler) Delete(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetToken(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	if err := h.repo.Delete(r.Context(), token.ID, id); err != nil {
		if errors.Is(err, command.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "command not found")
			return
		}
		slog.Error("failed to delete command", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response.NoContent(w)
}

// Suggest handles POST /api/suggest.
func (h *CommandHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}

	var ownerToken *uuid.UUID
	if token := middleware.GetToken(r.Context()); token != nil {
		ownerToken = &token.ID
	}

	suggestions, err := h.repo.Suggest(r.Context(), ownerToken, req.Query)
	if err != nil {
		slog.Error("failed to suggest commands", "error", err)
		response.Err(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response.JSON(w, http.StatusOK, suggestions)
}

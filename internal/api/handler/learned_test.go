package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmdstash/cmdstash/internal/api/handler"
	"github.com/cmdstash/cmdstash/internal/api/middleware"
	"github.com/cmdstash/cmdstash/internal/command"
	"github.com/cmdstash/cmdstash/internal/learned"
)

// --- Learn ---

func TestLearn_RecordsTrimmedContent(t *testing.T) {
	t.Parallel()

	token := newTestToken()
	var captured learned.Entry
	repo := &mockLearnedRepo{
		recordFn: func(_ context.Context, owner uuid.UUID, entry learned.Entry) error {
			assert.Equal(t, token.ID, owner)
			captured = entry
			return nil
		},
	}
	h := handler.NewLearnedHandler(repo, &mockCommandRepo{})

	req := authedRequest(http.MethodPost, "/api/learn",
		`{"executed_command":"  git push origin main  ","os":"linux","pwd":"/home/alice"}`)
	rec := serveRouted(t, token, func(r chi.Router) {
		r.With(middleware.RequireToken).Post("/api/learn", h.Learn)
	}, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "git push origin main", captured.Content)
	require.NotNil(t, captured.OS)
	assert.Equal(t, "linux", *captured.OS)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestLearn_EmptyCommandRejected(t *testing.T) {
	t.Parallel()

	token := newTestToken()
	h := handler.NewLearnedHandler(&mockLearnedRepo{}, &mockCommandRepo{})
	register := func(r chi.Router) {
		r.With(middleware.RequireToken).Post("/api/learn", h.Learn)
	}

	for _, body := range []string{
		`{"executed_command":""}`,
		`{"executed_command":"   "}`,
		`{}`,
	} {
		req := authedRequest(http.MethodPost, "/api/learn", body)
		rec := serveRouted(t, token, register, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}

func TestLearn_RequiresToken(t *testing.T) {
	t.Parallel()

	h := handler.NewLearnedHandler(&mockLearnedRepo{}, &mockCommandRepo{})

	req := authedRequest(http.MethodPost, "/api/learn", `{"executed_command":"ls"}`)
	req.Header.Del("Authorization")
	rec := serveRouted(t, nil, func(r chi.Router) {
		r.With(middleware.RequireToken).Post("/api/learn", h.Learn)
	}, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// --- List ---

func TestListLearned_OwnerScopedPaging(t *testing.T) {
	t.Parallel()

	token := newTestToken()
	repo := &mockLearnedRepo{
		listFn: func(_ context.Context, owner uuid.UUID, limit, offset int) (*learned.Page, error) {
			assert.Equal(t, token.ID, owner)
			assert.Equal(t, 5, limit)
			assert.Equal(t, 10, offset)
			return &learned.Page{Items: []learned.LearnedCommand{}, Total: 0, Limit: 5, Offset: 10}, nil
		},
	}
	h := handler.NewLearnedHandler(repo, &mockCommandRepo{})

	req := authedRequest(http.MethodGet, "/api/learned?limit=5&offset=10", "")
	rec := serveRouted(t, token, func(r chi.Router) {
		r.With(middleware.RequireToken).Get("/api/learned", h.List)
	}, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)
}

// --- Promote ---

func TestPromote_CarriesContentAndUsage(t *testing.T) {
	t.Parallel()

	token := newTestToken()
	learnedID := uuid.New()
	repo := &mockLearnedRepo{
		getFn: func(_ context.Context, owner, id uuid.UUID) (*learned.LearnedCommand, error) {
			assert.Equal(t, token.ID, owner)
			assert.Equal(t, learnedID, id)
			return &learned.LearnedCommand{ID: id, OwnerToken: owner, Content: "git push", UsageCount: 7}, nil
		},
	}
	var captured command.CreateParams
	commands := &mockCommandRepo{
		createFn: func(_ context.Context, owner uuid.UUID, params command.CreateParams) (*command.CommandWithTags, error) {
			assert.Equal(t, token.ID, owner)
			captured = params
			return &command.CommandWithTags{
				Command: command.Command{ID: uuid.New(), Text: params.Text, Platform: params.Platform, Visibility: params.Visibility, OwnerToken: owner, UsageCount: params.UsageCount},
				Tags:    []string{},
			}, nil
		},
	}
	h := handler.NewLearnedHandler(repo, commands)

	req := authedRequest(http.MethodPost, "/api/learned/"+learnedID.String()+"/promote",
		`{"platform":"linux","visibility":"PUBLIC","tags":["vcs"]}`)
	rec := serveRouted(t, token, func(r chi.Router) {
		r.With(middleware.RequireToken).Post("/api/learned/{id}/promote", h.Promote)
	}, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "git push", captured.Text, "catalog text comes from the learned row, not the request")
	assert.Equal(t, 7, captured.UsageCount)
	assert.Equal(t, command.VisibilityPublic, captured.Visibility)

	var body struct {
		Text       string `json:"text"`
		UsageCount int    `json:"usage_count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "git push", body.Text)
	assert.Equal(t, 7, body.UsageCount)
}

func TestPromote_Failures(t *testing.T) {
	t.Parallel()

	token := newTestToken()
	h := handler.NewLearnedHandler(&mockLearnedRepo{}, &mockCommandRepo{})
	register := func(r chi.Router) {
		r.With(middleware.RequireToken).Post("/api/learned/{id}/promote", h.Promote)
	}

	// Malformed id.
	req := authedRequest(http.MethodPost, "/api/learned/nope/promote", `{"platform":"linux"}`)
	rec := serveRouted(t, token, register, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Bad visibility is rejected before the learned row is loaded.
	req = authedRequest(http.MethodPost, "/api/learned/"+uuid.NewString()+"/promote",
		`{"platform":"linux","visibility":"SECRET"}`)
	rec = serveRouted(t, token, register, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown or foreign row: 404 from the default mock.
	req = authedRequest(http.MethodPost, "/api/learned/"+uuid.NewString()+"/promote", `{"platform":"linux"}`)
	rec = serveRouted(t, token, register, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

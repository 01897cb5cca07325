package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cmdstash/cmdstash/internal/api/middleware"
	"github.com/cmdstash/cmdstash/internal/auth"
	"github.com/cmdstash/cmdstash/internal/command"
	"github.com/cmdstash/cmdstash/internal/learned"
)

const testTokenValue = "test-token-value"

// --- Mock repositories ---

type mockCommandRepo struct {
	listFn    func(ctx context.Context, filter command.ListFilter) (*command.Page, error)
	createFn  func(ctx context.Context, owner uuid.UUID, params command.CreateParams) (*command.CommandWithTags, error)
	deleteFn  func(ctx context.Context, owner, id uuid.UUID) error
	suggestFn func(ctx context.Context, owner *uuid.UUID, query string) ([]string, error)
}

func (m *mockCommandRepo) List(ctx context.Context, filter command.ListFilter) (*command.Page, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return &command.Page{Items: []command.CommandWithTags{}, Limit: 20}, nil
}

func (m *mockCommandRepo) Create(ctx context.Context, owner uuid.UUID, params command.CreateParams) (*command.CommandWithTags, error) {
	if m.createFn != nil {
		return m.createFn(ctx, owner, params)
	}
	return &command.CommandWithTags{
		Command: command.Command{
			ID:         uuid.New(),
			Text:       params.Text,
			Platform:   params.Platform,
			Visibility: params.Visibility,
			OwnerToken: owner,
			UsageCount: params.UsageCount,
		},
		Tags: []string{},
	}, nil
}

func (m *mockCommandRepo) Delete(ctx context.Context, owner, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, owner, id)
	}
	return nil
}

func (m *mockCommandRepo) Suggest(ctx context.Context, owner *uuid.UUID, query string) ([]string, error) {
	if m.suggestFn != nil {
		return m.suggestFn(ctx, owner, query)
	}
	return []string{}, nil
}

type mockLearnedRepo struct {
	recordFn func(ctx context.Context, owner uuid.UUID, entry learned.Entry) error
	listFn   func(ctx context.Context, owner uuid.UUID, limit, offset int) (*learned.Page, error)
	getFn    func(ctx context.Context, owner, id uuid.UUID) (*learned.LearnedCommand, error)
}

func (m *mockLearnedRepo) Record(ctx context.Context, owner uuid.UUID, entry learned.Entry) error {
	if m.recordFn != nil {
		return m.recordFn(ctx, owner, entry)
	}
	return nil
}

func (m *mockLearnedRepo) List(ctx context.Context, owner uuid.UUID, limit, offset int) (*learned.Page, error) {
	if m.listFn != nil {
		return m.listFn(ctx, owner, limit, offset)
	}
	return &learned.Page{Items: []learned.LearnedCommand{}, Limit: 20}, nil
}

func (m *mockLearnedRepo) Get(ctx context.Context, owner, id uuid.UUID) (*learned.LearnedCommand, error) {
	if m.getFn != nil {
		return m.getFn(ctx, owner, id)
	}
	return nil, learned.ErrNotFound
}

type mockAuthRepo struct {
	createUserWithTokenFn func(ctx context.Context, u *auth.User, t *auth.Token) error
	getUserByEmailFn      func(ctx context.Context, email string) (*auth.User, error)
	createTokenFn         func(ctx context.Context, t *auth.Token) error
	getTokenByValueFn     func(ctx context.Context, value string) (*auth.Token, error)
	getTokenByIDFn        func(ctx context.Context, id uuid.UUID) (*auth.Token, error)
}

func (m *mockAuthRepo) CreateUserWithToken(ctx context.Context, u *auth.User, t *auth.Token) error {
	if m.createUserWithTokenFn != nil {
		return m.createUserWithTokenFn(ctx, u, t)
	}
	return nil
}

func (m *mockAuthRepo) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	if m.getUserByEmailFn != nil {
		return m.getUserByEmailFn(ctx, email)
	}
	return nil, auth.ErrUserNotFound
}

func (m *mockAuthRepo) CreateToken(ctx context.Context, t *auth.Token) error {
	if m.createTokenFn != nil {
		return m.createTokenFn(ctx, t)
	}
	return nil
}

func (m *mockAuthRepo) GetTokenByValue(ctx context.Context, value string) (*auth.Token, error) {
	if m.getTokenByValueFn != nil {
		return m.getTokenByValueFn(ctx, value)
	}
	return nil, auth.ErrTokenNotFound
}

func (m *mockAuthRepo) GetTokenByID(ctx context.Context, id uuid.UUID) (*auth.Token, error) {
	if m.getTokenByIDFn != nil {
		return m.getTokenByIDFn(ctx, id)
	}
	return nil, auth.ErrTokenNotFound
}

// --- Request helpers ---

// staticResolver resolves exactly one token value, the way handler tests
// wire an identity through the real Authenticate middleware.
type staticResolver struct {
	token *auth.Token
}

func (s *staticResolver) ResolveToken(_ context.Context, value string) (*auth.Token, error) {
	if s.token != nil && s.token.Value == value {
		return s.token, nil
	}
	return nil, auth.ErrTokenNotFound
}

// newTestToken returns a bearer token whose value authedRequest knows.
func newTestToken() *auth.Token {
	return &auth.Token{ID: uuid.New(), Label: "Test Token", Value: testTokenValue}
}

// serveRouted mounts the routes on a chi router behind Authenticate and
// serves the request, so URL params and the token context both work as
// they do in production.
func serveRouted(t *testing.T, token *auth.Token, register func(r chi.Router), req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.Use(middleware.Authenticate(&staticResolver{token: token}))
	r.Group(register)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// authedRequest builds a request carrying the test token's bearer header.
// An empty body means no request body at all.
func authedRequest(method, target, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Authorization", "Bearer "+testTokenValue)
	return req
}

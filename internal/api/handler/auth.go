package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmdstash/cmdstash/internal/api/response"
	"github.com/cmdstash/cmdstash/internal/api/validation"
	"github.com/cmdstash/cmdstash/internal/auth"
)

// authRequest is the request body for POST /api/register and /api/login.
type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Label    string `json:"label"`
}

// authResponse is the response body for both endpoints.
type authResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// AuthHandler handles registration and login.
type AuthHandler struct {
	svc *auth.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register handles POST /api/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}

	if err := validation.RegisterRequest(auth.NormalizeEmail(req.Email), req.Password); err != nil {
		response.Err(w, http.StatusBadRequest, err.Error())
		return
	}

	creds, err := h.svc.Register(r.Context(), req.Email, req.Password, req.Label)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			response.Err(w, http.StatusBadRequest, "email already registered")
			return
		}
		slog.Error("failed to register user", "error", err)
		response.Err(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response.JSON(w, http.StatusCreated, authResponse{
		Token:  creds.Token,
		UserID: creds.UserID.String(),
	})
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}

	creds, err := h.svc.Login(r.Context(), req.Email, req.Password, req.Label)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			response.Err(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		slog.Error("failed to log in user", "error", err)
		response.Err(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response.JSON(w, http.StatusOK, authResponse{
		Token:  creds.Token,
		UserID: creds.UserID.String(),
	})
}

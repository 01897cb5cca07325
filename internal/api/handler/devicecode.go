package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmdstash/cmdstash/internal/api/middleware"
	"github.com/cmdstash/cmdstash/internal/api/response"
	"github.com/cmdstash/cmdstash/internal/devicecode"
)

// deviceCodeResponse is the response body for POST /api/device-codes.
type deviceCodeResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// exchangeRequest is the request body for POST /api/exchange-token.
type exchangeRequest struct {
	Code string `json:"code"`
}

// exchangeResponse is the response body for POST /api/exchange-token.
type exchangeResponse struct {
	Token string `json:"token"`
}

// DeviceCodeHandler handles device-code issuance and exchange.
type DeviceCodeHandler struct {
	broker *devicecode.Broker
}

// NewDeviceCodeHandler creates a new DeviceCodeHandler.
func NewDeviceCodeHandler(broker *devicecode.Broker) *DeviceCodeHandler {
	return &DeviceCodeHandler{broker: broker}
}

// Issue handles POST /api/device-codes: the authenticated caller gets a
// short-lived code a second client can exchange for this token's value.
func (h *DeviceCodeHandler) Issue(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetToken(r.Context())

	code, err := h.broker.Issue(r.Context(), token.ID)
	if err != nil {
		slog.Error("failed to issue device code", "error", err)
		response.Err(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response.JSON(w, http.StatusOK, deviceCodeResponse{
		Code:      code.Code,
		ExpiresAt: code.ExpiresAt,
	})
}

// Exchange handles POST /api/exchange-token. Unknown codes are 404;
// consumed and expired codes are terminal 400s.
func (h *DeviceCodeHandler) Exchange(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req exchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}

	value, err := h.broker.Redeem(r.Context(), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, devicecode.ErrNotFound):
			response.Err(w, http.StatusNotFound, "device code not found")
		case errors.Is(err, devicecode.ErrConsumed):
			response.Err(w, http.StatusBadRequest, "code already used")
		case errors.Is(err, devicecode.ErrExpired):
			response.Err(w, http.StatusBadRequest, "code expired")
		default:
			slog.Error("failed to exchange device code", "error", err)
			response.Err(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	response.JSON(w, http.StatusOK, exchangeResponse{Token: value})
}

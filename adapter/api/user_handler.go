package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cityreports/miniapp/internal/users/application"
	"github.com/cityreports/miniapp/pkg/observability"
)

const maxBodyBytes = 1 << 20

// UserHandler serves profile and settings requests.
type UserHandler struct {
	users  *application.Service
	logger *slog.Logger
}

// UserHandlerConfig holds dependencies for the user handler.
type UserHandlerConfig struct {
	Users  *application.Service
	Logger *slog.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(cfg UserHandlerConfig) *UserHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &UserHandler{users: cfg.Users, logger: cfg.Logger}
}

// GetProfile handles GET /api/user-profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, ErrUserIDRequired)
		return
	}
	ctx := observability.WithUserID(r.Context(), userID)

	profile, err := h.users.GetProfile(ctx, userID)
	if err != nil {
		h.fail(w, r.WithContext(ctx), "failed to get profile", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// GetSettings handles GET /api/user-settings
func (h *UserHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, ErrUserIDRequired)
		return
	}
	ctx := observability.WithUserID(r.Context(), userID)

	settings, err := h.users.GetSettings(ctx, userID)
	if err != nil {
		h.fail(w, r.WithContext(ctx), "failed to get settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// updateSettingRequest is the body of POST /api/user-settings.
type updateSettingRequest struct {
	UserID  json.RawMessage `json:"user_id"`
	Setting string          `json:"setting"`
	Value   json.RawMessage `json:"value"`
}

// UpdateSetting handles POST /api/user-settings
func (h *UserHandler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	var req updateSettingRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil || !isJSONObject(body) {
		writeError(w, ErrInvalidBody)
		return
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, ErrInvalidBody)
		return
	}

	userID, ok := parseUserID(req.UserID)
	if !ok || req.Setting == "" || len(req.Value) == 0 || bytes.Equal(req.Value, []byte("null")) {
		writeError(w, ErrSettingFieldsRequired)
		return
	}
	ctx := observability.WithUserID(r.Context(), userID)

	if err := h.users.UpdateSetting(ctx, userID, req.Setting, req.Value); err != nil {
		h.fail(w, r.WithContext(ctx), "failed to update setting", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *UserHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	apiErr := toAPIError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), msg, "error", err)
	} else {
		h.logger.DebugContext(r.Context(), msg, "error", err)
	}
	writeError(w, apiErr)
}

// parseUserID accepts a non-empty JSON string or a JSON integer.
func parseUserID(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, s != ""
	}
	text := string(bytes.TrimSpace(raw))
	if _, err := strconv.ParseInt(text, 10, 64); err != nil {
		return "", false
	}
	return text, true
}

func isJSONObject(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

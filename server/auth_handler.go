package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"musewave/core/auth"
	"musewave/logger"
	"musewave/model"
	"musewave/repository"
)

// RegisterRequest is the registration request body.
type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// LoginRequest is the login request body. Username may also carry an email.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest carries the refresh token for a new pair.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type authResponse struct {
	User   *model.User     `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

// RegisterHandler creates an account and returns the user with a token pair.
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "username, email and password are required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		respondError(w, http.StatusBadRequest, "invalid email address")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error("failed to hash password", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to process password")
		return
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		DisplayName:  req.DisplayName,
	}

	id, err := h.repos.Users.CreateUser(user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			respondError(w, http.StatusConflict, "username or email already exists")
			return
		}
		logger.Error("failed to create user", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	user.ID = id

	pair, err := h.tokens.GeneratePair(user.ID, user.Username)
	if err != nil {
		logger.Error("failed to generate tokens", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to generate tokens")
		return
	}

	logger.Info("user registered",
		logger.Int64("userId", user.ID),
		logger.String("username", user.Username))

	h.rebuildSearchIndex()
	respondJSON(w, http.StatusCreated, authResponse{User: user, Tokens: pair})
}

// LoginHandler authenticates by username or email.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "username/email and password are required")
		return
	}

	var user *model.User
	var err error
	if strings.Contains(req.Username, "@") {
		user, err = h.repos.Users.GetUserByEmail(req.Username)
	} else {
		user, err = h.repos.Users.GetUserByUsername(req.Username)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, "invalid username/email or password")
			return
		}
		logger.Error("failed to look up user", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		respondError(w, http.StatusUnauthorized, "invalid username/email or password")
		return
	}

	pair, err := h.tokens.GeneratePair(user.ID, user.Username)
	if err != nil {
		logger.Error("failed to generate tokens", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to generate tokens")
		return
	}

	logger.Info("user logged in", logger.Int64("userId", user.ID))
	respondJSON(w, http.StatusOK, authResponse{User: user, Tokens: pair})
}

// RefreshHandler exchanges a valid refresh token for a new pair.
func (h *APIHandler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RefreshToken == "" {
		respondError(w, http.StatusBadRequest, "refresh token is required")
		return
	}

	claims, err := h.tokens.ParseRefresh(req.RefreshToken)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	// Re-check the account still exists before re-issuing.
	user, err := h.repos.Users.GetUserByID(claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, "account no longer exists")
			return
		}
		logger.Error("failed to look up user", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	pair, err := h.tokens.GeneratePair(user.ID, user.Username)
	if err != nil {
		logger.Error("failed to generate tokens", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to generate tokens")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"tokens": pair})
}

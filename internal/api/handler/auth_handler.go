package handler

import (
	"fmt"
	"net/http"

	"github.com/RoyceAzure/lab/parkeat/internal/api/dto"
	"github.com/RoyceAzure/lab/parkeat/internal/model"
	"github.com/RoyceAzure/lab/parkeat/internal/service"
	"github.com/RoyceAzure/rj/api"
	er "github.com/RoyceAzure/rj/util/rj_error"
	"github.com/rs/zerolog"
)

type AuthHandler struct {
	sessionService service.ISessionService
	logger         zerolog.Logger
}

func NewAuthHandler(sessionService service.ISessionService, logger zerolog.Logger) *AuthHandler {
	if sessionService == nil {
		panic("sessionService cannot be nil")
	}
	return &AuthHandler{
		sessionService: sessionService,
		logger:         logger,
	}
}

// authFailureCode 驗證失敗訊息對應的錯誤碼
func authFailureCode(msg string) er.ErrCode {
	switch msg {
	case service.MsgMissingFields:
		return er.BadRequestCode
	case service.MsgUsernameTaken, service.MsgEmailTaken:
		return er.ConflictCode
	default:
		return er.UnauthenticatedCode
	}
}

// writeAuthFailure message 直接使用 session 回傳的訊息
func writeAuthFailure(w http.ResponseWriter, msg string) {
	code := authFailureCode(msg)
	api.ErrorJSON(w, int(code), er.New(code, msg), msg)
}

// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var loginDTO dto.LoginDTO
	if err := decodeJSON(r, &loginDTO); err != nil {
		writeError(w, r, h.logger, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	result, err := h.sessionService.Login(r.Context(), loginDTO.Username, loginDTO.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if !result.Success {
		writeAuthFailure(w, result.Error)
		return
	}
	api.SuccessJSON(w, dto.AuthResponse{User: h.sessionService.CurrentUser()}, nil)
}

// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var registerDTO dto.RegisterDTO
	if err := decodeJSON(r, &registerDTO); err != nil {
		writeError(w, r, h.logger, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	result, err := h.sessionService.Register(r.Context(), service.RegisterParams{
		Username: registerDTO.Username,
		Email:    registerDTO.Email,
		Password: registerDTO.Password,
		Name:     registerDTO.Name,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if !result.Success {
		writeAuthFailure(w, result.Error)
		return
	}
	created(w, dto.AuthResponse{User: h.sessionService.CurrentUser()})
}

// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionService.Logout(r.Context()); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	noContent(w)
}

// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := h.sessionService.CurrentUser()
	if user == nil {
		writeError(w, r, h.logger, errUnauthenticated)
		return
	}
	api.SuccessJSON(w, dto.AuthResponse{User: user}, nil)
}

// PATCH /auth/me
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var update model.ProfileUpdate
	if err := decodeJSON(r, &update); err != nil {
		writeError(w, r, h.logger, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	user, err := h.sessionService.UpdateProfile(r.Context(), update)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if user == nil {
		writeError(w, r, h.logger, errUnauthenticated)
		return
	}
	api.SuccessJSON(w, dto.AuthResponse{User: user}, nil)
}

// GET /onboarding
func (h *AuthHandler) Onboarding(w http.ResponseWriter, r *http.Request) {
	api.SuccessJSON(w, dto.OnboardingResponse{Seen: h.sessionService.HasSeenOnboarding()}, nil)
}

// POST /onboarding
func (h *AuthHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionService.CompleteOnboarding(r.Context()); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	api.SuccessJSON(w, dto.OnboardingResponse{Seen: true}, nil)
}

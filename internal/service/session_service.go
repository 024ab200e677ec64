package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/parkeat/internal/catalog"
	"github.com/RoyceAzure/lab/parkeat/internal/constants"
	"github.com/RoyceAzure/lab/parkeat/internal/infra/kv"
	"github.com/RoyceAzure/lab/parkeat/internal/model"
	"github.com/RoyceAzure/lab/parkeat/internal/pkg/util"
	"github.com/rs/zerolog"
)

const (
	MsgInvalidCredentials = "Usuario o contraseña incorrectos"
	MsgUsernameTaken      = "El nombre de usuario ya existe"
	MsgEmailTaken         = "El email ya está registrado"
	MsgMissingFields      = "Por favor completa todos los campos"

	avatarSeedURL = "https://api.dicebear.com/7.x/avataaars/svg?seed="
)

// AuthResult 驗證失敗不是 error，Error 為給使用者看的訊息
type AuthResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type RegisterParams struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type ISessionService interface {
	Restore(ctx context.Context) error
	Login(ctx context.Context, username, password string) (AuthResult, error)
	Register(ctx context.Context, params RegisterParams) (AuthResult, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, update model.ProfileUpdate) (*model.User, error)
	CurrentUser() *model.User
	IsAuthenticated() bool
	HasSeenOnboarding() bool
	CompleteOnboarding(ctx context.Context) error
}

type SessionConfig struct {
	AuthDelay time.Duration
}

type SessionService struct {
	mu             sync.Mutex
	store          kv.Store
	catalog        *catalog.Catalog
	logger         zerolog.Logger
	delay          time.Duration
	now            func() time.Time
	ids            *util.IDGenerator
	user           *model.User
	registered     []model.Credential
	onboardingSeen bool
}

var _ ISessionService = (*SessionService)(nil)

func NewSessionService(store kv.Store, c *catalog.Catalog, cfg SessionConfig, logger zerolog.Logger) *SessionService {
	s := &SessionService{
		store:   store,
		catalog: c,
		logger:  logger.With().Str("service", "session").Logger(),
		delay:   cfg.AuthDelay,
		now:     time.Now,
	}
	s.ids = util.NewIDGenerator("user", func() time.Time { return s.now() })
	return s
}

// Restore 載入目前使用者、已註冊帳號與 onboarding 旗標
func (s *SessionService) Restore(ctx context.Context) error {
	var (
		user       model.User
		registered []model.Credential
		seen       bool
	)

	foundUser, err := restoreJSON(ctx, s.store, s.logger, constants.CurrentUserKey, &user)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if _, err := restoreJSON(ctx, s.store, s.logger, constants.RegisteredUsersKey, &registered); err != nil {
		return fmt.Errorf("restore registered users: %w", err)
	}
	if _, err := restoreJSON(ctx, s.store, s.logger, constants.OnboardingSeenKey, &seen); err != nil {
		return fmt.Errorf("restore onboarding flag: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	if foundUser {
		s.user = &user
	}
	s.registered = registered
	s.onboardingSeen = seen
	return nil
}

func (s *SessionService) Login(ctx context.Context, username, password string) (AuthResult, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return AuthResult{Error: MsgMissingFields}, nil
	}
	if err := wait(ctx, s.delay); err != nil {
		return AuthResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, cred := range s.catalog.DemoUsers() {
		if matchCredential(cred, username, password) {
			return s.signIn(ctx, cred.ToUser(now))
		}
	}
	for _, cred := range s.registered {
		if matchCredential(cred, username, password) {
			createdAt := cred.CreatedAt
			if createdAt.IsZero() {
				createdAt = now
			}
			return s.signIn(ctx, cred.ToUser(createdAt))
		}
	}

	s.logger.Debug().Str("username", username).Msg("login rejected")
	return AuthResult{Error: MsgInvalidCredentials}, nil
}

func (s *SessionService) Register(ctx context.Context, params RegisterParams) (AuthResult, error) {
	if strings.TrimSpace(params.Username) == "" || strings.TrimSpace(params.Email) == "" ||
		params.Password == "" || strings.TrimSpace(params.Name) == "" {
		return AuthResult{Error: MsgMissingFields}, nil
	}
	if err := wait(ctx, s.delay); err != nil {
		return AuthResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := append(s.catalog.DemoUsers(), s.registered...)
	for _, cred := range all {
		if strings.EqualFold(cred.Username, params.Username) {
			return AuthResult{Error: MsgUsernameTaken}, nil
		}
	}
	for _, cred := range all {
		if strings.EqualFold(cred.Email, params.Email) {
			return AuthResult{Error: MsgEmailTaken}, nil
		}
	}

	now := s.now()
	cred := model.Credential{
		ID:        s.ids.Next(),
		Username:  params.Username,
		Email:     params.Email,
		Password:  params.Password,
		Name:      params.Name,
		Avatar:    avatarSeedURL + params.Username,
		CreatedAt: now,
	}

	registered := make([]model.Credential, 0, len(s.registered)+1)
	registered = append(registered, s.registered...)
	registered = append(registered, cred)
	if err := kv.SetJSON(ctx, s.store, constants.RegisteredUsersKey, registered); err != nil {
		return AuthResult{}, fmt.Errorf("save registered users: %w", err)
	}
	s.registered = registered

	s.logger.Info().Str("user_id", cred.ID).Msg("user registered")
	return s.signIn(ctx, cred.ToUser(now))
}

// signIn 需持有鎖
func (s *SessionService) signIn(ctx context.Context, user model.User) (AuthResult, error) {
	if err := kv.SetJSON(ctx, s.store, constants.CurrentUserKey, user); err != nil {
		return AuthResult{}, fmt.Errorf("save current user: %w", err)
	}
	s.user = &user
	s.logger.Debug().Str("user_id", user.ID).Msg("signed in")
	return AuthResult{Success: true}, nil
}

func (s *SessionService) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Remove(ctx, constants.CurrentUserKey); err != nil {
		return fmt.Errorf("remove current user: %w", err)
	}
	s.user = nil
	return nil
}

// UpdateProfile 未登入時不做任何事，回傳 nil
func (s *SessionService) UpdateProfile(ctx context.Context, update model.ProfileUpdate) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return nil, nil
	}
	updated := *s.user
	update.ApplyTo(&updated)
	if err := kv.SetJSON(ctx, s.store, constants.CurrentUserKey, updated); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	s.user = &updated

	cp := updated
	return &cp, nil
}

func (s *SessionService) CurrentUser() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	cp := *s.user
	return &cp
}

func (s *SessionService) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

func (s *SessionService) HasSeenOnboarding() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.onboardingSeen
}

func (s *SessionService) CompleteOnboarding(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := kv.SetJSON(ctx, s.store, constants.OnboardingSeenKey, true); err != nil {
		return fmt.Errorf("save onboarding flag: %w", err)
	}
	s.onboardingSeen = true
	return nil
}

func matchCredential(cred model.Credential, username, password string) bool {
	return strings.EqualFold(cred.Username, username) && cred.Password == password
}

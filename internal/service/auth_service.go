package service

import (
	"errors"
	"time"

	"sgad-api/internal/model"
	"sgad-api/internal/permission"
	"sgad-api/internal/repository"
	"sgad-api/pkg/jwt"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSessionReplaced    = errors.New("session expired (logged in on another device)")
	ErrSessionTimeout     = errors.New("session expired due to inactivity")
)

type AuthService interface {
	Login(email, password string) (*LoginResponse, error)
	ValidateToken(tokenString string) (*SessionInfo, error)
	ChangePassword(userID uuid.UUID, oldPassword, newPassword string) error
	Heartbeat(userID uuid.UUID) error
}

type LoginResponse struct {
	Token string `json:"token"`
	SessionInfo
}

// SessionInfo is what the client needs to render its menus.
type SessionInfo struct {
	User        model.UserResponse  `json:"user"`
	Modules     []permission.Module `json:"modules"`
	Permissions []string            `json:"permissions"`
}

type authService struct {
	userRepo    repository.UserRepository
	tokens      *jwt.Manager
	evaluator   *permission.Evaluator
	events      EventPublisher
	idleTimeout time.Duration
	now         func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager, evaluator *permission.Evaluator, events EventPublisher, idleTimeout time.Duration) AuthService {
	return &authService{
		userRepo:    userRepo,
		tokens:      tokens,
		evaluator:   evaluator,
		events:      publisherOrNop(events),
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

func (s *authService) session(user *model.User) SessionInfo {
	return SessionInfo{
		User:        user.ToResponse(),
		Modules:     s.evaluator.AccessibleModules(user.RoleCode),
		Permissions: s.evaluator.Table().PermissionCodes(user.RoleCode),
	}
}

func (s *authService) Login(email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// single session: a new version invalidates every older token
	now := s.now()
	user.TokenVersion = uuid.New().String()
	user.LastSeenAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, errors.New("failed to update session")
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.FullName, string(user.RoleCode), user.TokenVersion)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &LoginResponse{Token: token, SessionInfo: s.session(user)}, nil
}

func (s *authService) ValidateToken(tokenString string) (*SessionInfo, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionReplaced
	}
	if s.idleTimeout > 0 && (user.LastSeenAt == nil || s.now().Sub(*user.LastSeenAt) > s.idleTimeout) {
		return nil, ErrSessionTimeout
	}

	info := s.session(user)
	return &info, nil
}

func (s *authService) ChangePassword(userID uuid.UUID, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return validationError(errors.New("password must have at least 6 characters"))
	}
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return ErrUserNotFound
	}
	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}
	if err := user.SetPassword(newPassword); err != nil {
		return errors.New("failed to hash new password")
	}
	return s.userRepo.UpdatePassword(user.ID, user.Password)
}

func (s *authService) Heartbeat(userID uuid.UUID) error {
	if err := s.userRepo.UpdateLastSeen(userID); err != nil {
		return err
	}
	s.events.Publish("user_status_update", "", map[string]interface{}{
		"user_id":      userID.String(),
		"status":       "online",
		"last_seen_at": s.now(),
	})
	return nil
}

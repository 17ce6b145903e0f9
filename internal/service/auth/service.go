package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/medicloud/docs-api/internal/email"
	"github.com/medicloud/docs-api/internal/model"
	"github.com/medicloud/docs-api/internal/repository"
	"github.com/medicloud/docs-api/internal/service/event"
	"github.com/medicloud/docs-api/pkg/auth"
	apperrors "github.com/medicloud/docs-api/pkg/errors"
	"github.com/medicloud/docs-api/pkg/logger"
	"github.com/medicloud/docs-api/pkg/security"
)

type Service struct {
	userRepo    repository.UserRepository
	jwtSvc      auth.JWTService
	hasher      security.PasswordHasher
	emailSvc    email.Service
	events      *event.Service
	logger      *logger.Logger
	adminEmails map[string]struct{}
}

// NewService builds the auth service. adminEmails is the configuration-driven
// allow-list of identities that register directly as admins.
func NewService(
	userRepo repository.UserRepository,
	jwtSvc auth.JWTService,
	hasher security.PasswordHasher,
	emailSvc email.Service,
	events *event.Service,
	logger *logger.Logger,
	adminEmails []string,
) *Service {
	allowList := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		allowList[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return &Service{
		userRepo:    userRepo,
		jwtSvc:      jwtSvc,
		hasher:      hasher,
		emailSvc:    emailSvc,
		events:      events,
		logger:      logger,
		adminEmails: allowList,
	}
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.TokenResponse, error) {
	normalizedEmail := strings.ToLower(strings.TrimSpace(req.Email))

	if existing, _ := s.userRepo.GetByEmail(ctx, normalizedEmail); existing != nil {
		return nil, apperrors.NewBadRequest("email already in use", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.NewBadRequest("password does not meet requirements", err)
	}

	role := model.RoleDoctor
	if _, ok := s.adminEmails[normalizedEmail]; ok {
		role = model.RoleAdmin
	}

	user := &model.User{
		Name:         req.Name,
		Email:        normalizedEmail,
		PasswordHash: hash,
		Specialty:    req.Specialty,
		Role:         role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.events.Emit(ctx, model.ChannelUsers, "user_registered", user)

	go func() {
		if err := s.emailSvc.SendWelcome(context.Background(), user.Email, user.Name); err != nil {
			s.logger.Error(err, "failed to send welcome email", "email", user.Email)
		}
	}()

	return s.generateTokens(user)
}

func (s *Service) Login(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, apperrors.NewUnauthorized(fmt.Errorf("invalid credentials"))
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized(fmt.Errorf("invalid credentials"))
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error(err, "failed to update login timestamp", "user_id", user.ID.String())
	}

	return s.generateTokens(user)
}

func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.NewUnauthorized(fmt.Errorf("invalid refresh token: %w", err))
	}

	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.NewUnauthorized(fmt.Errorf("user not found"))
	}

	return s.generateTokens(user)
}

func (s *Service) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.NewUnauthorized(err)
	}
	return claims, nil
}

func (s *Service) generateTokens(user *model.User) (*model.TokenResponse, error) {
	accessToken, err := s.jwtSvc.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtSvc.GenerateRefreshToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	sanitized := *user
	sanitized.PasswordHash = ""

	return &model.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         &sanitized,
	}, nil
}

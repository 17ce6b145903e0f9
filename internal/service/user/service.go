package user

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"

	"github.com/medicloud/docs-api/internal/model"
	"github.com/medicloud/docs-api/internal/repository"
	"github.com/medicloud/docs-api/internal/service/event"
	apperrors "github.com/medicloud/docs-api/pkg/errors"
	"github.com/medicloud/docs-api/pkg/security"
)

type Service struct {
	repo      repository.UserRepository
	encryptor security.Encryptor
	events    *event.Service
}

func NewService(repo repository.UserRepository, encryptor security.Encryptor, events *event.Service) *Service {
	return &Service{
		repo:      repo,
		encryptor: encryptor,
		events:    events,
	}
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context, filters *model.UserFilters) ([]*model.User, error) {
	users, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateProfile applies self-service changes (name, specialty).
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, req *model.UpdateProfileRequest) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Specialty != nil {
		user.Specialty = *req.Specialty
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.events.Emit(ctx, model.ChannelUsers, "user_updated", user)
	user.PasswordHash = ""
	return user, nil
}

// UpdateSignature stores the signature image blob encrypted at rest. The blob
// is opaque to the service; no image decoding happens here.
func (s *Service) UpdateSignature(ctx context.Context, id uuid.UUID, encoded string) error {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return apperrors.NewBadRequest("signature must be base64 encoded", err)
	}

	encrypted, err := s.encryptor.Encrypt(raw)
	if err != nil {
		return fmt.Errorf("failed to encrypt signature: %w", err)
	}

	user.Signature = &encrypted
	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to store signature: %w", err)
	}

	s.events.Emit(ctx, model.ChannelUsers, "signature_updated", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

// GetSignature decrypts and returns the stored signature blob.
func (s *Service) GetSignature(ctx context.Context, id uuid.UUID) (string, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !user.HasSignature() {
		return "", apperrors.NewNotFound("signature", nil)
	}

	raw, err := s.encryptor.Decrypt(*user.Signature)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt signature: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// SetRole changes a profile's role. Admin-only at the handler layer.
func (s *Service) SetRole(ctx context.Context, id uuid.UUID, role string) (*model.User, error) {
	if role != model.RoleAdmin && role != model.RoleDoctor {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("invalid role %q", role), nil)
	}

	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Role = role
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	s.events.Emit(ctx, model.ChannelUsers, "role_changed", map[string]interface{}{
		"user_id": user.ID,
		"role":    role,
	})
	user.PasswordHash = ""
	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.events.Emit(ctx, model.ChannelUsers, "user_deleted", map[string]interface{}{
		"user_id": id,
	})
	return nil
}

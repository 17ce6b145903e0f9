package user

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medicloud/docs-api/internal/model"
	"github.com/medicloud/docs-api/internal/service/event"
	apperrors "github.com/medicloud/docs-api/pkg/errors"
	"github.com/medicloud/docs-api/pkg/logger"
	"github.com/medicloud/docs-api/pkg/security"
)

type memUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *memUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	copied := *u
	r.users[u.ID] = &copied
	return nil
}

func (r *memUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NewNotFound("user", nil)
	}
	copied := *u
	return &copied, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, _ string) (*model.User, error) {
	return nil, apperrors.NewNotFound("user", nil)
}

func (r *memUserRepo) Update(_ context.Context, u *model.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return apperrors.NewNotFound("user", nil)
	}
	copied := *u
	r.users[u.ID] = &copied
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.users[id]; !ok {
		return apperrors.NewNotFound("user", nil)
	}
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) List(_ context.Context, _ *model.UserFilters) ([]*model.User, error) {
	out := make([]*model.User, 0, len(r.users))
	for _, u := range r.users {
		copied := *u
		out = append(out, &copied)
	}
	return out, nil
}

type noopOutboxRepo struct{}

func (noopOutboxRepo) Create(_ context.Context, _ *model.OutboxEvent) error { return nil }
func (noopOutboxRepo) GetPendingEvents(_ context.Context, _ int) ([]*model.OutboxEvent, error) {
	return nil, nil
}
func (noopOutboxRepo) UpdateStatus(_ context.Context, _ uuid.UUID, _ model.OutboxStatus, _ *string) error {
	return nil
}
func (noopOutboxRepo) DeleteProcessedBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func newTestService(t *testing.T) (*Service, *memUserRepo, *model.User) {
	t.Helper()

	repo := newMemUserRepo()
	doctor := &model.User{
		Base:         model.Base{ID: uuid.New()},
		Name:         "Dr. Otávio Braga",
		Email:        "otavio@clinic.example",
		PasswordHash: "hashed",
		Specialty:    "Ortopedia",
		Role:         model.RoleDoctor,
	}
	require.NoError(t, repo.Create(context.Background(), doctor))

	encryptor, err := security.NewAESEncryptor([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	events := event.NewService(noopOutboxRepo{}, logger.NewLogger(nil))
	return NewService(repo, encryptor, events), repo, doctor
}

func TestGetUserSanitizesHash(t *testing.T) {
	svc, _, doctor := newTestService(t)

	got, err := svc.GetUser(context.Background(), doctor.ID)
	require.NoError(t, err)
	assert.Empty(t, got.PasswordHash)
	assert.Equal(t, doctor.Name, got.Name)
}

func TestUpdateProfile(t *testing.T) {
	svc, _, doctor := newTestService(t)

	name := "Dr. Otávio B. Braga"
	specialty := "Ortopedia e Traumatologia"
	got, err := svc.UpdateProfile(context.Background(), doctor.ID, &model.UpdateProfileRequest{
		Name:      &name,
		Specialty: &specialty,
	})
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
	assert.Equal(t, specialty, got.Specialty)
}

func TestUpdateProfilePartial(t *testing.T) {
	svc, _, doctor := newTestService(t)

	name := "Dr. O. Braga"
	got, err := svc.UpdateProfile(context.Background(), doctor.ID, &model.UpdateProfileRequest{
		Name: &name,
	})
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
	assert.Equal(t, doctor.Specialty, got.Specialty)
}

// The signature blob round-trips through encryption at rest: what the repo
// stores is ciphertext, what GetSignature returns is the original blob.
func TestSignatureRoundTrip(t *testing.T) {
	svc, repo, doctor := newTestService(t)

	blob := base64.StdEncoding.EncodeToString([]byte("png signature bytes"))
	require.NoError(t, svc.UpdateSignature(context.Background(), doctor.ID, blob))

	stored, err := repo.Get(context.Background(), doctor.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Signature)
	assert.NotEqual(t, blob, *stored.Signature)

	got, err := svc.GetSignature(context.Background(), doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, blob, got)
}

func TestUpdateSignatureRejectsInvalidEncoding(t *testing.T) {
	svc, _, doctor := newTestService(t)

	err := svc.UpdateSignature(context.Background(), doctor.ID, "not base64 !!!")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
}

func TestGetSignatureMissing(t *testing.T) {
	svc, _, doctor := newTestService(t)

	_, err := svc.GetSignature(context.Background(), doctor.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestSetRole(t *testing.T) {
	svc, _, doctor := newTestService(t)

	got, err := svc.SetRole(context.Background(), doctor.ID, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, got.Role)

	_, err = svc.SetRole(context.Background(), doctor.ID, "superuser")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
}

func TestDeleteUser(t *testing.T) {
	svc, _, doctor := newTestService(t)

	require.NoError(t, svc.DeleteUser(context.Background(), doctor.ID))

	_, err := svc.GetUser(context.Background(), doctor.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

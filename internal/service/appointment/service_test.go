package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medicloud/docs-api/internal/model"
	"github.com/medicloud/docs-api/internal/service/event"
	apperrors "github.com/medicloud/docs-api/pkg/errors"
	"github.com/medicloud/docs-api/pkg/logger"
)

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
}

func (r *fakeAppointmentRepo) Create(_ context.Context, apt *model.Appointment) error {
	apt.ID = uuid.New()
	copied := *apt
	r.appointments[apt.ID] = &copied
	return nil
}

func (r *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, ok := r.appointments[id]
	if !ok {
		return nil, apperrors.NewNotFound("appointment", nil)
	}
	copied := *apt
	return &copied, nil
}

func (r *fakeAppointmentRepo) Update(_ context.Context, apt *model.Appointment) error {
	if _, ok := r.appointments[apt.ID]; !ok {
		return apperrors.NewNotFound("appointment", nil)
	}
	copied := *apt
	r.appointments[apt.ID] = &copied
	return nil
}

func (r *fakeAppointmentRepo) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	out := make([]*model.Appointment, 0, len(r.appointments))
	for _, apt := range r.appointments {
		copied := *apt
		out = append(out, &copied)
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func (r *fakeUserRepo) Create(_ context.Context, _ *model.User) error { return nil }

func (r *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NewNotFound("user", nil)
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, _ string) (*model.User, error) {
	return nil, apperrors.NewNotFound("user", nil)
}

func (r *fakeUserRepo) Update(_ context.Context, _ *model.User) error { return nil }
func (r *fakeUserRepo) Delete(_ context.Context, _ uuid.UUID) error   { return nil }
func (r *fakeUserRepo) List(_ context.Context, _ *model.UserFilters) ([]*model.User, error) {
	return nil, nil
}

type fakeOutboxRepo struct{}

func (fakeOutboxRepo) Create(_ context.Context, _ *model.OutboxEvent) error { return nil }
func (fakeOutboxRepo) GetPendingEvents(_ context.Context, _ int) ([]*model.OutboxEvent, error) {
	return nil, nil
}
func (fakeOutboxRepo) UpdateStatus(_ context.Context, _ uuid.UUID, _ model.OutboxStatus, _ *string) error {
	return nil
}
func (fakeOutboxRepo) DeleteProcessedBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func newTestService(t *testing.T) (*Service, *model.User) {
	t.Helper()

	doctor := &model.User{
		Base:      model.Base{ID: uuid.New()},
		Name:      "Dr. Rafael Nunes",
		Email:     "rafael@clinic.example",
		Specialty: "Cardiologia",
		Role:      model.RoleDoctor,
	}
	users := &fakeUserRepo{users: map[uuid.UUID]*model.User{doctor.ID: doctor}}
	events := event.NewService(fakeOutboxRepo{}, logger.NewLogger(nil))

	return NewService(newFakeAppointmentRepo(), users, events), doctor
}

func createScheduled(t *testing.T, svc *Service, doctorID uuid.UUID) *model.Appointment {
	t.Helper()
	apt, err := svc.CreateAppointment(context.Background(), &model.CreateAppointmentRequest{
		PatientName: "Carla Mendes",
		DoctorID:    doctorID.String(),
		Date:        "2026-09-01",
		Time:        "14:30",
	})
	require.NoError(t, err)
	return apt
}

func TestCreateAppointment(t *testing.T) {
	svc, doctor := newTestService(t)

	apt := createScheduled(t, svc, doctor.ID)

	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)
	assert.Equal(t, doctor.ID, apt.DoctorID)
	assert.Equal(t, doctor.Name, apt.DoctorName)
}

func TestCreateAppointmentUnknownDoctor(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateAppointment(context.Background(), &model.CreateAppointmentRequest{
		PatientName: "Carla Mendes",
		DoctorID:    uuid.New().String(),
		Date:        "2026-09-01",
		Time:        "14:30",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
}

func TestCreateAppointmentInvalidDoctorID(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateAppointment(context.Background(), &model.CreateAppointmentRequest{
		PatientName: "Carla Mendes",
		DoctorID:    "not-a-uuid",
		Date:        "2026-09-01",
		Time:        "14:30",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
}

// Appointment statuses form no state machine: every status is reachable from
// every other, including leaving a terminal-looking state like Cancelada.
func TestSetStatusAnyToAny(t *testing.T) {
	statuses := []model.AppointmentStatus{
		model.AppointmentStatusScheduled,
		model.AppointmentStatusAttended,
		model.AppointmentStatusPostponed,
		model.AppointmentStatusCancelled,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			t.Run(string(from)+"_to_"+string(to), func(t *testing.T) {
				svc, doctor := newTestService(t)
				apt := createScheduled(t, svc, doctor.ID)

				_, err := svc.SetStatus(context.Background(), apt.ID, from)
				require.NoError(t, err)

				got, err := svc.SetStatus(context.Background(), apt.ID, to)
				require.NoError(t, err)
				assert.Equal(t, to, got.Status)
			})
		}
	}
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	svc, doctor := newTestService(t)
	apt := createScheduled(t, svc, doctor.ID)

	_, err := svc.SetStatus(context.Background(), apt.ID, "Confirmada")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
}

func TestSetStatusNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SetStatus(context.Background(), uuid.New(), model.AppointmentStatusAttended)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/medicloud/docs-api/internal/model"
	"github.com/medicloud/docs-api/internal/repository"
	"github.com/medicloud/docs-api/internal/service/event"
	apperrors "github.com/medicloud/docs-api/pkg/errors"
)

type Service struct {
	repo     repository.AppointmentRepository
	userRepo repository.UserRepository
	events   *event.Service
}

func NewService(repo repository.AppointmentRepository, userRepo repository.UserRepository, events *event.Service) *Service {
	return &Service{
		repo:     repo,
		userRepo: userRepo,
		events:   events,
	}
}

func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return nil, apperrors.NewBadRequest("invalid doctor ID", err)
	}

	doctor, err := s.userRepo.Get(ctx, doctorID)
	if err != nil {
		return nil, apperrors.NewBadRequest("doctor not found", err)
	}

	apt := &model.Appointment{
		PatientName: req.PatientName,
		DoctorID:    doctor.ID,
		DoctorName:  doctor.Name,
		Date:        req.Date,
		Time:        req.Time,
		Status:      model.AppointmentStatusScheduled,
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.events.Emit(ctx, model.ChannelAppointments, "appointment_created", apt)
	return apt, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// SetStatus overwrites the appointment status. Unlike report transitions there
// is no state machine here: every status is reachable from every other.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	if !model.ValidAppointmentStatus(status) {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown status %q", status), nil)
	}

	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	apt.Status = status
	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	s.events.Emit(ctx, model.ChannelAppointments, "appointment_status_changed", apt)
	return apt, nil
}

package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medicloud/docs-api/internal/email"
	"github.com/medicloud/docs-api/internal/model"
	"github.com/medicloud/docs-api/internal/repository"
	"github.com/medicloud/docs-api/internal/service/event"
	apperrors "github.com/medicloud/docs-api/pkg/errors"
	"github.com/medicloud/docs-api/pkg/logger"
	"github.com/medicloud/docs-api/pkg/metrics"
)

// Service enforces the report lifecycle:
//
//	Rascunho -> Pendente -> Aprovado -> signed (terminal)
//	                     -> Rejeitado
//
// No other transition is permitted. Every transition persists the full record
// and emits a change event.
type Service struct {
	repo     repository.ReportRepository
	userRepo repository.UserRepository
	events   *event.Service
	emailSvc email.Service
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewService(
	repo repository.ReportRepository,
	userRepo repository.UserRepository,
	events *event.Service,
	emailSvc email.Service,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		repo:     repo,
		userRepo: userRepo,
		events:   events,
		emailSvc: emailSvc,
		logger:   logger,
		metrics:  metrics,
	}
}

// CreateDraft persists a new report in the Rascunho state. Content usually
// comes from the AI drafting service but hand-written drafts take the same path.
func (s *Service) CreateDraft(ctx context.Context, authorID uuid.UUID, req *model.CreateReportRequest, imageURL string) (*model.Report, error) {
	rep := &model.Report{
		PatientName: req.PatientName,
		ReportType:  req.ReportType,
		Date:        req.Date,
		Status:      model.ReportStatusDraft,
		Content:     req.Content,
		Notes:       req.Notes,
		AuthorID:    authorID,
	}
	if imageURL != "" {
		rep.ImageURL = &imageURL
	}

	if err := s.repo.Create(ctx, rep); err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	s.events.Emit(ctx, model.ChannelReports, "report_created", rep)
	return rep, nil
}

func (s *Service) GetReport(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListReports(ctx context.Context, filters *model.ReportFilters) ([]*model.Report, error) {
	reports, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// Submit moves a draft into review.
func (s *Service) Submit(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	rep, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if rep.Status != model.ReportStatusDraft {
		return nil, apperrors.NewInvalidTransition(
			fmt.Sprintf("cannot submit report in status %q", rep.Status))
	}

	rep.Status = model.ReportStatusPending
	if err := s.persistTransition(ctx, rep, "report_submitted"); err != nil {
		return nil, err
	}
	return rep, nil
}

// Review resolves a pending report to the requested decision.
func (s *Service) Review(ctx context.Context, id uuid.UUID, decision model.ReviewDecision) (*model.Report, error) {
	if decision != model.ReportStatusApproved && decision != model.ReportStatusRejected {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("invalid decision %q", decision), nil)
	}

	rep, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if rep.Status != model.ReportStatusPending {
		return nil, apperrors.NewInvalidTransition(
			fmt.Sprintf("cannot review report in status %q", rep.Status))
	}

	rep.Status = decision
	if err := s.persistTransition(ctx, rep, "report_reviewed"); err != nil {
		return nil, err
	}

	s.notifyAuthor(rep, string(decision))
	return rep, nil
}

// Sign records the signer on an approved, not-yet-signed report. The status
// stays Aprovado; signing is terminal.
func (s *Service) Sign(ctx context.Context, id uuid.UUID, signerID uuid.UUID) (*model.Report, error) {
	signerProfile, err := s.userRepo.Get(ctx, signerID)
	if err != nil {
		return nil, apperrors.NewBadRequest("signer not found", err)
	}
	signer := signerProfile.Name

	rep, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if rep.Status != model.ReportStatusApproved {
		return nil, apperrors.NewInvalidTransition(
			fmt.Sprintf("cannot sign report in status %q", rep.Status))
	}
	if rep.Signed() {
		return nil, apperrors.NewInvalidTransition("report is already signed")
	}

	now := time.Now()
	rep.SignedBy = &signer
	rep.SignedAt = &now

	if err := s.persistTransition(ctx, rep, "report_signed"); err != nil {
		return nil, err
	}
	return rep, nil
}

func (s *Service) persistTransition(ctx context.Context, rep *model.Report, eventType string) error {
	if err := s.repo.Update(ctx, rep); err != nil {
		return fmt.Errorf("failed to persist transition: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ReportTransitions.WithLabelValues(string(rep.Status)).Inc()
	}
	s.events.Emit(ctx, model.ChannelReports, eventType, rep)
	return nil
}

// notifyAuthor emails the report author about a review decision. Failures are
// logged and never surfaced; the transition has already been persisted.
func (s *Service) notifyAuthor(rep *model.Report, decision string) {
	go func() {
		ctx := context.Background()

		author, err := s.userRepo.Get(ctx, rep.AuthorID)
		if err != nil {
			s.logger.Error(err, "failed to look up report author for notification",
				"report_id", rep.ID.String())
			return
		}

		if err := s.emailSvc.SendReviewDecision(ctx, author.Email, rep.PatientName, rep.ReportType, decision); err != nil {
			s.logger.Error(err, "failed to send review notification",
				"report_id", rep.ID.String(), "email", author.Email)
		}
	}()
}

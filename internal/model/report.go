package model

import (
	"time"

	"github.com/google/uuid"
)

type ReportStatus string

// Report lifecycle states.
const (
	ReportStatusDraft    ReportStatus = "Rascunho"
	ReportStatusPending  ReportStatus = "Pendente"
	ReportStatusApproved ReportStatus = "Aprovado"
	ReportStatusRejected ReportStatus = "Rejeitado"
)

// ReviewDecision is the subset of statuses a reviewer may assign.
type ReviewDecision = ReportStatus

type Report struct {
	Base
	PatientName string       `json:"patient_name" db:"patient_name"`
	ReportType  string       `json:"report_type" db:"report_type"`
	Date        string       `json:"date" db:"date"`
	Status      ReportStatus `json:"status" db:"status"`
	Content     string       `json:"content" db:"content"`
	Notes       string       `json:"notes,omitempty" db:"notes"`
	ImageURL    *string      `json:"image_url,omitempty" db:"image_url"`
	AuthorID    uuid.UUID    `json:"author_id" db:"author_id"`
	SignedBy    *string      `json:"signed_by,omitempty" db:"signed_by"`
	SignedAt    *time.Time   `json:"signed_at,omitempty" db:"signed_at"`
}

// Signed reports whether the report already carries a signature.
func (r *Report) Signed() bool {
	return r.SignedBy != nil && *r.SignedBy != ""
}

type CreateReportRequest struct {
	PatientName string `json:"patient_name" binding:"required"`
	ReportType  string `json:"report_type" binding:"required"`
	Date        string `json:"date" binding:"required,datetime=2006-01-02"`
	Content     string `json:"content" binding:"required"`
	Notes       string `json:"notes"`
	ImageURL    string `json:"image_url"`
}

type GenerateDraftRequest struct {
	PatientName string `json:"patient_name" binding:"required"`
	ReportType  string `json:"report_type" binding:"required"`
	Notes       string `json:"notes" binding:"required"`
}

type GenerateDraftResponse struct {
	ReportDraft string  `json:"report_draft"`
	ImageURL    *string `json:"image_url,omitempty"`
}

type SummarizeRequest struct {
	TechnicalDetails string `json:"technical_details"`
}

type SummarizeResponse struct {
	Summary string `json:"summary"`
}

type ReviewReportRequest struct {
	Decision ReportStatus `json:"decision" binding:"required,oneof=Aprovado Rejeitado"`
}

type ReportFilters struct {
	Status   ReportStatus
	AuthorID uuid.UUID
}

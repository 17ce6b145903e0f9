package email

import (
	"context"
)

type Service interface {
	SendReviewDecision(ctx context.Context, to, patientName, reportType, decision string) error
	SendWelcome(ctx context.Context, to, name string) error
}

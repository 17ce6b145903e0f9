package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/medicloud/docs-api/internal/config"
)

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg config.SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendReviewDecision(ctx context.Context, to, patientName, reportType, decision string) error {
	subject := fmt.Sprintf("Laudo %s: %s", decision, patientName)
	body := fmt.Sprintf(
		"O laudo do tipo %q do paciente %s foi %s pelo revisor.",
		reportType, patientName, decision,
	)
	return s.send(to, subject, body)
}

func (s *smtpService) SendWelcome(ctx context.Context, to, name string) error {
	subject := "Bem-vindo ao MediCloud Docs"
	body := fmt.Sprintf("Olá %s, sua conta foi criada com sucesso.", name)
	return s.send(to, subject, body)
}

func (s *smtpService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

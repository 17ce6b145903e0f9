package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/medicloud/docs-api/internal/model"
	apperrors "github.com/medicloud/docs-api/pkg/errors"
	"github.com/medicloud/docs-api/pkg/genai"
	"github.com/medicloud/docs-api/pkg/logger"
	"github.com/medicloud/docs-api/pkg/metrics"
)

// TextGenerator is the surface of the generative-text model endpoint used here.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ImageGenerator is the surface of the image-capable model endpoint.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (*genai.Image, error)
}

// Report types that warrant an illustrative image. Matched case-insensitively
// as substrings of the report type.
var imageKeywords = []string{
	"raio-x",
	"radiografia",
	"ressonância",
	"tomografia",
	"ultrassom",
	"ecocardiograma",
	"eletrocardiograma",
	"ecg",
	"eletroencefalograma",
	"eeg",
	"endoscopia",
	"dermatológico",
}

const draftPromptTemplate = `Você é um assistente médico especializado em redação de laudos.
Redija um laudo médico completo e formal em português a partir das anotações abaixo.
Mantenha a terminologia técnica apropriada e estruture o texto em seções.

Paciente: %s
Tipo de laudo: %s
Anotações clínicas: %s`

const summaryPromptTemplate = `Reescreva o texto clínico abaixo em linguagem simples e acolhedora,
para que um paciente sem formação médica possa entendê-lo. Não omita informações relevantes.

Texto técnico: %s`

const imagePromptTemplate = `Gere uma imagem ilustrativa estilizada, não diagnóstica,
adequada para acompanhar um laudo médico do tipo "%s".
Contexto clínico: %s
Estilo: ilustração médica limpa, tons suaves, sem texto sobreposto.`

type Service struct {
	textGen  TextGenerator
	imageGen ImageGenerator
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewService(textGen TextGenerator, imageGen ImageGenerator, logger *logger.Logger, metrics *metrics.Metrics) *Service {
	return &Service{
		textGen:  textGen,
		imageGen: imageGen,
		logger:   logger,
		metrics:  metrics,
	}
}

// GenerateDraft turns free-form clinical shorthand into a structured draft
// report. The three fields are caller-validated as non-empty; the model's raw
// text output is returned unmodified.
func (s *Service) GenerateDraft(ctx context.Context, req *model.GenerateDraftRequest) (string, error) {
	prompt := fmt.Sprintf(draftPromptTemplate, req.PatientName, req.ReportType, req.Notes)

	timer := s.startTimer("draft")
	text, err := s.textGen.GenerateText(ctx, prompt)
	timer()

	if err != nil {
		s.countCall("draft", metrics.GenerationOutcomeFailure)
		return "", apperrors.NewGenerationFailed(err)
	}

	s.countCall("draft", metrics.GenerationOutcomeSuccess)
	return text, nil
}

// Summarize rewrites technical clinical text into patient-friendly language.
// Empty or whitespace-only input short-circuits without a model call.
func (s *Service) Summarize(ctx context.Context, technicalDetails string) (string, error) {
	if strings.TrimSpace(technicalDetails) == "" {
		return "", nil
	}

	prompt := fmt.Sprintf(summaryPromptTemplate, technicalDetails)

	timer := s.startTimer("summary")
	text, err := s.textGen.GenerateText(ctx, prompt)
	timer()

	if err != nil {
		s.countCall("summary", metrics.GenerationOutcomeFailure)
		return "", apperrors.NewGenerationFailed(err)
	}

	s.countCall("summary", metrics.GenerationOutcomeSuccess)
	return text, nil
}

// GenerateImage conditionally requests an illustrative image for the report.
// It never returns an error: when the report type doesn't warrant an image, or
// when the model call fails for any reason, the result is simply absent. The
// two causes are indistinguishable to callers but are separated in the logs
// and metrics.
func (s *Service) GenerateImage(ctx context.Context, reportType, notes string) (imageURL string) {
	if !WantsIllustration(reportType) {
		s.countCall("image", metrics.GenerationOutcomeSkipped)
		s.logger.Debug("illustrative image skipped by keyword gate", "report_type", reportType)
		return ""
	}

	prompt := fmt.Sprintf(imagePromptTemplate, reportType, notes)

	timer := s.startTimer("image")
	img, err := s.imageGen.GenerateImage(ctx, prompt)
	timer()

	if err != nil {
		s.countCall("image", metrics.GenerationOutcomeFailure)
		s.logger.Warn("illustrative image generation failed, degrading to no image",
			"report_type", reportType, "error", err.Error())
		return ""
	}

	s.countCall("image", metrics.GenerationOutcomeSuccess)
	return img.DataURI()
}

// WantsIllustration reports whether the report type matches the fixed keyword
// list that gates image generation.
func WantsIllustration(reportType string) bool {
	lowered := strings.ToLower(reportType)
	for _, kw := range imageKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

func (s *Service) countCall(service, outcome string) {
	if s.metrics != nil {
		s.metrics.GenerationCalls.WithLabelValues(service, outcome).Inc()
	}
}

func (s *Service) startTimer(service string) func() {
	if s.metrics == nil {
		return func() {}
	}
	observer := s.metrics.GenerationLatency.WithLabelValues(service)
	start := time.Now()
	return func() {
		observer.Observe(time.Since(start).Seconds())
	}
}

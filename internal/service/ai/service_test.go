package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medicloud/docs-api/internal/model"
	apperrors "github.com/medicloud/docs-api/pkg/errors"
	"github.com/medicloud/docs-api/pkg/genai"
	"github.com/medicloud/docs-api/pkg/logger"
)

type fakeTextGen struct {
	calls   int
	prompts []string
	text    string
	err     error
}

func (g *fakeTextGen) GenerateText(_ context.Context, prompt string) (string, error) {
	g.calls++
	g.prompts = append(g.prompts, prompt)
	return g.text, g.err
}

type fakeImageGen struct {
	calls int
	img   *genai.Image
	err   error
}

func (g *fakeImageGen) GenerateImage(_ context.Context, _ string) (*genai.Image, error) {
	g.calls++
	return g.img, g.err
}

func newTestService(text *fakeTextGen, image *fakeImageGen) *Service {
	return NewService(text, image, logger.NewLogger(nil), nil)
}

func TestGenerateDraft(t *testing.T) {
	text := &fakeTextGen{text: "LAUDO MÉDICO\n\nPaciente estável."}
	svc := newTestService(text, &fakeImageGen{})

	draft, err := svc.GenerateDraft(context.Background(), &model.GenerateDraftRequest{
		PatientName: "Ana Costa",
		ReportType:  "Raio-X de Tórax",
		Notes:       "tosse seca há duas semanas",
	})

	require.NoError(t, err)
	assert.Equal(t, "LAUDO MÉDICO\n\nPaciente estável.", draft)
	assert.Equal(t, 1, text.calls)
	assert.Contains(t, text.prompts[0], "Ana Costa")
	assert.Contains(t, text.prompts[0], "tosse seca")
}

func TestGenerateDraftFailure(t *testing.T) {
	text := &fakeTextGen{err: errors.New("model overloaded")}
	svc := newTestService(text, &fakeImageGen{})

	_, err := svc.GenerateDraft(context.Background(), &model.GenerateDraftRequest{
		PatientName: "Ana Costa",
		ReportType:  "Raio-X de Tórax",
		Notes:       "tosse seca",
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrGenerationFailed))
}

func TestSummarize(t *testing.T) {
	text := &fakeTextGen{text: "Seu exame está normal."}
	svc := newTestService(text, &fakeImageGen{})

	summary, err := svc.Summarize(context.Background(), "Ausência de consolidações parenquimatosas.")
	require.NoError(t, err)
	assert.Equal(t, "Seu exame está normal.", summary)
	assert.Equal(t, 1, text.calls)
}

// Empty or whitespace-only input must short-circuit before any model call.
func TestSummarizeEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t  "} {
		text := &fakeTextGen{text: "should never be returned"}
		svc := newTestService(text, &fakeImageGen{})

		summary, err := svc.Summarize(context.Background(), input)
		require.NoError(t, err)
		assert.Empty(t, summary)
		assert.Zero(t, text.calls)
	}
}

func TestSummarizeFailure(t *testing.T) {
	text := &fakeTextGen{err: errors.New("timeout")}
	svc := newTestService(text, &fakeImageGen{})

	_, err := svc.Summarize(context.Background(), "Texto técnico.")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrGenerationFailed))
}

func TestGenerateImageKeywordGate(t *testing.T) {
	tests := []struct {
		reportType string
		wantCall   bool
	}{
		{"Raio-X de Tórax", true},
		{"RAIO-X DE JOELHO", true},
		{"Ressonância Magnética Cerebral", true},
		{"Ultrassom Obstétrico", true},
		{"Eletrocardiograma de Repouso", true},
		{"Exame Dermatológico", true},
		{"Exame Físico Anual", false},
		{"Consulta de Rotina", false},
		{"Hemograma Completo", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.reportType, func(t *testing.T) {
			image := &fakeImageGen{img: &genai.Image{MIMEType: "image/png", Data: "aWJn"}}
			svc := newTestService(&fakeTextGen{}, image)

			url := svc.GenerateImage(context.Background(), tt.reportType, "contexto clínico")

			if tt.wantCall {
				assert.Equal(t, 1, image.calls)
				assert.NotEmpty(t, url)
			} else {
				assert.Zero(t, image.calls)
				assert.Empty(t, url)
			}
		})
	}
}

// A model failure degrades to "no image"; callers never see an error.
func TestGenerateImageNeverFails(t *testing.T) {
	image := &fakeImageGen{err: errors.New("quota exceeded")}
	svc := newTestService(&fakeTextGen{}, image)

	url := svc.GenerateImage(context.Background(), "Tomografia de Crânio", "notas")
	assert.Empty(t, url)
	assert.Equal(t, 1, image.calls)
}

func TestGenerateImageReturnsDataURI(t *testing.T) {
	image := &fakeImageGen{img: &genai.Image{MIMEType: "image/png", Data: "cG5nLWJ5dGVz"}}
	svc := newTestService(&fakeTextGen{}, image)

	url := svc.GenerateImage(context.Background(), "Radiografia Panorâmica", "notas")
	assert.Equal(t, image.img.DataURI(), url)
	assert.Contains(t, url, "data:image/png;base64,")
}

func TestWantsIllustration(t *testing.T) {
	assert.True(t, WantsIllustration("ecg de esforço"))
	assert.True(t, WantsIllustration("Endoscopia Digestiva"))
	assert.False(t, WantsIllustration("Receituário"))
}

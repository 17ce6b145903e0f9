package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

var ErrEmptyResponse = errors.New("model returned no candidates")

// Client calls a generative-language REST endpoint. The request and response
// structs below are the schema contract the model endpoint is expected to honor.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	textModel  string
	imageModel string
}

type Config struct {
	APIKey     string
	BaseURL    string
	TextModel  string
	ImageModel string
	Timeout    time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("genai: api key is required")
	}
	if strings.TrimSpace(cfg.TextModel) == "" {
		return nil, errors.New("genai: text model is required")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	imageModel := strings.TrimSpace(cfg.ImageModel)
	if imageModel == "" {
		imageModel = cfg.TextModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		textModel:  cfg.TextModel,
		imageModel: imageModel,
	}, nil
}

// Wire format.
type generateContentRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type generateContentResponse struct {
	Candidates []candidate `json:"candidates"`
	Error      *apiError   `json:"error,omitempty"`
}

type candidate struct {
	Content content `json:"content"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Image is a generated image payload.
type Image struct {
	MIMEType string
	Data     string // base64
}

// DataURI renders the image as a data URI suitable for direct embedding.
func (i *Image) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", i.MIMEType, i.Data)
}

// GenerateText sends a rendered prompt to the text model and returns the
// model's raw text output unmodified.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.generate(ctx, c.textModel, prompt, nil)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// GenerateImage requests both text and image response modalities and returns
// the first image payload found in the response.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	cfg := &generationConfig{ResponseModalities: []string{"TEXT", "IMAGE"}}
	resp, err := c.generate(ctx, c.imageModel, prompt, cfg)
	if err != nil {
		return nil, err
	}

	for _, p := range resp.Candidates[0].Content.Parts {
		if p.InlineData != nil && p.InlineData.Data != "" {
			return &Image{
				MIMEType: p.InlineData.MIMEType,
				Data:     p.InlineData.Data,
			}, nil
		}
	}
	return nil, ErrEmptyResponse
}

func (c *Client) generate(ctx context.Context, model, prompt string, cfg *generationConfig) (*generateContentResponse, error) {
	reqBody := generateContentRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: cfg,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp generateContentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		if resp.Error != nil {
			return nil, fmt.Errorf("model error %d: %s", resp.Error.Code, resp.Error.Message)
		}
		return nil, fmt.Errorf("model returned status %d", httpResp.StatusCode)
	}

	if len(resp.Candidates) == 0 {
		return nil, ErrEmptyResponse
	}
	return &resp, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"tubelens-backend/internal/analysis"
)

// GenAIService generates reports through the google.golang.org/genai client.
type GenAIService struct {
	client    *genai.Client
	modelName string
	logger    zerolog.Logger
}

func NewGenAIService(ctx context.Context, apiKey, modelName string, logger zerolog.Logger) (*GenAIService, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GenAIService{
		client:    client,
		modelName: modelName,
		logger:    logger.With().Str("provider", "genai").Str("model", modelName).Logger(),
	}, nil
}

func (s *GenAIService) Model() string {
	return s.modelName
}

func (s *GenAIService) Complete(ctx context.Context, req analysis.CompletionRequest) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Temperature),
		MaxOutputTokens: req.MaxOutputTokens,
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(req.Prompt)}, genai.RoleUser),
	}

	result, err := s.client.Models.GenerateContent(ctx, s.modelName, contents, cfg)
	if err != nil {
		return "", mapGenAIError(err)
	}

	text := result.Text()
	if text == "" {
		s.logger.Warn().Msg("empty response, possibly filtered")
	}
	return text, nil
}

// mapGenAIError gives API errors an error kind by status code.
func mapGenAIError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("Gemini API error: %w", err)
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return &analysis.QuotaExceededError{Message: "AI usage quota exceeded, try again later", Cause: err}
	case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden,
		apiErr.Code == http.StatusBadRequest && strings.Contains(apiErr.Message, "API key"):
		return &analysis.BackendUnavailableError{Message: "AI service credential is invalid", Cause: err}
	case apiErr.Code == http.StatusNotFound:
		return &analysis.ModelUnavailableError{Message: "AI model is not reachable", Cause: err}
	}
	return fmt.Errorf("Gemini API error: %w", err)
}

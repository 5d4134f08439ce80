package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"tubelens-backend/internal/analysis"
)

// GeminiService generates reports through the generative-ai-go SDK.
type GeminiService struct {
	client    *genai.Client
	modelName string
	logger    zerolog.Logger
}

func NewGeminiService(ctx context.Context, apiKey, modelName string, logger zerolog.Logger) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiService{
		client:    client,
		modelName: modelName,
		logger:    logger.With().Str("provider", "gemini").Str("model", modelName).Logger(),
	}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

func (s *GeminiService) Model() string {
	return s.modelName
}

// Complete runs one generation. A fresh model handle per call keeps request settings
// from leaking between concurrent requests.
func (s *GeminiService) Complete(ctx context.Context, req analysis.CompletionRequest) (string, error) {
	model := s.client.GenerativeModel(s.modelName)
	model.SetTemperature(req.Temperature)
	if req.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(req.MaxOutputTokens)
	}
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	if req.JSON {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			s.logger.Warn().Int("candidate", i).Str("finish_reason", cand.FinishReason.String()).Msg("generation stopped early")
		}
	}

	return extractText(resp), nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

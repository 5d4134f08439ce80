package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"tubelens-backend/internal/models"
)

// ProgressChannel is the pub/sub channel carrying updates for one analysis.
func ProgressChannel(analysisID uuid.UUID) string {
	return "analysis_updates:" + analysisID.String()
}

// ProgressPublisher sends analysis progress over Redis pub/sub. A nil client makes
// every call a no-op.
type ProgressPublisher struct {
	redis  *redis.Client
	logger zerolog.Logger
}

func NewProgressPublisher(redisClient *redis.Client, logger zerolog.Logger) *ProgressPublisher {
	return &ProgressPublisher{redis: redisClient, logger: logger}
}

func (p *ProgressPublisher) Enabled() bool {
	return p != nil && p.redis != nil
}

// Publish sends a WebSocket message for the analysis. Failures are logged only.
func (p *ProgressPublisher) Publish(ctx context.Context, analysisID uuid.UUID, msg models.WSMessage) {
	if !p.Enabled() {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to encode progress message")
		return
	}
	if err := p.redis.Publish(ctx, ProgressChannel(analysisID), data).Err(); err != nil {
		p.logger.Warn().Err(err).Str("analysis_id", analysisID.String()).Msg("failed to publish progress")
	}
}

func (p *ProgressPublisher) Step(ctx context.Context, analysisID uuid.UUID, step int, name string) {
	p.Publish(ctx, analysisID, models.WSMessage{
		Type:    "status_update",
		Payload: models.StatusUpdate{AnalysisID: analysisID, Step: step, StepName: name},
	})
}

func (p *ProgressPublisher) Completed(ctx context.Context, analysisID uuid.UUID, analysisType string, durationMS int64) {
	p.Publish(ctx, analysisID, models.WSMessage{
		Type:    "completed",
		Payload: models.CompletedEvent{AnalysisID: analysisID, AnalysisType: analysisType, DurationMS: durationMS},
	})
}

func (p *ProgressPublisher) Failed(ctx context.Context, analysisID uuid.UUID, code, message string) {
	p.Publish(ctx, analysisID, models.WSMessage{
		Type:    "error",
		Payload: models.ErrorEvent{AnalysisID: analysisID, ErrorCode: code, ErrorMessage: message},
	})
}

package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestProgressChannel(t *testing.T) {
	id := uuid.MustParse("7d4a7b4e-2f53-4f6e-9c3a-0c1c9b2f7a10")
	assert.Equal(t, "analysis_updates:7d4a7b4e-2f53-4f6e-9c3a-0c1c9b2f7a10", ProgressChannel(id))
}

func TestProgressPublisher_DisabledWithoutRedis(t *testing.T) {
	p := NewProgressPublisher(nil, zerolog.Nop())
	assert.False(t, p.Enabled())

	var nilPublisher *ProgressPublisher
	assert.False(t, nilPublisher.Enabled())

	assert.NotPanics(t, func() {
		p.Step(context.Background(), uuid.New(), 1, "Fetching")
		p.Completed(context.Background(), uuid.New(), "basic_analysis", 10)
		p.Failed(context.Background(), uuid.New(), "X", "y")
		nilPublisher.Step(context.Background(), uuid.New(), 1, "Fetching")
	})
}

package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSynthesizeJobDescription(t *testing.T) {
	gw := &stubGateway{chatReply: "  We are hiring a Backend Engineer.\n"}
	svc := NewJobDescriptionService(gw, NewPromptBuilder(), zap.NewNop())

	text, err := svc.SynthesizeJobDescription(context.Background(), "Backend Engineer")
	require.NoError(t, err)

	assert.Equal(t, "We are hiring a Backend Engineer.", text)
	assert.Contains(t, gw.lastSystem, "job description generator")
	assert.Equal(t, "Job Title: Backend Engineer", gw.lastPrompt)

	// Generation keeps the model's default sampling.
	assert.Nil(t, gw.lastTemp)
}

func TestSynthesizeJobDescriptionUpstreamFailure(t *testing.T) {
	gw := &stubGateway{chatErr: fmt.Errorf("%w: generate content: boom", ErrUpstream)}
	svc := NewJobDescriptionService(gw, NewPromptBuilder(), zap.NewNop())

	_, err := svc.SynthesizeJobDescription(context.Background(), "Backend Engineer")
	assert.ErrorIs(t, err, ErrUpstream)
}

package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildScoringPrompt(t *testing.T) {
	pb := NewPromptBuilder()

	prompt := pb.BuildScoringPrompt("my resume", "my job description", "", false)

	assert.Contains(t, prompt, "Job Description:\nmy job description")
	assert.Contains(t, prompt, "Resume:\nmy resume")
	assert.Contains(t, prompt, "Please provide only a score between 1 and 100")
	assert.True(t, strings.HasSuffix(prompt, "matches the job description."))
	assert.NotContains(t, prompt, "deducted")
}

func TestBuildScoringPromptWithSkill(t *testing.T) {
	pb := NewPromptBuilder()

	prompt := pb.BuildScoringPrompt("my resume", "my job description", "Kubernetes", false)

	assert.Contains(t, prompt, `with a particular emphasis on the skill "Kubernetes".`)
}

func TestBuildScoringPromptWithExplanation(t *testing.T) {
	pb := NewPromptBuilder()

	prompt := pb.BuildScoringPrompt("my resume", "my job description", "", true)

	assert.True(t, strings.HasSuffix(prompt, "Please explain the reason you deducted points."))
}

func TestBuildJobDescriptionMessages(t *testing.T) {
	pb := NewPromptBuilder()

	messages := pb.BuildJobDescriptionMessages("Backend Engineer")
	require.Len(t, messages, 2)

	assert.Equal(t, RoleSystem, messages[0].Role)
	assert.Contains(t, messages[0].Content, "job description generator")
	assert.Equal(t, RoleUser, messages[1].Role)
	assert.Equal(t, "Job Title: Backend Engineer", messages[1].Content)
}

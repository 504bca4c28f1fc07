package services

import "fmt"

// scoringSystemPrompt frames the judge for the AI score.
const scoringSystemPrompt = "You are an expert very strict Recruiter."

const (
	jobDescriptionSystemPrompt = "You are a job description generator. You will be given a job title and you will need to generate a job description for the job title."
	jobDescriptionUserPrompt   = "Job Title: %s"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildScoringPrompt creates the AI judgment prompt: both documents, the
// request for a bare 1-100 score, an optional skill emphasis, and an
// optional request to justify deducted points.
func (pb *PromptBuilder) BuildScoringPrompt(resumeText, jobDescText, skill string, explain bool) string {
	prompt := fmt.Sprintf(
		"Job Description:\n%s\n\nResume:\n%s\n\nPlease provide only a score between 1 and 100 that indicates how well the resume",
		jobDescText, resumeText,
	)

	if skill != "" {
		prompt += fmt.Sprintf(" matches the job description, with a particular emphasis on the skill %q.", skill)
	} else {
		prompt += " matches the job description."
	}

	if explain {
		prompt += " Please explain the reason you deducted points."
	}

	return prompt
}

// BuildJobDescriptionMessages creates the conversation that synthesizes a
// job description from a bare title.
func (pb *PromptBuilder) BuildJobDescriptionMessages(jobTitle string) []Message {
	return []Message{
		{Role: RoleSystem, Content: jobDescriptionSystemPrompt},
		{Role: RoleUser, Content: fmt.Sprintf(jobDescriptionUserPrompt, jobTitle)},
	}
}

package models

import "github.com/google/uuid"

// Score is one sub-score of a resume evaluation: the AI judgment score on a
// 1-100 scale or the ATS similarity percentage. Explained reports whether
// Explanation carries a model-provided justification, so callers never have
// to sniff the shape.
type Score struct {
	Value       float64 `json:"value"`
	Explanation string  `json:"explanation,omitempty"`
	Explained   bool    `json:"-"`
}

func NewScore(value float64) Score {
	return Score{Value: value}
}

func NewExplainedScore(value float64, explanation string) Score {
	return Score{
		Value:       value,
		Explanation: explanation,
		Explained:   true,
	}
}

// ResumeScoreConsolidated joins the two independently computed sub-scores
// for one resume / job description pair.
type ResumeScoreConsolidated struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	AIScore  Score  `json:"aiScore"`
	ATSScore Score  `json:"atsScore"`
}

// NewResumeScoreConsolidated builds a result with generated placeholder
// identity. Callers overwrite ID and Name once they know the content hash
// and the original filename.
func NewResumeScoreConsolidated(aiScore, atsScore Score) *ResumeScoreConsolidated {
	return &ResumeScoreConsolidated{
		ID:       uuid.New().String(),
		Name:     "Anonymous+" + uuid.New().String()[:4],
		AIScore:  aiScore,
		ATSScore: atsScore,
	}
}

// ResumeScoreOutcome pairs one resume's result with the error that prevented
// it, so a single bad resume never aborts a whole batch.
type ResumeScoreOutcome struct {
	Score *ResumeScoreConsolidated
	Err   error
}

func (o ResumeScoreOutcome) Ok() bool {
	return o.Err == nil
}

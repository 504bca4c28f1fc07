package models

// ScoreItem is the per-resume element of the batch scoring response. Either
// the score fields or Error is populated, never both.
type ScoreItem struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	AIScore  *Score `json:"aiScore,omitempty"`
	ATSScore *Score `json:"atsScore,omitempty"`
	Error    string `json:"error,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

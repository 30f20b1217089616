package models

// CandidateMatch is one catalog candidate for a raw name with its normalized
// similarity score in [0,1]. Candidates are produced and consumed within a
// single resolver invocation and never persisted.
type CandidateMatch struct {
	CandidateID   string  `json:"candidate_id"`
	CandidateName string  `json:"candidate_name"`
	Score         float64 `json:"score"`
}

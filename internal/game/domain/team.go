package domain

// Team is a competing group. Score may go negative.
type Team struct {
	ID    uint32 `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

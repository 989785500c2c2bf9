package machine

// Session is the per-session draw state. It is never persisted.
type Session struct {
	LastAwardID      string `json:"last_award_id,omitempty"`
	HighTierExcluded bool   `json:"high_tier_excluded"`
}

// HasLastAward reports whether a draw result is waiting to be accepted or declined.
func (s Session) HasLastAward() bool { return s.LastAwardID != "" }

package model

import "time"

const Version = "1.0"

// Finding is one issue reported by the scanner. Line is 1-based.
type Finding struct {
	Severity    Severity `json:"severity"`
	Message     string   `json:"message"`
	Line        int      `json:"line"`
	Rule        string   `json:"rule"`
	Improvement string   `json:"improvement"`
}

// Scan is a single history entry: the findings produced for one file.
type Scan struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	Language  string    `json:"language"`
	StartedAt time.Time `json:"started_at"`
	Version   string    `json:"version,omitempty"`
	Findings  []Finding `json:"findings"`
}

// Suppression hides findings of one rule, optionally narrowed to a file name
// and to messages containing PatternSub.
type Suppression struct {
	ID         int64      `json:"id"`
	Rule       string     `json:"rule"`
	FileName   string     `json:"file_name,omitempty"`
	PatternSub string     `json:"pattern_sub,omitempty"`
	Reason     string     `json:"reason"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedBy  string     `json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
}

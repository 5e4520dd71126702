package domain

import "time"

// Memory is one row of a persona's bounded per-session associative store
// (spec.md §3, §4.2). Uniqueness is on (SessionID, Persona, Identifier).
type Memory struct {
	ID             string
	SessionID      string
	Persona        PersonaName
	Identifier     string
	Content        string
	CreatedAt      time.Time
	AccessCount    int
	LastAccessedAt *time.Time
}

package models

import "time"

// Software is a catalog entry. Deletion is soft: active=false rows stay
// in place so historical requests keep their references.
type Software struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
	Logo        *string   `json:"logo"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SoftwareFields is the full updatable field set written back after a
// patch merge. Logo is managed separately by the logo upload flow.
type SoftwareFields struct {
	Name        string
	Version     string
	Description string
	Source      string
	Active      bool
}

// SoftwareWithTags decorates a software row with its attached tags
type SoftwareWithTags struct {
	Software
	Tags []Tag `json:"tags"`
}

package api

import "time"

// Summary is a conversation without its turns, as listed by the store.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Bot       string    `json:"bot,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Turns     int       `json:"turns"`
}

// ListQuery filters and pages conversation listings. Results are newest first.
type ListQuery struct {
	Bot    string
	Since  time.Time
	Limit  int
	Cursor string
}

// Page carries opaque cursors for the neighbouring pages.
type Page struct {
	Next string `json:"next,omitempty"`
	Prev string `json:"prev,omitempty"`
}

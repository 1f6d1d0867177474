package internal

import "time"

type CommitInfo struct {
	ID          string    `json:"id"`
	AuthorName  string    `json:"author_name"`
	AuthorEmail string    `json:"author_email"`
	Date        time.Time `json:"date"`
	Message     string    `json:"message"`
	IsHead      bool      `json:"is_head"`
	IsCurrent   bool      `json:"is_current"`
}

// TagInfo records the commit a tag resolved to when it was created.
type TagInfo struct {
	Name     string `json:"name"`
	CommitID string `json:"commit_id"`
	Message  string `json:"message,omitempty"`
}

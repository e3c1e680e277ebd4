// Package docs is the team's running documentation log: text notes plus
// photos and videos, exportable as Markdown.
package docs

import (
	"errors"
	"strings"
	"time"
)

// EntryType is the kind of a log entry.
type EntryType string

const (
	TypeText  EntryType = "text"
	TypeImage EntryType = "image"
	TypeVideo EntryType = "video"
)

var (
	ErrEmptyContent  = errors.New("docs: content is required")
	ErrEntryNotFound = errors.New("docs: entry not found")
)

// Entry is one documentation log item. For media entries Content holds the
// original filename.
type Entry struct {
	ID        string     `json:"id"`
	UserID    string     `json:"-"`
	Content   string     `json:"content"`
	Type      EntryType  `json:"type"`
	URL       string     `json:"url,omitempty"`
	MediaKey  string     `json:"-"`
	Date      time.Time  `json:"date"`
	IsEdited  bool       `json:"isEdited"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// When is the entry's display time: creation, else the client-supplied date.
func (e *Entry) When() time.Time {
	if !e.CreatedAt.IsZero() {
		return e.CreatedAt
	}
	return e.Date
}

// TypeForContentType maps an upload's MIME type to an entry type.
func TypeForContentType(contentType string) EntryType {
	if strings.HasPrefix(contentType, "image/") {
		return TypeImage
	}
	return TypeVideo
}

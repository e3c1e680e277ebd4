package library

import (
	"errors"
	"strings"
	"time"
)

type ItemType string

const (
	TypeLink  ItemType = "Link"
	TypeImage ItemType = "Image"
	TypePDF   ItemType = "PDF"
)

const (
	FolderLinks   = "Links"
	FolderDrive   = "Drive Link"
	FolderUploads = "Uploads"
)

var (
	ErrTitleAndURLRequired = errors.New("library: title and url are required")
	ErrItemNotFound        = errors.New("library: item not found")
)

// Item is one piece of sales collateral.
type Item struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Title     string    `json:"title"`
	Type      ItemType  `json:"type"`
	URL       string    `json:"url"`
	Folder    string    `json:"folder"`
	DriveID   string    `json:"driveId,omitempty"`
	MimeType  string    `json:"mimeType,omitempty"`
	MediaKey  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// TypeForContentType maps an uploaded file's content type to Image or PDF.
func TypeForContentType(contentType string) ItemType {
	if strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return TypeImage
	}
	return TypePDF
}

// Search keeps items whose title contains term, ignoring case. A blank term
// keeps everything.
func Search(items []*Item, term string) []*Item {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return items
	}
	out := make([]*Item, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Title), term) {
			out = append(out, it)
		}
	}
	return out
}

package library

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wolfman30/nectar-lead-tracker/internal/media"
	"github.com/wolfman30/nectar-lead-tracker/pkg/logging"
)

type MediaStore interface {
	Put(ctx context.Context, userID string, u media.Upload) (media.Object, error)
	Delete(ctx context.Context, key string) error
}

const mediaFolder = "library"

// LinkInput describes a saved link. DriveID and MimeType are set when the
// link points at a shared drive file.
type LinkInput struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	DriveID  string `json:"driveId"`
	MimeType string `json:"mimeType"`
}

type Service struct {
	repo   Repository
	media  MediaStore
	logger *logging.Logger
	now    func() time.Time
}

func NewService(repo Repository, store MediaStore, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, media: store, logger: logger, now: time.Now}
}

// List returns the user's items filtered by a case-insensitive title search.
func (s *Service) List(ctx context.Context, userID, search string) ([]*Item, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Search(items, search), nil
}

// SaveLink stores a link. Title and URL are both required.
func (s *Service) SaveLink(ctx context.Context, userID string, in LinkInput) (*Item, error) {
	title, url := strings.TrimSpace(in.Title), strings.TrimSpace(in.URL)
	if title == "" || url == "" {
		return nil, ErrTitleAndURLRequired
	}
	it := &Item{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Type:      TypeLink,
		URL:       url,
		Folder:    FolderLinks,
		DriveID:   strings.TrimSpace(in.DriveID),
		MimeType:  strings.TrimSpace(in.MimeType),
		CreatedAt: s.now().UTC(),
	}
	if it.DriveID != "" {
		it.Folder = FolderDrive
	}
	if err := s.repo.Create(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

// Upload stores a file and records it in the Uploads folder.
func (s *Service) Upload(ctx context.Context, userID string, u media.Upload) (*Item, error) {
	if s.media == nil {
		return nil, media.ErrUploadsDisabled
	}
	u.Folder = mediaFolder
	obj, err := s.media.Put(ctx, userID, u)
	if err != nil {
		return nil, err
	}
	it := &Item{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     u.Filename,
		Type:      TypeForContentType(u.ContentType),
		URL:       obj.URL,
		Folder:    FolderUploads,
		MimeType:  u.ContentType,
		MediaKey:  obj.Key,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, it); err != nil {
		if derr := s.media.Delete(ctx, obj.Key); derr != nil {
			s.logger.Warn("failed to remove orphaned upload", "s3_key", obj.Key, "error", derr)
		}
		return nil, err
	}
	return it, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	it, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	if it.MediaKey != "" && s.media != nil {
		if err := s.media.Delete(ctx, it.MediaKey); err != nil {
			s.logger.Warn("failed to delete media object", "s3_key", it.MediaKey, "error", err)
		}
	}
	return nil
}

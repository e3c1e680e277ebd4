package docs

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wolfman30/nectar-lead-tracker/internal/media"
	"github.com/wolfman30/nectar-lead-tracker/pkg/logging"
)

// MediaStore keeps uploaded files.
type MediaStore interface {
	Put(ctx context.Context, userID string, u media.Upload) (media.Object, error)
	Delete(ctx context.Context, key string) error
}

const mediaFolder = "documentation"

// Service implements the documentation log operations.
type Service struct {
	repo   Repository
	media  MediaStore
	logger *logging.Logger
	loc    *time.Location
	now    func() time.Time
}

func NewService(repo Repository, store MediaStore, loc *time.Location, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, media: store, logger: logger, loc: orUTC(loc), now: time.Now}
}

func (s *Service) List(ctx context.Context, userID string) ([]*Entry, error) {
	return s.repo.List(ctx, userID)
}

// AddText logs a text note. Blank content is rejected.
func (s *Service) AddText(ctx context.Context, userID, content string) (*Entry, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	now := s.now().UTC()
	e := &Entry{ID: uuid.NewString(), UserID: userID, Content: content, Type: TypeText, Date: now, CreatedAt: now}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Upload stores a photo or video and logs it as an entry.
func (s *Service) Upload(ctx context.Context, userID string, u media.Upload) (*Entry, error) {
	if s.media == nil {
		return nil, media.ErrUploadsDisabled
	}
	u.Folder = mediaFolder
	obj, err := s.media.Put(ctx, userID, u)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	e := &Entry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   u.Filename,
		Type:      TypeForContentType(u.ContentType),
		URL:       obj.URL,
		MediaKey:  obj.Key,
		Date:      now,
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		if derr := s.media.Delete(ctx, obj.Key); derr != nil {
			s.logger.Warn("failed to remove orphaned upload", "s3_key", obj.Key, "error", derr)
		}
		return nil, err
	}
	return e, nil
}

// UpdateContent replaces an entry's text and marks it edited.
func (s *Service) UpdateContent(ctx context.Context, userID, id, content string) (*Entry, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	e, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	e.Content = content
	e.IsEdited = true
	e.UpdatedAt = &now
	if err := s.repo.UpdateContent(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes an entry and, best effort, its media object.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	e, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	if e.MediaKey != "" && s.media != nil {
		if err := s.media.Delete(ctx, e.MediaKey); err != nil {
			s.logger.Warn("failed to delete media object", "s3_key", e.MediaKey, "error", err)
		}
	}
	return nil
}

// Export renders the user's log as Markdown and returns it with a filename.
func (s *Service) Export(ctx context.Context, userID string) (string, string, error) {
	entries, err := s.repo.List(ctx, userID)
	if err != nil {
		return "", "", err
	}
	now := s.now()
	return ExportFilename(now, s.loc), ExportMarkdown(entries, now, s.loc), nil
}

// Overview summarises the user's last seven days of entries.
func (s *Service) Overview(ctx context.Context, userID string) (Overview, error) {
	entries, err := s.repo.List(ctx, userID)
	if err != nil {
		return Overview{}, err
	}
	return WeeklyOverview(entries, s.now(), s.loc), nil
}

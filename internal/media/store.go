// Package media stores uploaded files (documentation photos and videos,
// library collateral) in S3.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/wolfman30/nectar-lead-tracker/pkg/logging"
)

// ErrUploadsDisabled is returned when no bucket is configured.
var ErrUploadsDisabled = errors.New("media: uploads are not configured")

// S3API is the subset of the S3 client used by Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Object describes a stored file.
type Object struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
}

// Upload is one file to store.
type Upload struct {
	Folder      string
	Filename    string
	ContentType string
	Body        io.Reader
	Size        int64
}

// Store writes user files under users/<user>/<folder>/ in one bucket.
type Store struct {
	bucket  string
	baseURL string
	client  S3API
	logger  *logging.Logger
	now     func() time.Time
}

// NewStore creates a media Store. baseURL prefixes object keys to form public
// URLs; when empty the virtual-hosted bucket URL for region is used. If bucket
// is empty every upload fails with ErrUploadsDisabled.
func NewStore(client S3API, bucket, region, baseURL string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	if baseURL == "" && bucket != "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &Store{
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  logger,
		now:     time.Now,
	}
}

// Enabled returns true if uploads are configured.
func (s *Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.client != nil
}

// Put stores u for userID and returns where it can be fetched.
func (s *Store) Put(ctx context.Context, userID string, u Upload) (Object, error) {
	if !s.Enabled() {
		return Object{}, ErrUploadsDisabled
	}
	contentType := u.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	name := sanitizeName(u.Filename)
	folder := sanitizeName(u.Folder)
	if folder == "" {
		folder = "uploads"
	}
	key := path.Join("users", userID, folder, fmt.Sprintf("%d-%s-%s", s.now().UTC().Unix(), uuid.NewString()[:8], name))

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        u.Body,
		ContentType: aws.String(contentType),
	}
	if u.Size > 0 {
		input.ContentLength = aws.Int64(u.Size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return Object{}, fmt.Errorf("media: s3 put %s: %w", key, err)
	}

	s.logger.Info("stored media object", "user_id", userID, "s3_key", key, "content_type", contentType)
	return Object{Key: key, URL: s.baseURL + "/" + key, Name: u.Filename, ContentType: contentType}, nil
}

// Delete removes the object at key. Missing objects are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if !s.Enabled() {
		return ErrUploadsDisabled
	}
	if key == "" {
		return nil
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("media: s3 delete %s: %w", key, err)
	}
	return nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func sanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if name == "." || name == "/" {
		return ""
	}
	return strings.Trim(unsafeChars.ReplaceAllString(name, "_"), "_")
}

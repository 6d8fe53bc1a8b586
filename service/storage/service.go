// Package storage moves task payloads between object storage and the local
// file system. Any afs scheme is accepted for source and destination.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

// DefaultMaxContentLength caps downloads at 100 MiB.
const DefaultMaxContentLength = 100 * 1024 * 1024

// ErrTooLarge is returned when a download exceeds the configured limit.
var ErrTooLarge = errors.New("content too large")

// Config defines the upload bucket and download limits.
type Config struct {
	BucketURL        string `json:"bucketURL,omitempty" yaml:"bucketURL,omitempty"`
	BaseURL          string `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`
	MaxContentLength int64  `json:"maxContentLength,omitempty" yaml:"maxContentLength,omitempty"`
}

// Service provides download and upload helpers
type Service struct {
	config Config
	fs     afs.Service
}

// Download copies URL into destDir/<name>.<ext> and returns the local path.
func (s *Service) Download(ctx context.Context, URL, destDir string) (string, error) {
	source, err := s.fs.Object(ctx, URL)
	if err != nil {
		return "", fmt.Errorf("failed to get source for %s: %w", URL, err)
	}
	if source.IsDir() {
		return "", fmt.Errorf("cannot download directory: %s", URL)
	}
	limit := s.maxContentLength()
	if source.Size() > limit {
		return "", fmt.Errorf("%s has %d bytes, limit is %d: %w", URL, source.Size(), limit, ErrTooLarge)
	}
	reader, err := s.fs.Open(ctx, source)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", URL, err)
	}
	defer reader.Close()
	// some schemes report no size, so the cap is enforced on the stream too
	data, err := io.ReadAll(io.LimitReader(reader, limit+1))
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", URL, err)
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("%s exceeds limit of %d bytes: %w", URL, limit, ErrTooLarge)
	}
	name, ext := FileName(URL)
	dest := url.Join(destDir, name+"."+ext)
	if err = s.fs.Upload(ctx, dest, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return dest, nil
}

// Upload copies a local file into the bucket under key and returns its
// public URL.
func (s *Service) Upload(ctx context.Context, localPath, key string) (string, error) {
	if s.config.BucketURL == "" {
		return "", fmt.Errorf("bucket URL was empty")
	}
	key = strings.TrimLeft(key, "/")
	data, err := s.fs.DownloadWithURL(ctx, localPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", localPath, err)
	}
	dest := url.Join(s.config.BucketURL, key)
	if err = s.fs.Upload(ctx, dest, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to upload %s to %s: %w", localPath, dest, err)
	}
	return s.PublicURL(key), nil
}

// Fetch copies the bucket object under key to localPath.
func (s *Service) Fetch(ctx context.Context, key, localPath string) error {
	if s.config.BucketURL == "" {
		return fmt.Errorf("bucket URL was empty")
	}
	source := url.Join(s.config.BucketURL, strings.TrimLeft(key, "/"))
	data, err := s.fs.DownloadWithURL(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", source, err)
	}
	if err = s.fs.Upload(ctx, localPath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", localPath, err)
	}
	return nil
}

// PublicURL returns the address under which key is served.
func (s *Service) PublicURL(key string) string {
	base := s.config.BaseURL
	if base == "" {
		base = s.config.BucketURL
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

func (s *Service) maxContentLength() int64 {
	if s.config.MaxContentLength > 0 {
		return s.config.MaxContentLength
	}
	return DefaultMaxContentLength
}

// FileName splits the last URL segment into its base name (up to the first
// dot) and extension (after the last dot).
func FileName(URL string) (string, string) {
	segment := URL
	if index := strings.IndexAny(segment, "?#"); index != -1 {
		segment = segment[:index]
	}
	segment = segment[strings.LastIndex(segment, "/")+1:]
	name := segment
	if index := strings.Index(segment, "."); index != -1 {
		name = segment[:index]
	}
	ext := ""
	if index := strings.LastIndex(segment, "."); index != -1 {
		ext = segment[index+1:]
	}
	return name, ext
}

// New creates a storage service
func New(config Config) *Service {
	return &Service{config: config, fs: afs.New()}
}

package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"github.com/viant/worker/internal/logging"
	"github.com/viant/worker/service/dao"
	"github.com/viant/worker/service/inflight"
	"go.uber.org/zap"
)

// Service journals in-flight entries as one JSON file per task under baseURL.
// Any afs scheme works; mem:// is used in tests.
type Service struct {
	baseURL string
	fs      afs.Service
	logger  *zap.Logger
	mu      sync.RWMutex
}

var _ dao.Service[string, inflight.Entry] = (*Service)(nil)

// Save persists an entry.
func (s *Service) Save(ctx context.Context, entry *inflight.Entry) error {
	if entry == nil {
		return dao.ErrNilEntity
	}
	if entry.ID() == "" {
		return dao.ErrInvalidID
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	URL := s.entryURL(entry.ID())
	if err = s.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save entry to %s: %w", URL, err)
	}
	return nil
}

// Load retrieves an entry or dao.ErrNotFound.
func (s *Service) Load(ctx context.Context, id string) (*inflight.Entry, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(ctx, id)
}

// Take retrieves and removes an entry.
func (s *Service) Take(ctx context.Context, id string) (*inflight.Entry, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = s.fs.Delete(ctx, s.entryURL(id)); err != nil {
		return nil, fmt.Errorf("failed to delete entry %s: %w", id, err)
	}
	return entry, nil
}

// Delete removes an entry. Deleting a missing entry is not an error.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	URL := s.entryURL(id)
	exists, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return fmt.Errorf("failed to check entry %s: %w", id, err)
	}
	if !exists {
		return nil
	}
	if err = s.fs.Delete(ctx, URL); err != nil {
		return fmt.Errorf("failed to delete entry %s: %w", id, err)
	}
	return nil
}

// List returns all journaled entries. Unreadable files are logged and skipped.
func (s *Service) List(ctx context.Context) ([]*inflight.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	objects, err := s.fs.List(ctx, s.baseURL, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list journal %s: %w", s.baseURL, err)
	}
	var entries []*inflight.Entry
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			s.logger.Warn("failed to read journal entry", zap.String("url", object.URL()), zap.Error(err))
			continue
		}
		entry := &inflight.Entry{}
		if err := json.Unmarshal(data, entry); err != nil {
			s.logger.Warn("failed to decode journal entry", zap.String("url", object.URL()), zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Service) load(ctx context.Context, id string) (*inflight.Entry, error) {
	URL := s.entryURL(id)
	exists, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to check entry %s: %w", id, err)
	}
	if !exists {
		return nil, dao.ErrNotFound
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read entry %s: %w", id, err)
	}
	entry := &inflight.Entry{}
	if err = json.Unmarshal(data, entry); err != nil {
		return nil, fmt.Errorf("failed to decode entry %s: %w", id, err)
	}
	return entry, nil
}

func (s *Service) entryURL(id string) string {
	return url.Join(s.baseURL, id+".json")
}

// New creates a journal rooted at baseURL, creating the location if needed.
func New(ctx context.Context, baseURL string, logger *zap.Logger) (*Service, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("journal URL was empty")
	}
	fs := afs.New()
	baseURL = url.Normalize(baseURL, file.Scheme)
	exists, _ := fs.Exists(ctx, baseURL)
	if !exists {
		if err := fs.Create(ctx, baseURL, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create journal location %s: %w", baseURL, err)
		}
	}
	return &Service{baseURL: baseURL, fs: fs, logger: logging.OrNop(logger)}, nil
}

package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"github.com/viant/taskflow/service/dao"
	"github.com/viant/taskflow/service/dao/criteria"
)

// Service implements a storage keeping one JSON document per entity under
// a base URL (local path, mem://, s3:// ...)
type Service[T any] struct {
	basePath    string
	fs          afs.Service
	keySelector func(*T) string
	fields      criteria.Fields[T]
	logger      logrus.FieldLogger
	mu          sync.RWMutex
}

// Option customises the service
type Option[T any] func(s *Service[T])

// WithFields enables List filtering
func WithFields[T any](fields criteria.Fields[T]) Option[T] {
	return func(s *Service[T]) {
		s.fields = fields
	}
}

// WithLogger sets the logger reporting unreadable documents
func WithLogger[T any](logger logrus.FieldLogger) Option[T] {
	return func(s *Service[T]) {
		s.logger = logger
	}
}

// WithFileSystem overrides the afs service
func WithFileSystem[T any](fs afs.Service) Option[T] {
	return func(s *Service[T]) {
		s.fs = fs
	}
}

// Ensure Service implements dao.Service
var _ dao.Service[string, struct{}] = (*Service[struct{}])(nil)

// Save persists an entity
func (s *Service[T]) Save(ctx context.Context, entity *T) error {
	if entity == nil {
		return dao.ErrNilEntity
	}
	id := s.keySelector(entity)
	if id == "" {
		return dao.ErrInvalidID
	}
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	filePath := s.entityPath(id)
	if err = s.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save %s: %w", filePath, err)
	}
	return nil
}

// Load retrieves an entity
func (s *Service[T]) Load(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	filePath := s.entityPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", filePath, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", dao.ErrNotFound, id)
	}
	data, err := s.fs.DownloadWithURL(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	var entity T
	if err := json.Unmarshal(data, &entity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", filePath, err)
	}
	return &entity, nil
}

// Delete removes an entity
func (s *Service[T]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := s.entityPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", filePath, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", dao.ErrNotFound, id)
	}
	if err := s.fs.Delete(ctx, filePath); err != nil {
		return fmt.Errorf("failed to delete %s: %w", filePath, err)
	}
	return nil
}

// List returns all stored entities matching parameters. Unreadable documents
// are logged and skipped.
func (s *Service[T]) List(ctx context.Context, parameters ...*dao.Parameter) ([]*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.basePath, err)
	}
	var result []*T
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			s.logger.WithError(err).WithField("url", object.URL()).Warn("failed to read document")
			continue
		}
		var entity T
		if err := json.Unmarshal(data, &entity); err != nil {
			s.logger.WithError(err).WithField("url", object.URL()).Warn("failed to unmarshal document")
			continue
		}
		if s.fields != nil && !criteria.Match(s.fields(&entity), parameters) {
			continue
		}
		result = append(result, &entity)
	}
	return result, nil
}

func (s *Service[T]) entityPath(id string) string {
	return url.Join(s.basePath, id+".json")
}

// New creates a filesystem storage rooted at basePath
func New[T any](ctx context.Context, basePath string, keySelector func(*T) string, options ...Option[T]) (*Service[T], error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	ret := &Service[T]{keySelector: keySelector, logger: logrus.StandardLogger()}
	for _, opt := range options {
		opt(ret)
	}
	if ret.fs == nil {
		ret.fs = afs.New()
	}
	exists, _ := ret.fs.Exists(ctx, basePath)
	if !exists {
		if err := ret.fs.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
	}
	ret.basePath = url.Normalize(basePath, file.Scheme)
	return ret, nil
}

// Package bolt stores JSON encoded entities in a single BoltDB bucket.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/viant/taskflow/service/dao"
	"github.com/viant/taskflow/service/dao/criteria"
	"go.etcd.io/bbolt"
	"go.uber.org/multierr"
)

// Service implements dao.Service on top of BoltDB
type Service[T any] struct {
	db          *bbolt.DB
	bucket      []byte
	keySelector func(*T) string
	fields      criteria.Fields[T]
	mu          sync.RWMutex
	closed      bool
}

var _ dao.Service[string, struct{}] = (*Service[struct{}])(nil)

// Save persists an entity
func (s *Service[T]) Save(_ context.Context, entity *T) error {
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
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(id), data)
	})
}

// Load retrieves an entity
func (s *Service[T]) Load(_ context.Context, id string) (*T, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	var entity *T
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(s.bucket).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", dao.ErrNotFound, id)
		}
		entity = new(T)
		return json.Unmarshal(data, entity)
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// Delete removes an entity
func (s *Service[T]) Delete(_ context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(s.bucket)
		if bucket.Get([]byte(id)) == nil {
			return fmt.Errorf("%w: %s", dao.ErrNotFound, id)
		}
		return bucket.Delete([]byte(id))
	})
}

// List returns all entities matching parameters
func (s *Service[T]) List(_ context.Context, parameters ...*dao.Parameter) ([]*T, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	var result []*T
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).ForEach(func(k, v []byte) error {
			entity := new(T)
			if err := json.Unmarshal(v, entity); err != nil {
				return fmt.Errorf("failed to unmarshal %s: %w", k, err)
			}
			if s.fields != nil && !criteria.Match(s.fields(entity), parameters) {
				return nil
			}
			result = append(result, entity)
			return nil
		})
	})
	return result, err
}

// Close closes the underlying database
func (s *Service[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *Service[T]) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return dao.ErrClosed
	}
	return nil
}

// New opens (or creates) a BoltDB file at location using bucket
func New[T any](location, bucket string, keySelector func(*T) string, fields criteria.Fields[T]) (*Service[T], error) {
	if location == "" {
		return nil, fmt.Errorf("bolt location cannot be empty")
	}
	db, err := bbolt.Open(location, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", location, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	})
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to create bucket %s: %w", bucket, err), db.Close())
	}
	return &Service[T]{db: db, bucket: []byte(bucket), keySelector: keySelector, fields: fields}, nil
}

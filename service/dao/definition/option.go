package definition

import (
	"github.com/viant/afs"
	"github.com/viant/afs/storage"
)

type Option func(*Service)

// WithFileSystem overrides the afs service
func WithFileSystem(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithBaseURL sets the location relative URLs are resolved against
func WithBaseURL(URL string) Option {
	return func(s *Service) {
		s.baseURL = URL
	}
}

// WithFsOptions passes storage options (e.g. *embed.FS) to every afs call
func WithFsOptions(options ...storage.Option) Option {
	return func(s *Service) {
		s.options = options
	}
}

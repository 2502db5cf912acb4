package project

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/matlayer/pkg/config"
	"github.com/matzehuels/matlayer/pkg/errors"
	"github.com/matzehuels/matlayer/pkg/material"
	"github.com/matzehuels/matlayer/pkg/observability"
)

// Store is the interface for document storage backends.
type Store interface {
	// Get retrieves a document by material name.
	// Returns nil, nil if the document doesn't exist.
	Get(ctx context.Context, name string) (*Document, error)

	// Set stores a document under its name, replacing any previous version.
	Set(ctx context.Context, doc *Document) error

	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all stored documents, sorted.
	List(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// Open creates the store selected by cfg, wrapped with observability hooks.
func Open(ctx context.Context, cfg config.Store) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case config.BackendFile, "":
		s, err = NewFileStore(cfg.Dir)
	case config.BackendMemory:
		s = NewMemoryStore()
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		s, err = NewRedisStore(ctx, client, "")
	case config.BackendMongo:
		s, err = NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(s, cfg.Backend), nil
}

// Instrument wraps s so every load and save is reported to the registered
// store hooks under the given backend label.
func Instrument(s Store, backend string) Store {
	return &instrumented{Store: s, backend: backend}
}

type instrumented struct {
	Store
	backend string
}

func (s *instrumented) Get(ctx context.Context, name string) (*Document, error) {
	start := time.Now()
	doc, err := s.Store.Get(ctx, name)
	observability.Store().OnLoad(ctx, s.backend, name, time.Since(start), err)
	return doc, err
}

func (s *instrumented) Set(ctx context.Context, doc *Document) error {
	start := time.Now()
	err := s.Store.Set(ctx, doc)
	observability.Store().OnSave(ctx, s.backend, doc.Name, len(doc.Nodes), time.Since(start), err)
	return err
}

// Load reads and rebuilds the named material. A missing document is a
// NOT_FOUND error.
func Load(ctx context.Context, s Store, name string, opts ...material.Option) (*material.Material, error) {
	doc, err := s.Get(ctx, name)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load %s", name)
	}
	if doc == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "material %s not found", name)
	}
	return doc.Material(opts...)
}

// Save stores m, stamping the document with the current time.
func Save(ctx context.Context, s Store, m *material.Material) error {
	doc := FromMaterial(m)
	doc.UpdatedAt = time.Now().UTC()
	if err := s.Set(ctx, doc); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "save %s", m.Name)
	}
	return nil
}

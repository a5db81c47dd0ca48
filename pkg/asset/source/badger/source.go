// Package badger serves assets packed into a BadgerDB directory.
//
// Packing many small images into one embedded store makes a catalog's
// assets a single artifact to ship. Keys are "asset:" + locator.
package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/marmos91/hdrive/internal/logger"
	"github.com/marmos91/hdrive/pkg/asset"
)

const keyPrefix = "asset:"

// Config holds configuration for the badger source.
type Config struct {
	// Path is the database directory.
	Path string `mapstructure:"path" yaml:"path" validate:"required_without=InMemory"`

	// ReadOnly opens the database without taking the write lock, so several
	// processes can serve the same pack.
	ReadOnly bool `mapstructure:"read_only" yaml:"read_only"`

	// InMemory keeps everything in RAM. Used by tests.
	InMemory bool `mapstructure:"-" yaml:"-"`
}

// Source reads and writes assets in a BadgerDB.
type Source struct {
	db *badgerdb.DB
}

// New opens (or creates) the database described by cfg.
func New(cfg Config) (*Source, error) {
	var opts badgerdb.Options
	switch {
	case cfg.InMemory:
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	case cfg.Path != "":
		opts = badgerdb.DefaultOptions(cfg.Path).WithReadOnly(cfg.ReadOnly)
	default:
		return nil, errors.New("badger path is required")
	}
	opts = opts.WithLogger(badgerLogger{})

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger asset store: %w", err)
	}
	return &Source{db: db}, nil
}

func dbKey(locator string) []byte {
	return []byte(keyPrefix + locator)
}

func mapClosed(err error) error {
	if errors.Is(err, badgerdb.ErrDBClosed) {
		return asset.ErrSourceClosed
	}
	return err
}

// Fetch returns a copy of the value stored for locator.
func (s *Source) Fetch(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(dbKey(locator))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", asset.ErrAssetNotFound, locator)
	}
	if err != nil {
		return nil, mapClosed(err)
	}
	return data, nil
}

// Put stores data under locator, replacing any previous value.
func (s *Source) Put(ctx context.Context, locator string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(dbKey(locator), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store asset %q: %w", locator, mapClosed(err))
	}
	return nil
}

// Delete removes locator. Deleting a missing locator is not an error.
func (s *Source) Delete(ctx context.Context, locator string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(dbKey(locator))
	})
	if err != nil {
		return fmt.Errorf("failed to delete asset %q: %w", locator, mapClosed(err))
	}
	return nil
}

// List returns every stored locator, sorted.
func (s *Source) List(ctx context.Context) ([]string, error) {
	var out []string
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			out = append(out, strings.TrimPrefix(string(it.Item().Key()), keyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, mapClosed(err)
	}
	sort.Strings(out)
	return out, nil
}

// HealthCheck verifies a read transaction can be opened.
func (s *Source) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return asset.ErrSourceClosed
	}
	return s.db.View(func(*badgerdb.Txn) error { return nil })
}

// Close closes the database. Closing twice is a no-op.
func (s *Source) Close() error {
	if s.db.IsClosed() {
		return nil
	}
	return s.db.Close()
}

// badgerLogger routes badger's internal logging to the process logger.
// Info chatter is demoted to debug.
type badgerLogger struct{}

func (badgerLogger) Errorf(f string, v ...any) {
	logger.Error(strings.TrimSpace(fmt.Sprintf(f, v...)), logger.KeyComponent, "badger")
}

func (badgerLogger) Warningf(f string, v ...any) {
	logger.Warn(strings.TrimSpace(fmt.Sprintf(f, v...)), logger.KeyComponent, "badger")
}

func (badgerLogger) Infof(f string, v ...any) {
	logger.Debug(strings.TrimSpace(fmt.Sprintf(f, v...)), logger.KeyComponent, "badger")
}

func (badgerLogger) Debugf(f string, v ...any) {
	logger.Debug(strings.TrimSpace(fmt.Sprintf(f, v...)), logger.KeyComponent, "badger")
}

var _ asset.Source = (*Source)(nil)

// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package trace

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/google/uuid"
	bbolt "go.etcd.io/bbolt"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/actorcheck/errors"
)

const (
	boltFileMode    os.FileMode = 0o600
	recordsBucket               = "records"
	tracesBucket                = "traces"
	openMaxRetries              = 5
	openInitialWait             = 50 * time.Millisecond
	openMaxWait                 = time.Second
)

var defaultBoltOptions = &bbolt.Options{Timeout: time.Second, NoGrowSync: true}

// Record describes a bug found during a run together with its replayable trace
type Record struct {
	ID        string    `json:"id"`
	Test      string    `json:"test"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Strategy  string    `json:"strategy"`
	Seed      uint64    `json:"seed"`
	Iteration int       `json:"iteration"`
	Steps     int       `json:"steps"`
	CreatedAt time.Time `json:"created_at"`
	Trace     *Trace    `json:"-"`
}

// Store persists bug records in a bbolt database.
// Record metadata is stored as JSON and traces with the zstd codec, in two buckets keyed by record id.
type Store struct {
	db     *bbolt.DB
	path   string
	closed *atomic.Bool
}

// OpenStore opens (or creates) the store at the given path.
// The file lock may still be held by a previous process for a short while,
// so opening is retried with backoff.
func OpenStore(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("trace: unable to create store directory: %w", err)
		}
	}

	var db *bbolt.DB
	retrier := retry.NewRetrier(openMaxRetries, openInitialWait, openMaxWait)
	err := retrier.RunContext(ctx, func(context.Context) error {
		optionsCopy := *defaultBoltOptions
		var err error
		db, err = bbolt.Open(path, boltFileMode, &optionsCopy)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("trace: opening boltdb: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{recordsBucket, tracesBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("trace: initializing boltdb buckets: %w", err)
	}

	return &Store{db: db, path: path, closed: atomic.NewBool(false)}, nil
}

// Path returns the location of the database file
func (s *Store) Path() string {
	return s.path
}

// Put stores the record and returns its id. An id is generated when the record has none.
func (s *Store) Put(ctx context.Context, record *Record) (string, error) {
	if err := s.ensureOpen(ctx); err != nil {
		return "", err
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	meta, err := json.Marshal(record)
	if err != nil {
		return "", err
	}

	tr := record.Trace
	if tr == nil {
		tr = New()
	}
	data, err := Encode(tr)
	if err != nil {
		return "", err
	}

	key := []byte(record.ID)
	err = s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket([]byte(recordsBucket)).Put(key, meta); err != nil {
			return err
		}
		return tx.Bucket([]byte(tracesBucket)).Put(key, data)
	})
	if err != nil {
		return "", fmt.Errorf("trace: storing record %s: %w", record.ID, err)
	}
	return record.ID, nil
}

// Get returns the record with the given id, trace included.
// A unique id prefix is accepted as well.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	if err := s.ensureOpen(ctx); err != nil {
		return nil, err
	}

	var record *Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		key, meta := s.lookup(tx.Bucket([]byte(recordsBucket)), id)
		if meta == nil {
			return fmt.Errorf("id=(%s) %w", id, gerrors.ErrTraceNotFound)
		}

		record = new(Record)
		if err := json.Unmarshal(meta, record); err != nil {
			return err
		}

		data := tx.Bucket([]byte(tracesBucket)).Get(key)
		if data == nil {
			record.Trace = New()
			return nil
		}
		tr, err := Decode(data)
		if err != nil {
			return err
		}
		record.Trace = tr
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// List returns the stored records without their traces, oldest first
func (s *Store) List(ctx context.Context) ([]*Record, error) {
	if err := s.ensureOpen(ctx); err != nil {
		return nil, err
	}

	records := make([]*Record, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(recordsBucket)).ForEach(func(_, value []byte) error {
			record := new(Record)
			if err := json.Unmarshal(value, record); err != nil {
				return err
			}
			records = append(records, record)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(records, func(a, b *Record) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return records, nil
}

// Delete removes the record with the given id. Deleting a missing record is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.ensureOpen(ctx); err != nil {
		return err
	}

	key := []byte(id)
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket([]byte(recordsBucket)).Delete(key); err != nil {
			return err
		}
		return tx.Bucket([]byte(tracesBucket)).Delete(key)
	})
}

// Close releases the underlying database handle
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func (s *Store) lookup(bucket *bbolt.Bucket, id string) ([]byte, []byte) {
	if id == "" {
		return nil, nil
	}
	if value := bucket.Get([]byte(id)); value != nil {
		return []byte(id), value
	}

	var (
		key   []byte
		value []byte
		found int
	)
	cursor := bucket.Cursor()
	prefix := []byte(id)
	for k, v := cursor.Seek(prefix); k != nil && strings.HasPrefix(string(k), id); k, v = cursor.Next() {
		key, value = slices.Clone(k), slices.Clone(v)
		found++
	}
	if found != 1 {
		return nil, nil
	}
	return key, value
}

func (s *Store) ensureOpen(ctx context.Context) error {
	if s.closed.Load() {
		return gerrors.ErrTraceStoreClosed
	}
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}

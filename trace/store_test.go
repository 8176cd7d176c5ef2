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
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/actorcheck/errors"
)

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("With put get list and delete", func(t *testing.T) {
		store, err := OpenStore(ctx, filepath.Join(t.TempDir(), "bugs.db"))
		require.NoError(t, err)
		t.Cleanup(func() { require.NoError(t, store.Close()) })

		first := &Record{
			Test:      "raft",
			Kind:      "assertion",
			Message:   "Detected more than one leader in term 2",
			Strategy:  "random",
			Iteration: 12,
			Trace:     sampleTrace(),
			CreatedAt: time.Unix(100, 0).UTC(),
		}
		id, err := store.Put(ctx, first)
		require.NoError(t, err)
		require.NotEmpty(t, id)

		second := &Record{Test: "pingpong", Kind: "deadlock", CreatedAt: time.Unix(200, 0).UTC()}
		_, err = store.Put(ctx, second)
		require.NoError(t, err)

		actual, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, first.Message, actual.Message)
		assert.Equal(t, 12, actual.Iteration)
		assert.True(t, sampleTrace().Equal(actual.Trace))

		// unique prefix
		actual, err = store.Get(ctx, id[:13])
		require.NoError(t, err)
		assert.Equal(t, id, actual.ID)

		records, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, id, records[0].ID)
		assert.Nil(t, records[0].Trace)
		assert.Zero(t, records[1].Trace.Len())

		require.NoError(t, store.Delete(ctx, id))
		_, err = store.Get(ctx, id)
		assert.ErrorIs(t, err, gerrors.ErrTraceNotFound)
	})
	t.Run("With reopened store", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "bugs.db")
		store, err := OpenStore(ctx, path)
		require.NoError(t, err)
		id, err := store.Put(ctx, &Record{Test: "raft", Trace: sampleTrace()})
		require.NoError(t, err)
		require.NoError(t, store.Close())

		store, err = OpenStore(ctx, path)
		require.NoError(t, err)
		defer store.Close()
		actual, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 5, actual.Trace.Len())
		assert.Equal(t, path, store.Path())
	})
	t.Run("With closed store", func(t *testing.T) {
		store, err := OpenStore(ctx, filepath.Join(t.TempDir(), "bugs.db"))
		require.NoError(t, err)
		require.NoError(t, store.Close())
		require.NoError(t, store.Close())

		_, err = store.Put(ctx, &Record{})
		assert.ErrorIs(t, err, gerrors.ErrTraceStoreClosed)
		_, err = store.List(ctx)
		assert.ErrorIs(t, err, gerrors.ErrTraceStoreClosed)
	})
	t.Run("With canceled context", func(t *testing.T) {
		store, err := OpenStore(ctx, filepath.Join(t.TempDir(), "bugs.db"))
		require.NoError(t, err)
		defer store.Close()

		cancelCtx, cancel := context.WithCancel(ctx)
		cancel()
		_, err = store.Get(cancelCtx, "missing")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

package history

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScratchDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })
	_, err = conn.Exec("CREATE TABLE test (id INTEGER PRIMARY KEY, val TEXT)")
	require.NoError(t, err)
	return conn
}

func insert(val string) WriteFunc {
	return func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO test (val) VALUES (?)", val)
		return err
	}
}

func countRows(t *testing.T, conn *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM test").Scan(&n))
	return n
}

func TestBatchWriterTransactions(t *testing.T) {
	conn := newScratchDB(t)
	bw := NewBatchWriter(conn, 2, 0, nil)

	require.NoError(t, bw.Submit(insert("A")))
	require.NoError(t, bw.Submit(insert("B")))
	require.NoError(t, bw.Submit(insert("C")))

	done := make(chan error, 1)
	go func() { done <- bw.Close() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for batch commit/close")
	}
	assert.Equal(t, 3, countRows(t, conn))
}

func TestBatchWriterRollback(t *testing.T) {
	conn := newScratchDB(t)
	bw := NewBatchWriter(conn, 2, 0, nil)
	errCh := make(chan error, 1)
	bw.OnError = func(e error) { errCh <- e }

	require.NoError(t, bw.Submit(insert("A")))
	require.NoError(t, bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
		return errors.New("intentional error")
	}))

	err := bw.Close()
	assert.EqualError(t, err, "intentional error")
	select {
	case e := <-errCh:
		assert.Error(t, e)
	default:
		t.Fatal("expected OnError to be called")
	}
	assert.Equal(t, 0, countRows(t, conn), "the whole batch rolls back")
}

func TestBatchWriterFlushesOnInterval(t *testing.T) {
	conn := newScratchDB(t)
	bw := NewBatchWriter(conn, 10, 20*time.Millisecond, nil)
	defer bw.Close()

	require.NoError(t, bw.Submit(insert("A")))
	assert.Eventually(t, func() bool {
		var n int
		if err := conn.QueryRow("SELECT COUNT(*) FROM test").Scan(&n); err != nil {
			return false
		}
		return n == 1
	}, time.Second, 10*time.Millisecond)
}

func TestBatchWriterWithoutDB(t *testing.T) {
	bw := NewBatchWriter(nil, 5, 0, nil)
	var mu sync.Mutex
	called := 0
	for i := 0; i < 12; i++ {
		require.NoError(t, bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
			mu.Lock()
			called++
			mu.Unlock()
			return nil
		}))
	}
	require.NoError(t, bw.Close())
	assert.Equal(t, 12, called)
}

func TestBatchWriterClosedRejectsWrites(t *testing.T) {
	bw := NewBatchWriter(nil, 1, 0, nil)
	require.NoError(t, bw.Close())
	assert.ErrorIs(t, bw.Submit(func(context.Context, *sql.Tx) error { return nil }), ErrBatchWriterClosed)
	assert.ErrorIs(t, bw.Close(), ErrBatchWriterClosed)
}

func TestBatchWriterDropsBatchOnCancel(t *testing.T) {
	bw := NewBatchWriter(nil, 1, 0, nil)
	errCh := make(chan error, 4)
	bw.OnError = func(e error) { errCh <- e }
	blocker := make(chan struct{})

	// The committer is held by the first batch while two more fill the queue.
	require.NoError(t, bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
		<-blocker
		return nil
	}))
	require.NoError(t, bw.Submit(func(context.Context, *sql.Tx) error { return nil }))
	require.NoError(t, bw.Submit(func(context.Context, *sql.Tx) error { return nil }))

	bw.cancel()
	require.NoError(t, bw.Submit(func(context.Context, *sql.Tx) error { return nil }))
	close(blocker)

	select {
	case e := <-errCh:
		assert.Contains(t, e.Error(), "dropping batch")
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected OnError to be called when batch dropped")
	}
	assert.Error(t, bw.Close())
}

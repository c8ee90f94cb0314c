package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteForTest(t *testing.T) *SQLite {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)", url.PathEscape(t.Name()))
	s, err := NewSQLite(SQLiteOptions{DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func backends(t *testing.T) map[string]Storage {
	t.Helper()

	file, err := NewFile(FileOptions{Dir: t.TempDir()})
	require.NoError(t, err)

	return map[string]Storage{
		DriverMemory: NewMemory(),
		DriverFile:   file,
		DriverSQLite: newSQLiteForTest(t),
	}
}

func TestStorage_Contract(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Get(ctx, "gotp.accounts")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Put(ctx, "gotp.accounts", []byte(`[1]`)))
			got, err := s.Get(ctx, "gotp.accounts")
			require.NoError(t, err)
			assert.Equal(t, []byte(`[1]`), got)

			require.NoError(t, s.Put(ctx, "gotp.accounts", []byte(`[1,2]`)))
			got, err = s.Get(ctx, "gotp.accounts")
			require.NoError(t, err)
			assert.Equal(t, []byte(`[1,2]`), got)

			require.NoError(t, s.Delete(ctx, "gotp.accounts"))
			require.NoError(t, s.Delete(ctx, "gotp.accounts"))
			_, err = s.Get(ctx, "gotp.accounts")
			assert.ErrorIs(t, err, ErrNotFound)

			assert.NoError(t, s.Close())
		})
	}
}

func TestStorage_ConcurrentPutsNeverTear(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			values := [][]byte{[]byte(`["aaaaaaaaaaaaaaaa"]`), []byte(`["bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"]`)}

			var wg sync.WaitGroup
			for i := range 20 {
				wg.Go(func() {
					assert.NoError(t, s.Put(ctx, "k", values[i%2]))
				})
			}
			wg.Wait()

			got, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.Contains(t, values, got)
		})
	}
}

func TestMemory_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	in := []byte("abc")
	require.NoError(t, m.Put(ctx, "k", in))
	in[0] = 'x'

	out, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), out)

	out[1] = 'y'
	again, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestFile_Layout(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(FileOptions{Dir: filepath.Join(dir, "nested")})
	require.NoError(t, err)

	require.NoError(t, f.Put(context.Background(), "gotp.accounts", []byte(`[]`)))

	data, err := os.ReadFile(filepath.Join(dir, "nested", "gotp.accounts.json"))
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), data)

	assert.Equal(t, filepath.Join(dir, "nested", "a_b_c.json"), f.path("a/b\\c"))
}

func TestNewFile_RequiresDir(t *testing.T) {
	_, err := NewFile(FileOptions{Dir: "  "})
	assert.Error(t, err)
}

func TestNewFromDriver(t *testing.T) {
	s, err := NewFromDriver("MEMORY", FactoryOptions{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = NewFromDriver(DriverFile, FactoryOptions{File: FileOptions{Dir: t.TempDir()}})
	require.NoError(t, err)
	assert.IsType(t, &File{}, s)

	s, err = NewFromDriver(DriverSQLite, FactoryOptions{SQLite: SQLiteOptions{Path: filepath.Join(t.TempDir(), "gotp.db")}})
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	require.NoError(t, s.Close())

	_, err = NewFromDriver("s3", FactoryOptions{})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestSQLite_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gotp.db")

	first, err := NewSQLite(SQLiteOptions{Path: path})
	require.NoError(t, err)
	require.NoError(t, first.Put(context.Background(), "k", []byte("v")))
	require.NoError(t, first.Close())

	second, err := NewSQLite(SQLiteOptions{Path: path})
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestIsBusy(t *testing.T) {
	assert.False(t, isBusy(nil))
	assert.True(t, isBusy(fmt.Errorf("exec: database is locked (5) (SQLITE_BUSY)")))
	assert.False(t, isBusy(fmt.Errorf("no such table")))
}

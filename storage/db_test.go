package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testBackends(t *testing.T) map[string]Database {
	t.Helper()
	ldb, err := NewLevelDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { ldb.Close() })
	return map[string]Database{
		"memdb":   NewMemDB(),
		"leveldb": ldb,
	}
}

func TestDatabaseRoundTrip(t *testing.T) {
	for name, db := range testBackends(t) {
		t.Run(name, func(t *testing.T) {
			key := []byte("blob/0xabc/0")
			value := []byte("payload")

			ok, err := db.Has(key)
			require.NoError(t, err)
			require.False(t, ok)

			_, err = db.Get(key)
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, db.Put(key, value))

			ok, err = db.Has(key)
			require.NoError(t, err)
			require.True(t, ok)

			got, err := db.Get(key)
			require.NoError(t, err)
			require.Equal(t, value, got)

			require.NoError(t, db.Put(key, []byte("replaced")))
			got, err = db.Get(key)
			require.NoError(t, err)
			require.Equal(t, []byte("replaced"), got)
		})
	}
}

func TestMemDBCopiesValues(t *testing.T) {
	db := NewMemDB()
	value := []byte("mutable")
	require.NoError(t, db.Put([]byte("k"), value))

	value[0] = 'X'
	got, err := db.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("mutable"), got)
}

func TestLevelDBPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	db1, err := NewLevelDB(dir)
	require.NoError(t, err)
	require.NoError(t, db1.Put([]byte("k"), []byte("v")))
	require.NoError(t, db1.Close())

	db2, err := NewLevelDB(dir)
	require.NoError(t, err)
	defer db2.Close()

	got, err := db2.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), got)
}

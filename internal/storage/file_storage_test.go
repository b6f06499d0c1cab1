package storage

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"testing"
	"warden/internal/types"
)

func TestFileStorage_SaveGet(t *testing.T) {
	ctx := context.Background()
	st := NewFileStorage(t.TempDir())

	err := st.Save(ctx, "2026-10-14/auth/users.json", types.NewBytesFile("users.json", "application/json", []byte(`[]`)))
	require.NoError(t, err)

	f, err := st.Get(ctx, "2026-10-14/auth/users.json")
	require.NoError(t, err)
	defer f.Content.Close()

	content, err := io.ReadAll(f.Content)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(content))
	assert.Equal(t, int64(2), f.Stat.Size)
}

func TestFileStorage_List(t *testing.T) {
	ctx := context.Background()
	st := NewFileStorage(t.TempDir())

	keys, err := st.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, keys)

	for _, key := range []string{"2026-10-14/firestore/users.ndjson", "2026-10-14/auth/users.json", "2026-10-13/auth/users.json"} {
		require.NoError(t, st.Save(ctx, key, types.NewBytesFile("f", "", []byte("x"))))
	}

	keys, err = st.List(ctx, "2026-10-14/")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-10-14/auth/users.json", "2026-10-14/firestore/users.ndjson"}, keys)
}

func TestFileStorage_LocationResolve(t *testing.T) {
	root := t.TempDir()
	st := NewFileStorage(root)

	location := st.Location("2026-10-17_Saturday")
	assert.True(t, len(location) > len("file://"))

	key, err := st.Resolve(location)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-17_Saturday", key)

	_, err = st.Resolve("s3://backups/2026-10-17")
	assert.Error(t, err)
}

func TestFileStorage_RejectsEscapingKeys(t *testing.T) {
	st := NewFileStorage(t.TempDir())
	err := st.Save(context.Background(), "../outside.json", types.NewBytesFile("f", "", []byte("x")))
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	st, err := New(types.StorageCredentials{Type: "File", RootDir: t.TempDir()})
	require.NoError(t, err)
	assert.NotNil(t, st)

	_, err = New(types.StorageCredentials{Type: "GCS"})
	assert.Error(t, err)

	st, err = New(types.StorageCredentials{Type: "S3", Endpoint: "localhost:9000", AccessKeyID: "k", SecretKey: "s", Bucket: "prix-six"})
	require.NoError(t, err)
	assert.Equal(t, "s3://prix-six/2026-10-14", st.Location("2026-10-14"))
}

package storage

import (
	"context"
	"fmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"warden/internal/types"
)

const listPage = `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
<Name>backups</Name><Prefix>2026-10-14/</Prefix><KeyCount>1</KeyCount><MaxKeys>1000</MaxKeys>
<IsTruncated>%t</IsTruncated>%s<Contents><Key>%s</Key><Size>2</Size></Contents>
</ListBucketResult>`

const accessDenied = `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>AccessDenied</Code><Message>Access Denied</Message><BucketName>backups</BucketName></Error>`

func newBucketServer(t *testing.T, pages ...func(w http.ResponseWriter)) (Storage, *int32) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(atomic.AddInt32(&calls, 1)) - 1
		w.Header().Set("Content-Type", "application/xml")
		if n >= len(pages) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(accessDenied))
			return
		}
		pages[n](w)
	}))
	t.Cleanup(srv.Close)

	st, err := NewObjectStorage(types.StorageCredentials{
		Type:        "S3",
		Endpoint:    strings.TrimPrefix(srv.URL, "http://"),
		AccessKeyID: "access",
		SecretKey:   "secret",
		Region:      "us-east-1",
		Bucket:      "backups",
	})
	require.NoError(t, err)
	return st, &calls
}

func page(key string, next string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		token := ""
		if next != "" {
			token = fmt.Sprintf("<NextContinuationToken>%s</NextContinuationToken>", next)
		}
		_, _ = fmt.Fprintf(w, listPage, next != "", token, key)
	}
}

func TestObjectStorage_List(t *testing.T) {
	st, calls := newBucketServer(t,
		page("2026-10-14/auth/users.json", "t1"),
		page("2026-10-14/firestore/races.ndjson", ""))

	keys, err := st.List(context.Background(), "2026-10-14/")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-10-14/auth/users.json", "2026-10-14/firestore/races.ndjson"}, keys)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestObjectStorage_List_StopsOnError(t *testing.T) {
	st, calls := newBucketServer(t, page("2026-10-14/auth/users.json", "t1"))

	_, err := st.List(context.Background(), "2026-10-14/")
	require.Error(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

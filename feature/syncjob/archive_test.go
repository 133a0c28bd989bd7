package syncjob

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"commerce-sync/core/reconcile"
	"commerce-sync/core/storage/mocks"
	"commerce-sync/core/store"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestArchive_Put(t *testing.T) {
	client := new(mocks.Client)
	archive := NewArchive(client, "bucket")
	run := &store.SyncRun{Base: store.Base{ID: "run-1"}, TenantID: "t-1", Status: store.RunCompleted}
	report := &reconcile.Report{Customers: 3, State: reconcile.StateCompleted}

	var uploaded []byte
	client.On("PutObject", mock.Anything, "bucket", "reports/t-1/run-1.json", mock.Anything, mock.Anything,
		minio.PutObjectOptions{ContentType: "application/json"}).
		Run(func(args mock.Arguments) {
			uploaded, _ = io.ReadAll(args.Get(3).(io.Reader))
		}).
		Return(minio.UploadInfo{}, nil)

	key, err := archive.Put(context.Background(), run, report)
	require.NoError(t, err)
	assert.Equal(t, "reports/t-1/run-1.json", key)

	var doc ArchivedReport
	require.NoError(t, json.Unmarshal(uploaded, &doc))
	assert.Equal(t, "run-1", doc.Run.ID)
	assert.Equal(t, 3, doc.Report.Customers)
}

func TestArchive_PutError(t *testing.T) {
	client := new(mocks.Client)
	archive := NewArchive(client, "bucket")
	client.On("PutObject", mock.Anything, "bucket", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("denied"))

	_, err := archive.Put(context.Background(), &store.SyncRun{Base: store.Base{ID: "r"}, TenantID: "t"}, &reconcile.Report{})
	assert.ErrorContains(t, err, "denied")
}

func TestArchive_Get(t *testing.T) {
	client := new(mocks.Client)
	archive := NewArchive(client, "bucket")
	body, err := json.Marshal(ArchivedReport{
		Run:    &store.SyncRun{Base: store.Base{ID: "run-1"}, TenantID: "t-1"},
		Report: &reconcile.Report{Orders: 7},
	})
	require.NoError(t, err)

	client.On("GetObject", mock.Anything, "bucket", "reports/t-1/run-1.json", mock.Anything).
		Return(io.NopCloser(bytes.NewReader(body)), nil)

	doc, err := archive.Get(context.Background(), "t-1", "run-1")
	require.NoError(t, err)
	assert.Equal(t, 7, doc.Report.Orders)
}

func TestArchive_Keys(t *testing.T) {
	client := new(mocks.Client)
	archive := NewArchive(client, "bucket")

	ch := make(chan minio.ObjectInfo, 3)
	ch <- minio.ObjectInfo{Key: "reports/t-1/run-1.json"}
	ch <- minio.ObjectInfo{Key: "reports/t-1/run-2.json"}
	ch <- minio.ObjectInfo{Key: "reports/t-1/notes.txt"}
	close(ch)
	client.On("ListObjects", mock.Anything, "bucket", minio.ListObjectsOptions{Prefix: "reports/t-1/", Recursive: true}).
		Return((<-chan minio.ObjectInfo)(ch))

	ids, err := archive.Keys(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"run-1", "run-2"}, ids)
}

func TestArchive_KeysError(t *testing.T) {
	client := new(mocks.Client)
	archive := NewArchive(client, "bucket")

	ch := make(chan minio.ObjectInfo, 1)
	ch <- minio.ObjectInfo{Err: errors.New("no bucket")}
	close(ch)
	client.On("ListObjects", mock.Anything, "bucket", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

	_, err := archive.Keys(context.Background(), "t-1")
	assert.ErrorContains(t, err, "no bucket")
}

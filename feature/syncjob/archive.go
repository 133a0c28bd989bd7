package syncjob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"commerce-sync/core/reconcile"
	"commerce-sync/core/storage"
	"commerce-sync/core/store"

	"github.com/minio/minio-go/v7"
)

// Archive stores finished sync reports as JSON objects under
// reports/<tenant>/<run>.json.
type Archive struct {
	client storage.Client
	bucket string
}

// ArchivedReport is the document written for each run.
type ArchivedReport struct {
	Run    *store.SyncRun    `json:"run"`
	Report *reconcile.Report `json:"report"`
}

// NewArchive creates an archive writing to bucket.
func NewArchive(client storage.Client, bucket string) *Archive {
	return &Archive{client: client, bucket: bucket}
}

func reportKey(tenantID, runID string) string {
	return path.Join("reports", tenantID, runID+".json")
}

// Put uploads the report of run and returns its object key.
func (a *Archive) Put(ctx context.Context, run *store.SyncRun, report *reconcile.Report) (string, error) {
	body, err := json.Marshal(ArchivedReport{Run: run, Report: report})
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	key := reportKey(run.TenantID, run.ID)
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report %s: %w", key, err)
	}
	return key, nil
}

// Get downloads the archived report of a run.
func (a *Archive) Get(ctx context.Context, tenantID, runID string) (*ArchivedReport, error) {
	key := reportKey(tenantID, runID)
	obj, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch report %s: %w", key, err)
	}
	defer obj.Close()

	body, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read report %s: %w", key, err)
	}

	var out ArchivedReport
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", key, err)
	}
	return &out, nil
}

// Keys lists the run ids with an archived report for the tenant.
func (a *Archive) Keys(ctx context.Context, tenantID string) ([]string, error) {
	prefix := path.Join("reports", tenantID) + "/"
	var ids []string
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list reports: %w", obj.Err)
		}
		name := strings.TrimPrefix(obj.Key, prefix)
		if id, ok := strings.CutSuffix(name, ".json"); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

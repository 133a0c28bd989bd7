// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client (S3 compatible) behind the Client interface so the
// sync report archive can be exercised with the testify mock in core/storage/mocks.
//
// # Operations
//
//   - BucketExists / MakeBucket: used by EnsureBucket at startup.
//   - PutObject: uploads an archived sync report.
//   - GetObject: reads an archived report back.
//   - ListObjects: enumerates the reports of a tenant.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage

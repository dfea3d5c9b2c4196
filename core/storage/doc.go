// Package storage provides an abstraction layer for the blob store holding pin photos.
//
// It wraps the MinIO Go client, so the same code talks to AWS S3 or a
// self-hosted MinIO instance. The Client interface is deliberately narrow and
// has a testify mock in core/storage/mocks.
//
// # Operations
//
//   - BucketExists / MakeBucket: deployment integrity checks.
//   - PutObject: photo upload on pin submission (images/<uuid>.jpg).
//   - RemoveObject: rollback of an upload whose pin record could not be written.
//   - ListObjects: folder presence checks.
//   - PresignedGetObject: short-lived download URLs handed to map clients.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	exists, err := client.BucketExists(ctx, cfg.Storage.Bucket)
package storage

// Package s3 provides an S3 implementation of the artifact.Store interface
// and a DynamoDB-backed registry of completed runs.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "pathgo/")
//
//	registry := s3.NewRunRegistry(dynamodb.NewFromConfig(cfg), "pathgo-runs")
//
// # Features
//
//   - Managed multipart uploads for large replay logs
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
//   - Conditional registry writes so each run commits exactly once
package s3

// Package artifact provides storage for run artifacts (reports, geometry,
// replay logs).
//
// Store is the interface for writing and reading artifacts under
// slash-separated relative names. Implementations must be safe for
// concurrent use.
//
// # Built-in Implementations
//
//   - Local: plain files with atomic rename on commit
//   - Memory: in-memory store for tests and ephemeral runs
//   - s3.Store: Amazon S3 with managed parallel uploads
//   - minio.Store: MinIO and other S3-compatible storage
//
// # Custom Implementations
//
// Implement the Store interface to support custom backends:
//
//	type Store interface {
//	    Put(ctx, name, data) error          // Atomic write
//	    Open(ctx, name) (io.ReadCloser, error)
//	    List(ctx, prefix) ([]string, error)
//	    Delete(ctx, name) error
//	}
//
// Stores that can stream large artifacts additionally implement
// StreamWriter:
//
//	type StreamWriter interface {
//	    Create(ctx, name) (io.WriteCloser, error)
//	}
package artifact

// Package storage provides the object storage abstraction the pipeline reads
// manifests and images from and writes batch dumps to.
//
// # Backends
//
//   - storage/local: local filesystem rooted at a base path
//   - storage/s3: Amazon S3 and S3-compatible storage
//   - storage/memory: in-process map, used by tests and dry runs
//
// Backends register themselves with RegisterFactory from an init function;
// import the ones the binary needs for side effects.
//
// # Configuration
//
//	storage:
//	  enabled: true
//	  provider: "s3"
//	s3:
//	  bucket: "datasets"
//	  region: "us-east-1"
package storage

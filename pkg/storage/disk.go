// Package storage holds product and store images on a pluggable object
// store. Two drivers ship with the app:
//
//   - "local" — files under STORAGE_LOCAL_ROOT, served at STORAGE_URL
//   - "s3"    — any S3-compatible bucket (AWS, MinIO, R2, Spaces)
//
// The active driver is chosen by STORAGE_DISK at boot.
package storage

import "io"

// Disk is the surface the app needs from an object store: write an
// object, read it back, drop it, and produce its public URL.
type Disk interface {
	// Put writes the object at key, replacing any previous content.
	Put(key string, r io.Reader) error
	// Get opens the object for reading. The caller closes it.
	Get(key string) (io.ReadCloser, error)
	// Exists reports whether an object is stored at key.
	Exists(key string) bool
	// Delete removes the object. Deleting a missing key is not an error.
	Delete(key string) error
	// URL returns the public URL the object is served from.
	URL(key string) string
}

package filestore

import "time"

// ObjectInfo describes an object after it was written.
type ObjectInfo struct {
	// Bucket and Key locate the object.
	Bucket string
	Key    string

	// Size is the byte size of the object.
	Size int64

	// ETag is the object's entity tag, as returned by the backend.
	ETag string

	// LastModified is when the object was written. Zero if the backend
	// does not report it on upload.
	LastModified time.Time
}

// PutOptions controls how PutObject stores an object.
type PutOptions struct {
	// ContentType is the MIME type stored with the object.
	// Empty means "application/octet-stream".
	ContentType string
}

package domain

import "time"

// StoredFile describes a blob in the storage bucket.
type StoredFile struct {
	ID          string
	BucketID    string
	Name        string
	ContentType string
	SizeBytes   int64
	CreatedAt   time.Time
}

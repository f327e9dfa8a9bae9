package entities

import (
	"io"
	"time"
)

// Upload is an incoming file awaiting validation and storage.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// BlobInfo describes a stored blob.
type BlobInfo struct {
	Key     string
	Size    int64
	ModTime time.Time
}

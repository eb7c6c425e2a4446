package prune

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"
)

const (
	jsonLinesContentType = "application/x-ndjson"
)

// Bucket defines the blob operations the archive needs.
type Bucket interface {
	NewWriter(ctx context.Context, key string, opts *blob.WriterOptions) (Writer, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// Writer defines the interface for writing to cloud storage objects. Data is committed on Close.
type Writer interface {
	io.WriteCloser
}

type blobBucket struct {
	*blob.Bucket
}

func (b *blobBucket) NewWriter(ctx context.Context, key string, opts *blob.WriterOptions) (Writer, error) {
	return b.Bucket.NewWriter(ctx, key, opts)
}

// NewBlobBucket creates a new Bucket using "gocloud.dev/blob".
func NewBlobBucket(bucket *blob.Bucket) Bucket {
	return &blobBucket{bucket}
}

// ArchiveWriter appends JSON lines to numbered parts of an archive object, e.g. audit_0001.jsonl. A part
// is committed when it reaches maxSize or on Commit; parts that already exist are never overwritten.
type ArchiveWriter struct {
	bucket   Bucket
	baseName string
	ext      string
	maxSize  int64
	part     int
	partSize int64
	mu       sync.Mutex
	writer   Writer
	keys     []string
}

// NewArchiveWriter creates the writer; nothing is written to the bucket before the first line
func NewArchiveWriter(bucket Bucket, objectName string, maxSize int64) *ArchiveWriter {
	ext := filepath.Ext(objectName)
	return &ArchiveWriter{bucket: bucket, baseName: objectName[:len(objectName)-len(ext)], ext: ext, maxSize: maxSize}
}

// WriteLine writes one line to the current part, opening a new part when none is open
func (aw *ArchiveWriter) WriteLine(ctx context.Context, line []byte) (int, error) {
	aw.mu.Lock()
	defer aw.mu.Unlock()

	if aw.writer == nil {
		if err := aw.openNextPart(ctx); err != nil {
			return 0, err
		}
	}
	n, err := aw.writer.Write(line)
	if err != nil {
		return n, fmt.Errorf("failed to write to object: %w", err)
	}
	aw.partSize += int64(n)
	if aw.maxSize > 0 && aw.partSize >= aw.maxSize {
		return n, aw.commit()
	}
	return n, nil
}

// Commit closes the current part so everything written so far is durable
func (aw *ArchiveWriter) Commit() error {
	aw.mu.Lock()
	defer aw.mu.Unlock()
	return aw.commit()
}

// Keys lists the object keys of every part opened by this writer
func (aw *ArchiveWriter) Keys() []string {
	aw.mu.Lock()
	defer aw.mu.Unlock()
	return append([]string{}, aw.keys...)
}

// Close commits the current part
func (aw *ArchiveWriter) Close() error {
	return aw.Commit()
}

func (aw *ArchiveWriter) commit() error {
	if aw.writer == nil {
		return nil
	}
	writer := aw.writer
	aw.writer = nil
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to commit object: %w", err)
	}
	return nil
}

func (aw *ArchiveWriter) openNextPart(ctx context.Context) error {
	for {
		aw.part++
		key := fmt.Sprintf("%s_%04d%s", aw.baseName, aw.part, aw.ext)
		exists, err := aw.bucket.Exists(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to check if object exists: %w", err)
		}
		if exists {
			continue
		}
		writer, err := aw.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: jsonLinesContentType})
		if err != nil {
			return fmt.Errorf("failed to create writer: %w", err)
		}
		aw.writer = writer
		aw.partSize = 0
		aw.keys = append(aw.keys, key)
		return nil
	}
}

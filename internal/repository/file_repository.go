package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/devsanbid/bravo-test-sub001/internal/domain"
)

var (
	// ErrFileNotFound is returned when the bucket has no file with the given id.
	ErrFileNotFound = errors.New("file not found")
	// ErrFileTooLarge is returned when an upload exceeds the configured limit.
	ErrFileTooLarge = errors.New("file too large")
)

const originalNameKey = "original-filename"

// FileUpload is an incoming blob.
type FileUpload struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// FileStore is the object storage of the backend.
type FileStore interface {
	Put(ctx context.Context, upload FileUpload) (*domain.StoredFile, error)
	Open(ctx context.Context, id string) (*domain.StoredFile, io.ReadCloser, error)
	Delete(ctx context.Context, id string) error
	ViewURL(id string) string
}

type s3FileRepository struct {
	client  *s3.Client
	bucket  string
	prefix  string
	baseURL string
	maxSize int64
}

// NewS3FileRepository stores files in an S3 bucket under prefix. View URLs point at the
// service's own storage route below baseURL.
func NewS3FileRepository(client *s3.Client, bucket, prefix, baseURL string, maxSize int64) FileStore {
	if prefix != "" && prefix[len(prefix)-1] != '/' {
		prefix += "/"
	}
	return &s3FileRepository{client: client, bucket: bucket, prefix: prefix, baseURL: baseURL, maxSize: maxSize}
}

func (r *s3FileRepository) key(id string) *string {
	return aws.String(r.prefix + id)
}

func (r *s3FileRepository) Put(ctx context.Context, upload FileUpload) (*domain.StoredFile, error) {
	var buf bytes.Buffer
	body := upload.Body
	if r.maxSize > 0 {
		body = io.LimitReader(body, r.maxSize+1)
	}
	n, err := io.Copy(&buf, body)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if r.maxSize > 0 && n > r.maxSize {
		return nil, ErrFileTooLarge
	}

	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	id := uuid.NewString()

	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         r.key(id),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			originalNameKey: upload.Name,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("s3 put: %w", err)
	}

	return &domain.StoredFile{
		ID:          id,
		BucketID:    r.bucket,
		Name:        upload.Name,
		ContentType: contentType,
		SizeBytes:   n,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func (r *s3FileRepository) Open(ctx context.Context, id string) (*domain.StoredFile, io.ReadCloser, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    r.key(id),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, err
	}

	file := &domain.StoredFile{
		ID:          id,
		BucketID:    r.bucket,
		Name:        out.Metadata[originalNameKey],
		ContentType: aws.ToString(out.ContentType),
		SizeBytes:   aws.ToInt64(out.ContentLength),
		CreatedAt:   aws.ToTime(out.LastModified),
	}
	if file.Name == "" {
		file.Name = id
	}
	return file, out.Body, nil
}

// Delete removes the object. S3 deletes are idempotent, so existence is checked first to
// report ErrFileNotFound for unknown ids.
func (r *s3FileRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    r.key(id),
	})
	if err != nil {
		var missing *types.NotFound
		if errors.As(err, &missing) {
			return ErrFileNotFound
		}
		return err
	}

	_, err = r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    r.key(id),
	})
	return err
}

func (r *s3FileRepository) ViewURL(id string) string {
	return ViewURL(r.baseURL, r.bucket, id)
}

// ViewURL builds the public view link of a stored file.
func ViewURL(baseURL, bucket, id string) string {
	return fmt.Sprintf("%s/api/storage/%s/files/%s/view", baseURL, url.PathEscape(bucket), url.PathEscape(id))
}

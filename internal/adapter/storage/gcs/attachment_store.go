package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

const (
	uriScheme     = "gs://"
	publicBaseURL = "https://storage.googleapis.com"
	uploadTimeout = 2 * time.Minute
)

// AttachmentStore implements usecase.AttachmentStore on a Cloud Storage
// bucket. Objects are addressed by gs://bucket/object URIs.
type AttachmentStore struct {
	client *storage.Client
	bucket string
}

// NewAttachmentStore creates a store writing to bucket.
func NewAttachmentStore(client *storage.Client, bucket string) *AttachmentStore {
	return &AttachmentStore{client: client, bucket: bucket}
}

// Put uploads body under key and returns its gs:// URI.
func (s *AttachmentStore) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("copy attachment to GCS writer: %w", err)
	}

	// Close finalizes the upload.
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize attachment upload: %w", err)
	}

	return BuildURI(s.bucket, key), nil
}

// Delete removes the object behind uri. A missing object is not an error.
func (s *AttachmentStore) Delete(ctx context.Context, uri string) error {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return err
	}

	err = s.client.Bucket(bucket).Object(object).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete attachment %s: %w", uri, err)
	}

	return nil
}

// URL returns the public HTTPS URL of uri, or "" when uri is not a gs://
// URI.
func (s *AttachmentStore) URL(uri string) string {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return ""
	}

	segments := strings.Split(object, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}

	return publicBaseURL + "/" + bucket + "/" + strings.Join(segments, "/")
}

// BuildURI formats a gs:// URI.
func BuildURI(bucket, object string) string {
	return uriScheme + bucket + "/" + object
}

// ParseURI splits gs://bucket/object into its parts.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, uriScheme) {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}

	parts := strings.SplitN(strings.TrimPrefix(uri, uriScheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}

	return parts[0], parts[1], nil
}

package invoices

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/bellacucina/platform/pkg/logging"
)

// S3API is the subset of the S3 client used by ArchiveStore.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ArchiveStore writes issued invoices to S3 for bookkeeping retention.
type ArchiveStore struct {
	bucket   string
	s3Client S3API
	logger   *logging.Logger
}

// NewArchiveStore creates an ArchiveStore. If bucket is empty, all operations
// are no-ops.
func NewArchiveStore(s3Client S3API, bucket string, logger *logging.Logger) *ArchiveStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &ArchiveStore{bucket: bucket, s3Client: s3Client, logger: logger}
}

// Enabled returns true if archival is configured.
func (s *ArchiveStore) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

// ArchiveInvoice writes an issued invoice as JSON under its issue year.
func (s *ArchiveStore) ArchiveInvoice(ctx context.Context, inv *Invoice) error {
	if !s.Enabled() {
		return nil
	}
	if inv.Number == "" || inv.IssuedAt == nil {
		return fmt.Errorf("invoices: cannot archive unissued invoice %s", inv.ID)
	}

	data, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("invoices: marshal for archive: %w", err)
	}

	key := fmt.Sprintf("invoices/v1/%d/%s.json", inv.IssuedAt.Year(), inv.Number)
	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("invoices: s3 put %s: %w", key, err)
	}

	s.logger.Info("archived invoice",
		"invoice_id", inv.ID, "number", inv.Number, "s3_key", key)
	return nil
}

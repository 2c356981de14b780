package transfer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/fivetwenty-io/imodels-client/internal/constants"
	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

// S3Client captures the subset of the AWS SDK client used by S3Transfer.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Transfer moves files to and from s3://bucket/key locations, used by
// deployments whose file storage is S3 compatible.
type S3Transfer struct {
	client S3Client
}

// NewS3Transfer creates a transfer backed by client.
func NewS3Transfer(client S3Client) *S3Transfer {
	return &S3Transfer{client: client}
}

// ParseS3URL splits an s3://bucket/key URL.
func ParseS3URL(rawURL string) (string, string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("parsing storage URL: %w", err)
	}

	key := strings.TrimPrefix(parsed.Path, "/")
	if parsed.Scheme != "s3" || parsed.Host == "" || key == "" {
		return "", "", fmt.Errorf("%w: %s", constants.ErrUnsupportedStorageURL, rawURL)
	}

	return parsed.Host, key, nil
}

// Download implements imodels.ContentTransfer.
func (t *S3Transfer) Download(ctx context.Context, input imodels.DownloadInput) error {
	bucket, key, err := ParseS3URL(input.URL)
	if err != nil {
		return err
	}

	out, err := t.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NoSuchKey
		if errors.As(err, &notFound) {
			return fmt.Errorf("%w: object %s not found", constants.ErrTransferFailed, input.URL)
		}

		return downloadError(ctx, fmt.Errorf("getting object: %w", err))
	}

	defer func() {
		_ = out.Body.Close()
	}()

	err = writeFile(ctx, input.TargetPath, out.Body, aws.ToInt64(out.ContentLength), input.OnProgress)
	if err != nil {
		return downloadError(ctx, err)
	}

	return nil
}

// Upload implements imodels.ContentTransfer.
func (t *S3Transfer) Upload(ctx context.Context, input imodels.UploadInput) error {
	bucket, key, err := ParseS3URL(input.URL)
	if err != nil {
		return err
	}

	file, err := os.Open(input.SourcePath) //nolint:gosec // G304: path comes from the caller
	if err != nil {
		return fmt.Errorf("opening upload source: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("reading upload source: %w", err)
	}

	_, err = t.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          newProgressReader(ctx, file, info.Size(), input.OnProgress),
		ContentLength: aws.Int64(info.Size()),
	})
	if err != nil {
		return uploadError(ctx, fmt.Errorf("putting object: %w", err))
	}

	return nil
}

var _ imodels.ContentTransfer = (*S3Transfer)(nil)

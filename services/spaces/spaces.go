// Package spaces stores audit archives in S3-compatible object storage
// (DigitalOcean Spaces in production).
package spaces

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// AuditPrefix is the key prefix under which audit archives are written
const AuditPrefix = "audit-archive"

// SpacesClient handles object storage operations
type SpacesClient struct {
	s3Client *s3.S3
	bucket   string
	endpoint string
}

// SpacesConfig holds configuration for Spaces client
type SpacesConfig struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string
	// PathStyle addresses the bucket in the path, needed by most S3 emulators
	PathStyle bool
}

// NewSpacesClient creates a new Spaces client
func NewSpacesClient(config SpacesConfig) (*SpacesClient, error) {
	if config.Bucket == "" || config.Region == "" {
		return nil, fmt.Errorf("bucket and region must be configured")
	}
	if config.Endpoint == "" {
		config.Endpoint = fmt.Sprintf("https://%s.digitaloceanspaces.com", config.Region)
	}

	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		),
		Endpoint:         aws.String(config.Endpoint),
		Region:           aws.String(config.Region),
		S3ForcePathStyle: aws.Bool(config.PathStyle),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Spaces session: %w", err)
	}

	return &SpacesClient{
		s3Client: s3.New(sess),
		bucket:   config.Bucket,
		endpoint: config.Endpoint,
	}, nil
}

// UploadBytes stores data under key as a private object
func (s *SpacesClient) UploadBytes(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ACL:         aws.String(s3.ObjectCannedACLPrivate),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// ArchiveAudit uploads an audit CSV and returns its location
func (s *SpacesClient) ArchiveAudit(ctx context.Context, name string, body []byte) (string, error) {
	key := path.Join(AuditPrefix, name)
	if err := s.UploadBytes(ctx, key, body, "text/csv; charset=utf-8"); err != nil {
		return "", err
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

// DownloadArchive fetches one archived audit CSV by file name
func (s *SpacesClient) DownloadArchive(ctx context.Context, name string) ([]byte, error) {
	key := path.Join(AuditPrefix, path.Base(name))
	result, err := s.s3Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", key, err)
	}
	defer result.Body.Close()

	return io.ReadAll(result.Body)
}

// ListArchives lists the stored audit archives, oldest first
func (s *SpacesClient) ListArchives(ctx context.Context) ([]string, error) {
	var keys []string
	err := s.s3Client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(AuditPrefix + "/"),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			keys = append(keys, strings.TrimPrefix(aws.StringValue(obj.Key), AuditPrefix+"/"))
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list archives: %w", err)
	}
	return keys, nil
}

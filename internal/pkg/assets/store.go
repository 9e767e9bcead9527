package assets

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/PageTurnApp/PageTurn/app/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Store wraps the S3 client for book asset delivery. Purchased downloads get
// short-lived presigned GET URLs; admins get presigned PUT URLs to upload
// new asset files without the file bytes passing through this service.
type Store struct {
	s3Client      *s3.Client
	presignClient *s3.PresignClient
	config        *Config
}

// NewStore creates a new asset store client
func NewStore(cfg *Config) (*Store, error) {
	if !cfg.IsEnabled() {
		return nil, fmt.Errorf("S3 asset store is disabled")
	}

	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			// S3-compatible services need path-style URLs
			o.UsePathStyle = true
			o.UseAccelerate = false
		}
	})

	return &Store{
		s3Client:      s3Client,
		presignClient: s3.NewPresignClient(s3Client),
		config:        cfg,
	}, nil
}

// ObjectKey generates a standardized object key for an uploaded asset file.
func (s *Store) ObjectKey(fileName string) string {
	now := time.Now()
	return fmt.Sprintf("assets/%04d/%02d/%s%s", now.Year(), int(now.Month()), uuid.NewString(), path.Ext(fileName))
}

// DownloadURL returns a presigned GET URL for a stored asset. External
// asset URLs never reach this method; callers hand those out directly.
func (s *Store) DownloadURL(ctx context.Context, asset *models.BookAsset) (string, error) {
	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.BucketName),
		Key:    aws.String(asset.AssetURL),
	}, s3.WithPresignExpires(s.config.URLExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign download for %s: %w", asset.AssetURL, err)
	}
	return req.URL, nil
}

// UploadURL returns a presigned PUT URL plus the object key the upload will
// land under.
func (s *Store) UploadURL(ctx context.Context, fileName, contentType string) (string, string, error) {
	key := s.ObjectKey(fileName)
	req, err := s.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.BucketName),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.config.URLExpiry))
	if err != nil {
		return "", "", fmt.Errorf("failed to presign upload for %s: %w", fileName, err)
	}
	return req.URL, key, nil
}

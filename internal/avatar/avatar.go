// Package avatar stores profile pictures in an S3 compatible object store.
package avatar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dashstarter/dashstarter/internal/config"
)

// MaxUploadSize limits avatar uploads to 2 MiB.
const MaxUploadSize = 2 << 20

// ErrUnsupportedType is returned for uploads that are not a known image type.
var ErrUnsupportedType = errors.New("unsupported image type")

// contentTypes maps allowed file extensions to their content type.
var contentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Store uploads and removes avatar objects.
type Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewStore creates a new avatar store from the avatar config section.
func NewStore(cfg config.Avatar) (*Store, error) {
	ctx := context.Background()

	var (
		awsConfig aws.Config
		err       error
	)

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		// static credentials, used with MinIO or explicit AWS keys
		awsConfig, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			)),
		)
	} else {
		// default credential chain (IAM roles, env vars)
		awsConfig, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
		)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}

		if cfg.UsePathStyle {
			o.UsePathStyle = true
		}
	})

	return &Store{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

// Upload stores an avatar for the profile and returns its public URL.
// The key embeds an upload timestamp so a new avatar never collides with a
// cached copy of the previous one.
func (s *Store) Upload(ctx context.Context, profileID, filename string, content io.Reader) (string, error) {
	ext := strings.ToLower(path.Ext(filename))

	contentType, ok := contentTypes[ext]
	if !ok {
		return "", ErrUnsupportedType
	}

	data, err := io.ReadAll(io.LimitReader(content, MaxUploadSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	if len(data) > MaxUploadSize {
		return "", fmt.Errorf("upload exceeds %d bytes", MaxUploadSize)
	}

	key := fmt.Sprintf("%s/%d%s", profileID, time.Now().Unix(), ext)

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	return s.publicBaseURL + "/" + key, nil
}

// Remove deletes the avatar object behind a public URL. Unknown URLs are
// ignored so a profile pointing at an external image can still be cleared.
func (s *Store) Remove(ctx context.Context, avatarURL string) error {
	prefix := s.publicBaseURL + "/"
	if !strings.HasPrefix(avatarURL, prefix) {
		return nil
	}

	key := strings.TrimPrefix(avatarURL, prefix)

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete avatar: %w", err)
	}

	return nil
}

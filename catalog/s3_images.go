package catalog

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/user/storefront-go/config"
)

const s3KeyPrefix = "products/"

// s3API is the part of *s3.Client the image store uses.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3ImageStore keeps product images in an S3-compatible bucket.
type S3ImageStore struct {
	client    s3API
	bucket    string
	publicURL string
}

// NewS3ImageStore builds a client from static credentials. An Endpoint
// (e.g. MinIO) switches the client to path-style addressing.
func NewS3ImageStore(ctx context.Context, cfg *config.S3Config) (*S3ImageStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3ImageStore(client, cfg.Bucket, cfg.PublicURL), nil
}

func newS3ImageStore(client s3API, bucket, publicURL string) *S3ImageStore {
	return &S3ImageStore{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

func (s *S3ImageStore) Save(ctx context.Context, img ImageUpload) (string, error) {
	ct, ext, err := img.contentType()
	if err != nil {
		return "", err
	}
	key := s3KeyPrefix + newImageName(ext)

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(img.Data),
		ContentType:   aws.String(ct),
		ContentLength: aws.Int64(int64(len(img.Data))),
	})
	if err != nil {
		return "", fmt.Errorf("put image: %w", err)
	}
	return s.publicURL + "/" + key, nil
}

func (s *S3ImageStore) Remove(ctx context.Context, url string) error {
	prefix := s.publicURL + "/" + s3KeyPrefix
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	key := strings.TrimPrefix(url, s.publicURL+"/")

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

// Package backup copies every bucket of the farm store to S3 and back.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/mamadbah2/lirio/internal/config"
	"github.com/mamadbah2/lirio/internal/storage"
)

// Prefix is the object key prefix of every snapshot.
const Prefix = "snapshots/"

const keyLayout = "20060102T150405Z"

// ErrEmptySnapshot is returned by Restore when the object holds no buckets.
var ErrEmptySnapshot = errors.New("snapshot holds no buckets")

// ObjectAPI is the part of the S3 client the backups use.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Document is the JSON body of a snapshot object.
type Document struct {
	CreatedAt time.Time        `json:"created_at"`
	Buckets   storage.Snapshot `json:"buckets"`
}

// Service writes and restores snapshots of store.
type Service struct {
	store  *storage.Store
	client ObjectAPI
	bucket string
	now    func() time.Time
	logger *zap.Logger
}

// NewService wires a backup service over an existing S3 client.
func NewService(store *storage.Store, client ObjectAPI, bucket string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, client: client, bucket: bucket, now: time.Now, logger: logger}
}

// NewS3Client builds an S3 client from cfg. A custom endpoint (MinIO and
// friends) usually needs path-style addressing.
func NewS3Client(ctx context.Context, cfg config.BackupConfig) (*s3.Client, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// Backup uploads the current contents of every bucket and returns the object key.
func (s *Service) Backup(ctx context.Context) (string, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("snapshot store: %w", err)
	}

	now := s.now().UTC()
	body, err := json.Marshal(Document{CreatedAt: now, Buckets: snap})
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	key := Prefix + now.Format(keyLayout) + ".json"
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	s.logger.Info("backup uploaded", zap.String("key", key), zap.Int("buckets", len(snap)), zap.Int("bytes", len(body)))
	return key, nil
}

// Restore overwrites the store with the buckets saved under key. Buckets
// missing from the snapshot are left untouched.
func (s *Service) Restore(ctx context.Context, key string) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("download %s: %w", key, err)
	}
	defer func() { _ = out.Body.Close() }()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	if len(doc.Buckets) == 0 {
		return ErrEmptySnapshot
	}

	if err := s.store.Restore(ctx, doc.Buckets); err != nil {
		return err
	}
	s.logger.Info("backup restored", zap.String("key", key), zap.Time("created_at", doc.CreatedAt), zap.Int("buckets", len(doc.Buckets)))
	return nil
}

// List returns the snapshot keys, newest first.
func (s *Service) List(ctx context.Context) ([]string, error) {
	var (
		keys  []string
		token *string
	)
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(Prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		for _, obj := range out.Contents {
			if key := aws.ToString(obj.Key); strings.HasSuffix(key, ".json") {
				keys = append(keys, key)
			}
		}
		if aws.ToBool(out.IsTruncated) && out.NextContinuationToken != nil {
			token = out.NextContinuationToken
			continue
		}
		break
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys, nil
}

// Latest returns the newest snapshot key; ok is false when there is none.
func (s *Service) Latest(ctx context.Context) (string, bool, error) {
	keys, err := s.List(ctx)
	if err != nil || len(keys) == 0 {
		return "", false, err
	}
	return keys[0], true, nil
}

package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/lumen-atj/lumen/backend/pkg/analysis"
	"github.com/lumen-atj/lumen/backend/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type S3Params struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

func NewS3Client(ctx context.Context, params S3Params) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(params.Region),
	}
	if params.Endpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(params.Endpoint))
	}
	if params.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			params.AccessKey,
			params.SecretKey,
			"",
		)))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return client, nil
}

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// S3Quarantine writes rejected generator output to a bucket as one JSON
// object per rejection, under <prefix>/<yyyy>/<mm>/<dd>/<id>.json.
type S3Quarantine struct {
	client s3API
	bucket string
	prefix string
	now    func() time.Time
}

func NewS3Quarantine(client s3API, bucket, prefix string) *S3Quarantine {
	if prefix == "" {
		prefix = "quarantine"
	}
	return &S3Quarantine{
		client: client,
		bucket: bucket,
		prefix: prefix,
		now:    time.Now,
	}
}

func (q *S3Quarantine) Store(ctx context.Context, r analysis.Rejected) error {
	id, err := gonanoid.New()
	if err != nil {
		return err
	}
	at := r.At
	if at.IsZero() {
		at = q.now().UTC()
	}

	body, err := json.Marshal(r)
	if err != nil {
		return err
	}

	key := path.Join(q.prefix, at.Format("2006/01/02"), id+".json")
	_, err = q.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(q.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload rejected output to S3: %w", err)
	}

	logger.Debug("[Quarantine] Stored rejected output", "key", key, "reason", r.Reason)
	return nil
}

// Purge deletes quarantined objects last modified before cutoff and returns
// how many were removed.
func (q *S3Quarantine) Purge(ctx context.Context, cutoff time.Time) (int, error) {
	listInput := &s3.ListObjectsV2Input{
		Bucket: aws.String(q.bucket),
		Prefix: aws.String(q.prefix + "/"),
	}

	deleted := 0
	for {
		listOutput, err := q.client.ListObjectsV2(ctx, listInput)
		if err != nil {
			return deleted, fmt.Errorf("failed to list quarantined objects: %w", err)
		}

		var objectsToDelete []types.ObjectIdentifier
		for _, obj := range listOutput.Contents {
			if obj.LastModified != nil && obj.LastModified.Before(cutoff) {
				objectsToDelete = append(objectsToDelete, types.ObjectIdentifier{Key: obj.Key})
			}
		}

		if len(objectsToDelete) > 0 {
			_, err = q.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
				Bucket: aws.String(q.bucket),
				Delete: &types.Delete{
					Objects: objectsToDelete,
					Quiet:   aws.Bool(true),
				},
			})
			if err != nil {
				return deleted, fmt.Errorf("failed to delete quarantined objects: %w", err)
			}
			deleted += len(objectsToDelete)
		}

		if listOutput.IsTruncated != nil && *listOutput.IsTruncated {
			listInput.ContinuationToken = listOutput.NextContinuationToken
		} else {
			break
		}
	}

	return deleted, nil
}

// RunRetention purges objects older than maxAge every interval until ctx is
// done.
func (q *S3Quarantine) RunRetention(ctx context.Context, maxAge, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := q.Purge(ctx, q.now().Add(-maxAge))
			if err != nil {
				logger.Warn("[Quarantine] Retention sweep failed", "err", err)
				continue
			}
			if n > 0 {
				logger.Info("[Quarantine] Purged expired objects", "count", n)
			}
		}
	}
}

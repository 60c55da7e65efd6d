package storage

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/lumen-atj/lumen/backend/pkg/analysis"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	bodies  []string
	pages   []*s3.ListObjectsV2Output
	listed  int
	deleted [][]types.ObjectIdentifier
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, string(b))
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, _ *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := f.pages[f.listed]
	f.listed++
	return out, nil
}

func (f *fakeS3) DeleteObjects(_ context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	f.deleted = append(f.deleted, in.Delete.Objects)
	return &s3.DeleteObjectsOutput{}, nil
}

func TestS3Quarantine_Store(t *testing.T) {
	fake := &fakeS3{}
	q := NewS3Quarantine(fake, "rejects", "")

	at := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	err := q.Store(context.Background(), analysis.Rejected{
		Raw:     "not json",
		Reason:  "AI JSON parse failed",
		Adapter: "openai/gpt",
		At:      at,
	})
	require.NoError(t, err)
	require.Len(t, fake.puts, 1)

	in := fake.puts[0]
	assert.Equal(t, "rejects", aws.ToString(in.Bucket))
	assert.True(t, strings.HasPrefix(aws.ToString(in.Key), "quarantine/2025/03/14/"))
	assert.True(t, strings.HasSuffix(aws.ToString(in.Key), ".json"))

	var got analysis.Rejected
	require.NoError(t, json.Unmarshal([]byte(fake.bodies[0]), &got))
	assert.Equal(t, "not json", got.Raw)
	assert.Equal(t, "openai/gpt", got.Adapter)
}

func TestS3Quarantine_PurgeOnlyOldObjects(t *testing.T) {
	now := time.Now()
	old := now.Add(-48 * time.Hour)
	fresh := now.Add(-time.Hour)

	fake := &fakeS3{pages: []*s3.ListObjectsV2Output{
		{
			Contents: []types.Object{
				{Key: aws.String("quarantine/a.json"), LastModified: &old},
				{Key: aws.String("quarantine/b.json"), LastModified: &fresh},
			},
			IsTruncated:           aws.Bool(true),
			NextContinuationToken: aws.String("next"),
		},
		{
			Contents: []types.Object{
				{Key: aws.String("quarantine/c.json"), LastModified: &old},
			},
		},
	}}
	q := NewS3Quarantine(fake, "rejects", "quarantine")

	n, err := q.Purge(context.Background(), now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, fake.listed)
	require.Len(t, fake.deleted, 2)
	assert.Equal(t, "quarantine/a.json", aws.ToString(fake.deleted[0][0].Key))
	assert.Equal(t, "quarantine/c.json", aws.ToString(fake.deleted[1][0].Key))
}

package media

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPresigner(t *testing.T, cfg S3Config) *Presigner {
	t.Helper()
	p, err := NewS3Presigner(context.Background(), cfg)
	require.NoError(t, err)
	p.now = func() time.Time { return time.Date(2025, 4, 9, 0, 0, 0, 0, time.UTC) }
	return p
}

func TestPresignCoverUpload_MinIO(t *testing.T) {
	p := newTestPresigner(t, S3Config{
		Bucket:    "covers",
		Region:    "us-east-1",
		Endpoint:  "http://localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
	})

	up, err := p.PresignCoverUpload(context.Background(), "image/png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(up.Key, "blog/covers/2025/04/"))
	assert.True(t, strings.HasSuffix(up.Key, ".png"))
	assert.True(t, strings.HasPrefix(up.UploadURL, "http://localhost:9000/covers/"+up.Key))
	assert.Contains(t, up.UploadURL, "X-Amz-Signature=")
	assert.Equal(t, "http://localhost:9000/covers/"+up.Key, up.PublicURL)
	assert.Equal(t, time.Date(2025, 4, 9, 0, 15, 0, 0, time.UTC), up.ExpiresAt)
}

func TestPresignCoverUpload_RejectsNonImages(t *testing.T) {
	p := newTestPresigner(t, S3Config{Bucket: "b", Region: "us-east-1", AccessKey: "k", SecretKey: "s"})

	_, err := p.PresignCoverUpload(context.Background(), "application/pdf")
	assert.ErrorIs(t, err, ErrUnsupportedContentType)
}

func TestPresignCoverUpload_PublicBaseURLAndFailure(t *testing.T) {
	p := newTestPresigner(t, S3Config{
		Bucket:        "b",
		Region:        "eu-west-1",
		AccessKey:     "k",
		SecretKey:     "s",
		PublicBaseURL: "https://cdn.example.com/",
	})
	assert.Equal(t, "https://cdn.example.com/x.png", p.publicURL("x.png"))

	p.cfg.PublicBaseURL = ""
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com/x.png", p.publicURL("x.png"))

	orig := presignPutObject
	t.Cleanup(func() { presignPutObject = orig })
	presignPutObject = func(*s3.PresignClient, context.Context, *s3.PutObjectInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("signer exploded")
	}

	_, err := p.PresignCoverUpload(context.Background(), "image/jpeg")
	assert.Error(t, err)
}

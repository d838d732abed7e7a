package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateContentType(t *testing.T) {
	for _, ct := range []string{"application/octet-stream", "text/plain", "application/x-touchstone"} {
		assert.NoError(t, ValidateContentType(ct), ct)
	}

	err := ValidateContentType("audio/wav")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid content type")
}

func TestNewS3Service_RequiresBucket(t *testing.T) {
	_, err := NewS3Service(S3Config{})
	assert.EqualError(t, err, "S3_BUCKET is required")
}

func TestNewS3Service_PresignsAgainstEndpoint(t *testing.T) {
	svc, err := NewS3Service(S3Config{
		Bucket:    "measurements",
		Endpoint:  "localhost:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	})
	require.NoError(t, err)

	url, err := svc.GenerateUploadURL(context.Background(), "uploads/dut.s2p", "text/plain")
	require.NoError(t, err)
	assert.Contains(t, url, "http://localhost:9000/measurements/uploads/dut.s2p")

	_, err = svc.GenerateUploadURL(context.Background(), "uploads/dut.s2p", "image/png")
	assert.Error(t, err)
}

func TestNewMinioService_RequiresEndpoint(t *testing.T) {
	_, err := NewMinioService(context.Background(), MinioConfig{Bucket: "measurements"})
	assert.EqualError(t, err, "S3_ENDPOINT is required for minio storage")
}

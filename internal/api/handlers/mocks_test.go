package handlers

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/RMahshie/sparam/internal/processing"
	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockS3Service implements storage.S3Service for testing
type MockS3Service struct {
	mock.Mock
}

func (m *MockS3Service) GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockS3Service) DownloadFile(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockS3Service) DeleteFile(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockProcessingService implements processing.ProcessingService for testing
type MockProcessingService struct {
	mock.Mock
}

func (m *MockProcessingService) Process(ctx context.Context, uploads []processing.Upload, opts processing.Options) (*processing.Report, error) {
	args := m.Called(ctx, uploads, opts)
	report, _ := args.Get(0).(*processing.Report)
	return report, args.Error(1)
}

type formFile struct {
	name string
	data []byte
}

// buildForm encodes files as a multipart form and parses it back
func buildForm(t *testing.T, files ...formFile) multipart.Form {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile(formField, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return *form
}

// touchstoneRI renders a RI-format two-port file, 10 MHz spacing from 100 MHz
func touchstoneRI(points int, gain float64) []byte {
	var b strings.Builder
	b.WriteString("# MHz S RI R 50\n")
	for i := 0; i < points; i++ {
		fmt.Fprintf(&b, "%d 0.1 0 %g 0 0.01 0 0.2 0\n", 100+i*10, gain)
	}
	return []byte(b.String())
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	se, ok := err.(huma.StatusError)
	require.True(t, ok, "expected a huma status error, got %T", err)
	return se.GetStatus()
}

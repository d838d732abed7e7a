package processing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/RMahshie/sparam/internal/metrics"
	"github.com/RMahshie/sparam/internal/sparams"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRecorder implements metrics.Recorder for testing
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RunFinished(outcome string, duration time.Duration) {
	m.Called(outcome, duration)
}

func (m *MockRecorder) FileProcessed(status string) {
	m.Called(status)
}

func (m *MockRecorder) FilesExcluded(n int) {
	m.Called(n)
}

func (m *MockRecorder) FrequencyMismatches(n int) {
	m.Called(n)
}

// failingUpload cannot be opened
type failingUpload struct{ name string }

func (f failingUpload) Name() string { return f.name }

func (f failingUpload) Open(context.Context) (io.ReadCloser, error) {
	return nil, errors.New("connection reset")
}

// touchstoneRI renders a RI-format two-port file with points starting at
// startMHz and 10 MHz spacing. S21 at point i is (gain, i/100).
func touchstoneRI(points int, startMHz, gain float64) []byte {
	var b strings.Builder
	b.WriteString("! generated\n# MHz S RI R 50\n")
	for i := 0; i < points; i++ {
		f := startMHz + float64(i)*10
		fmt.Fprintf(&b, "%g 0.1 0 %g %g 0.01 0 0.2 0\n", f, gain, float64(i)/100)
	}
	return []byte(b.String())
}

func measurement(name string, data []byte) Upload {
	return RawMeasurement{FileName: name, Data: data}
}

func newService(t *testing.T) (ProcessingService, string) {
	t.Helper()
	dir := t.TempDir()
	return NewProcessingService(dir, nil), dir
}

func TestProcess_ThreeMatchingFiles(t *testing.T) {
	svc, _ := newService(t)

	uploads := []Upload{
		measurement("A.s2p", touchstoneRI(101, 100, 0.5)),
		measurement("B.s2p", touchstoneRI(101, 100, 0.25)),
		measurement("C.s2p", touchstoneRI(101, 100, 0.125)),
	}

	report, err := svc.Process(context.Background(), uploads, Options{Parameter: "S21", Mode: "log-magnitude-dB"})
	require.NoError(t, err)
	require.NotNil(t, report.Table)

	assert.Equal(t, 101, report.Table.Rows())
	assert.Equal(t, []string{sparams.FrequencyColumn, "A_S21_dB", "B_S21_dB", "C_S21_dB"}, report.Table.Header())
	assert.Equal(t, "A.s2p", report.ReferenceFile)
	assert.Empty(t, report.Excluded)
	assert.Empty(t, report.Mismatches)
	assert.Empty(t, report.FileErrors)
	assert.Equal(t, 100e6, report.Table.Frequencies()[0])
}

func TestProcess_ExcludesFileWithDifferentPointCount(t *testing.T) {
	svc, _ := newService(t)

	uploads := []Upload{
		measurement("A.s2p", touchstoneRI(101, 100, 0.5)),
		measurement("B.s2p", touchstoneRI(101, 100, 0.25)),
		measurement("C.s2p", touchstoneRI(80, 100, 0.125)),
	}

	report, err := svc.Process(context.Background(), uploads, Options{Parameter: "S21", Mode: "log-magnitude-dB"})
	require.NoError(t, err)

	assert.Equal(t, []string{sparams.FrequencyColumn, "A_S21_dB", "B_S21_dB"}, report.Table.Header())
	assert.Equal(t, []string{"C.s2p"}, report.Excluded)
	assert.Equal(t, []sparams.FrequencyMismatch{{File: "C.s2p", Reference: "A.s2p"}}, report.Mismatches)
}

func TestProcess_ContentMismatchIsKeptWhenLengthMatches(t *testing.T) {
	svc, _ := newService(t)

	uploads := []Upload{
		measurement("ref.s2p", touchstoneRI(5, 100, 0.5)),
		measurement("shifted.s2p", touchstoneRI(5, 105, 0.5)),
	}

	report, err := svc.Process(context.Background(), uploads, Options{Parameter: "S21", Mode: "phase-deg"})
	require.NoError(t, err)

	assert.Equal(t, []string{sparams.FrequencyColumn, "ref_S21_deg", "shifted_S21_deg"}, report.Table.Header())
	assert.Len(t, report.Mismatches, 1)
	assert.Empty(t, report.Excluded)
}

func TestProcess_FirstSuccessfulFileDefinesReference(t *testing.T) {
	svc, _ := newService(t)

	uploads := []Upload{
		measurement("broken.s2p", []byte("# GHz S RI\n1 2 3\n")),
		measurement("second.s2p", touchstoneRI(4, 500, 0.5)),
		measurement("third.s2p", touchstoneRI(4, 100, 0.5)),
	}

	report, err := svc.Process(context.Background(), uploads, Options{Parameter: "S11", Mode: "dB"})
	require.NoError(t, err)

	assert.Equal(t, "second.s2p", report.ReferenceFile)
	assert.Equal(t, []float64{500e6, 510e6, 520e6, 530e6}, report.Table.Frequencies())
	require.Len(t, report.FileErrors, 1)

	var parseErr *sparams.ParseError
	require.True(t, errors.As(report.FileErrors[0], &parseErr))
	assert.Equal(t, "broken.s2p", parseErr.File)
}

func TestProcess_AllFilesFail(t *testing.T) {
	svc, _ := newService(t)

	uploads := []Upload{
		measurement("a.s2p", []byte("garbage")),
		measurement("b.s2p", nil),
		failingUpload{name: "c.s2p"},
	}

	report, err := svc.Process(context.Background(), uploads, Options{Parameter: "S21", Mode: "log-magnitude-dB"})

	var noData *sparams.NoDataError
	require.True(t, errors.As(err, &noData))
	assert.Len(t, noData.Failures, 3)
	assert.Nil(t, report.Table)
	assert.Len(t, report.FileErrors, 3)
	assert.Contains(t, err.Error(), "c.s2p")
}

func TestProcess_NoUploads(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Process(context.Background(), nil, Options{Parameter: "S21", Mode: "log-magnitude-dB"})
	var noData *sparams.NoDataError
	assert.True(t, errors.As(err, &noData))
}

func TestProcess_InvalidModeAbortsRun(t *testing.T) {
	svc, dir := newService(t)

	calls := 0
	report, err := svc.Process(context.Background(),
		[]Upload{measurement("a.s2p", touchstoneRI(3, 100, 0.5))},
		Options{Parameter: "S21", Mode: "linear", Progress: func(int, int, string) { calls++ }})

	var cfgErr *sparams.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "display mode", cfgErr.Field)
	assert.Nil(t, report.Table)
	assert.Zero(t, calls)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProcess_InvalidParameterFailsEachFile(t *testing.T) {
	svc, _ := newService(t)

	uploads := []Upload{
		measurement("a.s2p", touchstoneRI(3, 100, 0.5)),
		measurement("b.s2p", touchstoneRI(3, 100, 0.5)),
	}

	report, err := svc.Process(context.Background(), uploads, Options{Parameter: "S33", Mode: "phase-deg"})

	var noData *sparams.NoDataError
	require.True(t, errors.As(err, &noData))
	require.Len(t, report.FileErrors, 2)
	for _, fileErr := range report.FileErrors {
		var cfgErr *sparams.ConfigurationError
		assert.True(t, errors.As(fileErr, &cfgErr))
	}
}

func TestProcess_StoredDBValuesPassThrough(t *testing.T) {
	svc, _ := newService(t)

	doc := "# GHz S DB\n1 -1 0 -12.5 30 -40 0 -2 0\n2 -1 0 -13.25 35 -40 0 -2 0\n"
	report, err := svc.Process(context.Background(),
		[]Upload{measurement("amp.s2p", []byte(doc))},
		Options{Parameter: "S21", Mode: "log-magnitude-dB"})
	require.NoError(t, err)

	assert.Equal(t, []float64{-12.5, -13.25}, report.Table.Columns[1].Values)
}

func TestProcess_ScratchFilesAreRemoved(t *testing.T) {
	svc, dir := newService(t)

	uploads := []Upload{
		measurement("good.s2p", touchstoneRI(3, 100, 0.5)),
		measurement("bad.s2p", []byte("not touchstone")),
		failingUpload{name: "gone.s2p"},
		measurement("good2.s2p", touchstoneRI(3, 100, 0.5)),
	}

	var leftovers []int
	opts := Options{
		Parameter: "S21",
		Mode:      "log-magnitude-dB",
		Progress: func(done, total int, file string) {
			entries, _ := os.ReadDir(dir)
			leftovers = append(leftovers, len(entries))
		},
	}

	_, err := svc.Process(context.Background(), uploads, opts)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 0, 0, 0}, leftovers)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProcess_ProgressAfterEachFile(t *testing.T) {
	svc, _ := newService(t)

	uploads := []Upload{
		measurement("a.s2p", touchstoneRI(3, 100, 0.5)),
		measurement("b.s2p", []byte("bad")),
	}

	type call struct {
		done, total int
		file        string
	}
	var calls []call
	_, err := svc.Process(context.Background(), uploads, Options{
		Parameter: "S21",
		Mode:      "phase-deg",
		Progress:  func(done, total int, file string) { calls = append(calls, call{done, total, file}) },
	})
	require.NoError(t, err)

	assert.Equal(t, []call{{1, 2, "a.s2p"}, {2, 2, "b.s2p"}}, calls)
}

func TestProcess_Idempotent(t *testing.T) {
	svc, _ := newService(t)

	uploads := []Upload{
		measurement("x.s2p", touchstoneRI(20, 100, 0.7)),
		measurement("y.s2p", touchstoneRI(20, 100, 0.3)),
		measurement("z.s2p", touchstoneRI(7, 100, 0.3)),
	}
	opts := Options{Parameter: "S21", Mode: "phase-deg"}

	first, err := svc.Process(context.Background(), uploads, opts)
	require.NoError(t, err)
	second, err := svc.Process(context.Background(), uploads, opts)
	require.NoError(t, err)

	assert.Equal(t, first.Table, second.Table)
	assert.Equal(t, first.Excluded, second.Excluded)
}

func TestProcess_RecordsMetrics(t *testing.T) {
	rec := &MockRecorder{}
	rec.On("FileProcessed", metrics.FileOK).Return().Twice()
	rec.On("FileProcessed", metrics.FileParseError).Return().Once()
	rec.On("FrequencyMismatches", 1).Return().Once()
	rec.On("FilesExcluded", 1).Return().Once()
	rec.On("RunFinished", metrics.OutcomeSuccess, mock.AnythingOfType("time.Duration")).Return().Once()

	svc := NewProcessingService(t.TempDir(), rec)
	uploads := []Upload{
		measurement("a.s2p", touchstoneRI(5, 100, 0.5)),
		measurement("b.s2p", []byte("bad")),
		measurement("c.s2p", touchstoneRI(4, 100, 0.5)),
	}

	_, err := svc.Process(context.Background(), uploads, Options{Parameter: "S21", Mode: "dB"})
	require.NoError(t, err)

	rec.AssertExpectations(t)
}

package processing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/RMahshie/sparam/internal/metrics"
	"github.com/RMahshie/sparam/internal/sparams"
	"github.com/RMahshie/sparam/internal/touchstone"
	"github.com/rs/zerolog/log"
)

// ProgressFunc is called after each file with the number of files attempted so far.
type ProgressFunc func(done, total int, file string)

// Options configures one run.
type Options struct {
	Parameter string
	Mode      string
	Progress  ProgressFunc
}

// Report is everything a run found out. It is returned even when the run fails.
type Report struct {
	Parameter     sparams.Parameter
	Mode          sparams.DisplayMode
	Table         *sparams.Table
	ReferenceFile string
	FileErrors    []error
	Mismatches    []sparams.FrequencyMismatch
	Excluded      []string
}

type ProcessingService interface {
	Process(ctx context.Context, uploads []Upload, opts Options) (*Report, error)
}

type processingService struct {
	scratchDir string // "" means os.TempDir()
	metrics    metrics.Recorder
}

func NewProcessingService(scratchDir string, recorder metrics.Recorder) ProcessingService {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &processingService{
		scratchDir: scratchDir,
		metrics:    recorder,
	}
}

// Process runs the uploads through parse, extract, reconcile and assemble,
// strictly one file at a time in the given order.
func (s *processingService) Process(ctx context.Context, uploads []Upload, opts Options) (*Report, error) {
	start := time.Now()
	report := &Report{
		Parameter: sparams.Parameter(strings.ToUpper(strings.TrimSpace(opts.Parameter))),
	}

	// Step 1: The display mode applies to every file, so a bad one ends the run here
	mode, err := sparams.ParseDisplayMode(opts.Mode)
	if err != nil {
		log.Error().Err(err).Msg("Rejected run configuration")
		s.metrics.RunFinished(metrics.OutcomeConfigError, time.Since(start))
		return report, err
	}
	report.Mode = mode

	// Step 2: Extract every file, in upload order
	reconciler := sparams.NewReconciler()
	var series []*sparams.Series

	for i, upload := range uploads {
		name := upload.Name()
		log.Info().Str("file", name).Int("index", i+1).Int("total", len(uploads)).Msg("Processing measurement")

		extracted, err := s.processFile(ctx, upload, report.Parameter, mode)
		if err != nil {
			report.FileErrors = append(report.FileErrors, err)
			s.metrics.FileProcessed(fileStatus(err))
			log.Warn().Err(err).Str("file", name).Msg("Skipping measurement")
		} else {
			s.metrics.FileProcessed(metrics.FileOK)
			// Step 3: First successful file sets the reference grid
			if !reconciler.Observe(name, extracted.Frequencies) {
				log.Warn().
					Str("file", name).
					Str("reference", reconciler.ReferenceFile()).
					Msg("Frequency grid differs from the reference file")
			}
			series = append(series, extracted)
		}

		if opts.Progress != nil {
			opts.Progress(i+1, len(uploads), name)
		}
	}

	report.Mismatches = reconciler.Mismatches()
	s.metrics.FrequencyMismatches(len(report.Mismatches))

	if !reconciler.HasReference() {
		err := &sparams.NoDataError{Failures: report.FileErrors}
		log.Error().Err(err).Int("files", len(uploads)).Msg("Run produced no data")
		s.metrics.RunFinished(metrics.OutcomeNoData, time.Since(start))
		return report, err
	}
	report.ReferenceFile = reconciler.ReferenceFile()

	// Step 4: Merge into one table, dropping series of the wrong length
	table, exclusion, err := sparams.Assemble(reconciler.Reference(), series, report.Parameter, mode)
	report.Excluded = exclusion.Files
	if len(exclusion.Files) > 0 {
		s.metrics.FilesExcluded(len(exclusion.Files))
		log.Warn().Strs("files", exclusion.Files).Msg(exclusion.String())
	}
	if err != nil {
		log.Error().Err(err).Msg("Run produced an empty table")
		s.metrics.RunFinished(metrics.OutcomeEmptyResult, time.Since(start))
		return report, err
	}
	report.Table = table

	if len(report.FileErrors) > 0 {
		log.Warn().Int("failed", len(report.FileErrors)).Msg("Some files failed; table built from the remaining files")
	}
	log.Info().
		Int("rows", table.Rows()).
		Int("columns", len(table.Columns)).
		Str("reference", report.ReferenceFile).
		Dur("elapsed", time.Since(start)).
		Msg("Run completed")
	s.metrics.RunFinished(metrics.OutcomeSuccess, time.Since(start))

	return report, nil
}

func (s *processingService) processFile(ctx context.Context, upload Upload, p sparams.Parameter, mode sparams.DisplayMode) (*sparams.Series, error) {
	name := upload.Name()

	tempFile, err := s.materialize(ctx, upload)
	if err != nil {
		return nil, &sparams.ParseError{File: name, Err: err}
	}
	defer removeScratch(tempFile) // Always cleanup

	network, err := touchstone.ParseFile(tempFile)
	if err != nil {
		return nil, &sparams.ParseError{File: name, Err: err}
	}

	extracted, err := sparams.Extract(name, network, p, mode)
	if err != nil {
		return nil, &sparams.FileError{File: name, Err: err}
	}
	return extracted, nil
}

// materialize copies the upload into a scratch file for the parser. The file
// is already removed when an error is returned.
func (s *processingService) materialize(ctx context.Context, upload Upload) (string, error) {
	src, err := upload.Open(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	f, err := os.CreateTemp(s.scratchDir, "measurement-*"+sparams.SourceExtension)
	if err != nil {
		return "", fmt.Errorf("failed to create scratch file: %w", err)
	}

	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		removeScratch(f.Name())
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if err := f.Close(); err != nil {
		removeScratch(f.Name())
		return "", fmt.Errorf("failed to write scratch file: %w", err)
	}
	return f.Name(), nil
}

func removeScratch(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Error().Err(err).Str("path", path).Msg("Failed to remove scratch file")
	}
}

func fileStatus(err error) string {
	var cfgErr *sparams.ConfigurationError
	if errors.As(err, &cfgErr) {
		return metrics.FileConfigError
	}
	return metrics.FileParseError
}

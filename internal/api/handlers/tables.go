package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RMahshie/sparam/internal/export"
	"github.com/RMahshie/sparam/internal/processing"
	"github.com/RMahshie/sparam/internal/sparams"
	"github.com/RMahshie/sparam/pkg/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// formField is the multipart field carrying measurement files
const formField = "files"

// TableHandler handles table runs over uploaded measurement files
type TableHandler struct {
	processingSvc processing.ProcessingService
	maxFiles      int
	now           func() time.Time
}

// NewTableHandler creates a new table handler
func NewTableHandler(processingSvc processing.ProcessingService, maxFiles int) *TableHandler {
	return &TableHandler{
		processingSvc: processingSvc,
		maxFiles:      maxFiles,
		now:           time.Now,
	}
}

// CreateTable runs the uploaded files and returns the aligned table as JSON
func (h *TableHandler) CreateTable(ctx context.Context, req *models.CreateTableRequest) (*models.CreateTableResponse, error) {
	runID, p, mode, report, err := h.runForm(ctx, req)
	if err != nil {
		return nil, err
	}
	return &models.CreateTableResponse{Body: tableResult(runID, p, mode, report)}, nil
}

// ExportXLSX runs the uploaded files and returns the table as a workbook
func (h *TableHandler) ExportXLSX(ctx context.Context, req *models.CreateTableRequest) (*models.FileResponse, error) {
	_, p, mode, report, err := h.runForm(ctx, req)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, report.Table, string(p)); err != nil {
		return nil, huma.Error500InternalServerError("Failed to build workbook", err)
	}
	return &models.FileResponse{
		ContentType:        export.XLSXContentType,
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", export.ExportFileName(p, mode, h.now())),
		Body:               buf.Bytes(),
	}, nil
}

// ChartHTML runs the uploaded files and returns an interactive chart page
func (h *TableHandler) ChartHTML(ctx context.Context, req *models.CreateTableRequest) (*models.FileResponse, error) {
	_, p, mode, report, err := h.runForm(ctx, req)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := export.WriteChartHTML(&buf, report.Table, p, mode); err != nil {
		return nil, huma.Error500InternalServerError("Failed to render chart", err)
	}
	return &models.FileResponse{
		ContentType:        "text/html; charset=utf-8",
		ContentDisposition: fmt.Sprintf("inline; filename=\"%s_%s_chart.html\"", p, mode.Suffix()),
		Body:               buf.Bytes(),
	}, nil
}

// ChartPNG runs the uploaded files and returns a static chart image
func (h *TableHandler) ChartPNG(ctx context.Context, req *models.CreateTableRequest) (*models.FileResponse, error) {
	_, p, mode, report, err := h.runForm(ctx, req)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := export.WriteChartPNG(&buf, report.Table, p, mode); err != nil {
		return nil, huma.Error500InternalServerError("Failed to render chart", err)
	}
	return &models.FileResponse{
		ContentType:        export.PNGContentType,
		ContentDisposition: fmt.Sprintf("inline; filename=\"%s_%s_chart.png\"", p, mode.Suffix()),
		Body:               buf.Bytes(),
	}, nil
}

func (h *TableHandler) runForm(ctx context.Context, req *models.CreateTableRequest) (string, sparams.Parameter, sparams.DisplayMode, *processing.Report, error) {
	p, mode, err := parseOptions(req.Parameter, req.Mode)
	if err != nil {
		return "", "", 0, nil, err
	}

	files := req.RawBody.File[formField]
	if err := h.checkFileCount(len(files)); err != nil {
		return "", "", 0, nil, err
	}

	uploads := make([]processing.Upload, len(files))
	for i, fh := range files {
		uploads[i] = processing.FormFile{Header: fh}
	}

	runID, report, err := h.process(ctx, uploads, p, mode)
	return runID, p, mode, report, err
}

func (h *TableHandler) checkFileCount(n int) error {
	if n == 0 {
		return huma.Error400BadRequest(fmt.Sprintf("No files uploaded. Attach %s files as form field %q.", sparams.SourceExtension, formField))
	}
	if n > h.maxFiles {
		return huma.Error400BadRequest(fmt.Sprintf("Too many files: %d uploaded, at most %d per run", n, h.maxFiles))
	}
	return nil
}

func (h *TableHandler) process(ctx context.Context, uploads []processing.Upload, p sparams.Parameter, mode sparams.DisplayMode) (string, *processing.Report, error) {
	runID := uuid.New().String()
	log.Info().Str("runID", runID).Int("files", len(uploads)).Str("parameter", string(p)).Str("mode", mode.String()).Msg("Starting run")

	report, err := h.processingSvc.Process(ctx, uploads, processing.Options{
		Parameter: string(p),
		Mode:      mode.String(),
		Progress: func(done, total int, file string) {
			log.Debug().Str("runID", runID).Int("done", done).Int("total", total).Str("file", file).Msg("Run progress")
		},
	})
	if err != nil {
		log.Warn().Err(err).Str("runID", runID).Msg("Run failed")
		return runID, report, runError(err)
	}
	return runID, report, nil
}

func parseOptions(parameter, mode string) (sparams.Parameter, sparams.DisplayMode, error) {
	p, err := sparams.ParseParameter(parameter)
	if err != nil {
		return "", 0, huma.Error400BadRequest(fmt.Sprintf("Unsupported S-parameter. Use one of %s.", parameterNames()), err)
	}
	m, err := sparams.ParseDisplayMode(mode)
	if err != nil {
		return "", 0, huma.Error400BadRequest("Unsupported display mode. Use log-magnitude-dB or phase-deg.", err)
	}
	return p, m, nil
}

func parameterNames() string {
	names := make([]string, len(sparams.Parameters))
	for i, p := range sparams.Parameters {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

// runError maps run failures onto HTTP errors
func runError(err error) error {
	var cfgErr *sparams.ConfigurationError
	var noData *sparams.NoDataError
	var empty *sparams.EmptyResultError

	switch {
	case errors.As(err, &cfgErr):
		return huma.Error400BadRequest("Invalid run configuration", err)
	case errors.As(err, &noData):
		return huma.Error422UnprocessableEntity("None of the uploaded files could be used", noData.Failures...)
	case errors.As(err, &empty):
		return huma.Error422UnprocessableEntity("No file matched the reference frequency grid", err)
	default:
		return huma.Error500InternalServerError("Run failed", err)
	}
}

func tableResult(runID string, p sparams.Parameter, mode sparams.DisplayMode, report *processing.Report) models.TableResult {
	result := models.TableResult{
		RunID:         runID,
		Parameter:     string(p),
		Mode:          mode.String(),
		ReferenceFile: report.ReferenceFile,
		Columns:       report.Table.Header(),
		Rows:          make([][]float64, report.Table.Rows()),
		Excluded:      append([]string{}, report.Excluded...),
		Mismatches:    make([]models.MismatchWarning, len(report.Mismatches)),
		FileErrors:    make([]models.FileFailure, len(report.FileErrors)),
	}
	for i := range result.Rows {
		result.Rows[i] = report.Table.Row(i)
	}
	for i, m := range report.Mismatches {
		result.Mismatches[i] = models.MismatchWarning{File: m.File, Reference: m.Reference}
	}
	for i, err := range report.FileErrors {
		result.FileErrors[i] = models.FileFailure{File: failedFile(err), Error: err.Error()}
	}
	return result
}

func failedFile(err error) string {
	var parseErr *sparams.ParseError
	if errors.As(err, &parseErr) {
		return parseErr.File
	}
	var fileErr *sparams.FileError
	if errors.As(err, &fileErr) {
		return fileErr.File
	}
	return ""
}

package handlers

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/RMahshie/sparam/internal/processing"
	"github.com/RMahshie/sparam/internal/sparams"
	"github.com/RMahshie/sparam/internal/storage"
	"github.com/RMahshie/sparam/pkg/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// cleanupTimeout bounds deleting consumed objects after a run
const cleanupTimeout = 30 * time.Second

// uploadPrefix holds every object key CreateUpload hands out
const uploadPrefix = "uploads/"

// RunHandler handles runs over files uploaded to object storage
type RunHandler struct {
	tables    *TableHandler
	s3Service storage.S3Service
}

// NewRunHandler creates a new run handler. s3Service may be nil when storage is disabled.
func NewRunHandler(tables *TableHandler, s3Service storage.S3Service) *RunHandler {
	return &RunHandler{
		tables:    tables,
		s3Service: s3Service,
	}
}

// CreateUpload returns a pre-signed URL the client uploads one measurement file to
func (h *RunHandler) CreateUpload(ctx context.Context, req *models.CreateUploadRequest) (*models.CreateUploadResponse, error) {
	if h.s3Service == nil {
		return nil, huma.Error503ServiceUnavailable("Object storage is not configured")
	}

	if !strings.EqualFold(path.Ext(req.Body.FileName), sparams.SourceExtension) {
		return nil, huma.Error400BadRequest(fmt.Sprintf("Only %s files are supported", sparams.SourceExtension))
	}
	if err := storage.ValidateContentType(req.Body.ContentType); err != nil {
		return nil, huma.Error400BadRequest("File format not supported", err)
	}

	key := fmt.Sprintf("%s%s%s", uploadPrefix, uuid.New(), sparams.SourceExtension)
	log.Info().Str("key", key).Str("fileName", req.Body.FileName).Msg("Generating upload URL")

	uploadURL, err := h.s3Service.GenerateUploadURL(ctx, key, req.Body.ContentType)
	if err != nil {
		return nil, huma.Error502BadGateway("Failed to prepare upload. Please try again.", err)
	}

	resp := &models.CreateUploadResponse{}
	resp.Body.Key = key
	resp.Body.UploadURL = uploadURL
	resp.Body.ExpiresIn = int(storage.UploadURLExpiry.Seconds())
	return resp, nil
}

// CreateRun processes previously uploaded objects and deletes them afterwards
func (h *RunHandler) CreateRun(ctx context.Context, req *models.CreateRunRequest) (*models.CreateRunResponse, error) {
	if h.s3Service == nil {
		return nil, huma.Error503ServiceUnavailable("Object storage is not configured")
	}

	for _, f := range req.Body.Files {
		if !uploadKey(f.Key) {
			return nil, huma.Error400BadRequest(fmt.Sprintf("Unknown object key %q. Use a key returned by /api/uploads.", f.Key))
		}
	}

	// Objects are transient: delete them whatever the outcome
	defer h.deleteObjects(ctx, req.Body.Files)

	p, mode, err := parseOptions(req.Body.Parameter, req.Body.Mode)
	if err != nil {
		return nil, err
	}
	if err := h.tables.checkFileCount(len(req.Body.Files)); err != nil {
		return nil, err
	}

	uploads := make([]processing.Upload, len(req.Body.Files))
	for i, f := range req.Body.Files {
		uploads[i] = processing.StoredObject{Storage: h.s3Service, Key: f.Key, FileName: f.Name}
	}

	runID, report, err := h.tables.process(ctx, uploads, p, mode)
	if err != nil {
		return nil, err
	}
	return &models.CreateRunResponse{Body: tableResult(runID, p, mode, report)}, nil
}

func (h *RunHandler) deleteObjects(ctx context.Context, files []models.StoredFile) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	for _, f := range files {
		if err := h.s3Service.DeleteFile(ctx, f.Key); err != nil {
			log.Error().Err(err).Str("key", f.Key).Msg("Failed to delete uploaded file")
		}
	}
}

// uploadKey reports whether key has the shape of a key CreateUpload issues
func uploadKey(key string) bool {
	name, ok := strings.CutPrefix(key, uploadPrefix)
	return ok && name != "" && path.Clean(key) == key &&
		!strings.Contains(name, "/") && strings.HasSuffix(name, sparams.SourceExtension)
}

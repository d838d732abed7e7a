package api

import (
	"net/http"

	"github.com/RMahshie/sparam/internal/api/handlers"
	"github.com/RMahshie/sparam/internal/processing"
	"github.com/RMahshie/sparam/internal/storage"
	"github.com/danielgtaylor/huma/v2"
)

// Limits bounds what a single request may submit
type Limits struct {
	MaxFiles       int
	MaxUploadBytes int64
}

// RegisterRoutes sets up all API routes. s3Service may be nil when storage is disabled.
func RegisterRoutes(api huma.API, s3Service storage.S3Service, processingSvc processing.ProcessingService, limits Limits) {
	// Initialize handlers
	tableHandler := handlers.NewTableHandler(processingSvc, limits.MaxFiles)
	runHandler := handlers.NewRunHandler(tableHandler, s3Service)

	// Register table routes; each takes .s2p files as multipart field "files"
	huma.Register(api, huma.Operation{
		OperationID:  "createTable",
		Method:       http.MethodPost,
		Path:         "/api/tables",
		Summary:      "Build an aligned table",
		Description:  "Extracts one S-parameter from every uploaded file and returns the frequency-aligned table",
		Tags:         []string{"Tables"},
		MaxBodyBytes: limits.MaxUploadBytes,
	}, tableHandler.CreateTable)

	huma.Register(api, huma.Operation{
		OperationID:  "exportTableXLSX",
		Method:       http.MethodPost,
		Path:         "/api/tables/xlsx",
		Summary:      "Export an aligned table as xlsx",
		Description:  "Builds the table and returns it as a timestamped Excel workbook",
		Tags:         []string{"Tables"},
		MaxBodyBytes: limits.MaxUploadBytes,
	}, tableHandler.ExportXLSX)

	huma.Register(api, huma.Operation{
		OperationID:  "chartTableHTML",
		Method:       http.MethodPost,
		Path:         "/api/tables/chart",
		Summary:      "Chart an aligned table",
		Description:  "Builds the table and returns an interactive HTML line chart",
		Tags:         []string{"Tables"},
		MaxBodyBytes: limits.MaxUploadBytes,
	}, tableHandler.ChartHTML)

	huma.Register(api, huma.Operation{
		OperationID:  "chartTablePNG",
		Method:       http.MethodPost,
		Path:         "/api/tables/chart.png",
		Summary:      "Chart an aligned table as PNG",
		Description:  "Builds the table and returns a static line chart image",
		Tags:         []string{"Tables"},
		MaxBodyBytes: limits.MaxUploadBytes,
	}, tableHandler.ChartPNG)

	// Register object storage routes
	huma.Register(api, huma.Operation{
		OperationID: "createUpload",
		Method:      http.MethodPost,
		Path:        "/api/uploads",
		Summary:     "Create an upload URL",
		Description: "Returns a pre-signed URL for uploading one measurement file to object storage",
		Tags:        []string{"Runs"},
	}, runHandler.CreateUpload)

	huma.Register(api, huma.Operation{
		OperationID: "createRun",
		Method:      http.MethodPost,
		Path:        "/api/runs",
		Summary:     "Build a table from uploaded files",
		Description: "Processes previously uploaded files in order, deletes them and returns the aligned table",
		Tags:        []string{"Runs"},
	}, runHandler.CreateRun)
}

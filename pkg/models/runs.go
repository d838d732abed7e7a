package models

// CreateUploadRequest asks for a pre-signed upload URL for one measurement file
type CreateUploadRequest struct {
	Body struct {
		FileName    string `json:"file_name" minLength:"1" maxLength:"255" required:"true" doc:"Measurement file name, e.g. amp_1.s2p"`
		ContentType string `json:"content_type" enum:"application/octet-stream,text/plain,application/x-touchstone" required:"true" doc:"Upload MIME type"`
	}
}

// CreateUploadResponse represents the response from creating an upload
type CreateUploadResponse struct {
	Body struct {
		Key       string `json:"key" doc:"Object key to pass to /api/runs"`
		UploadURL string `json:"upload_url" doc:"Pre-signed URL for file upload"`
		ExpiresIn int    `json:"expires_in" doc:"URL expiration time in seconds"`
	}
}

// StoredFile names an uploaded object
type StoredFile struct {
	Key  string `json:"key" minLength:"1" doc:"Object key returned by /api/uploads"`
	Name string `json:"name" minLength:"1" doc:"File name used for the column header"`
}

// CreateRunRequest processes previously uploaded objects
type CreateRunRequest struct {
	Body struct {
		Files     []StoredFile `json:"files" minItems:"1" doc:"Uploaded files in processing order"`
		Parameter string       `json:"parameter,omitempty" default:"S21" doc:"S-parameter to extract"`
		Mode      string       `json:"mode,omitempty" default:"log-magnitude-dB" doc:"Display mode"`
	}
}

// CreateRunResponse returns the table as JSON
type CreateRunResponse struct {
	Body TableResult
}

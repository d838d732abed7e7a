package models

import "mime/multipart"

// CreateTableRequest carries .s2p files as multipart form field "files"
type CreateTableRequest struct {
	Parameter string `query:"parameter" default:"S21" doc:"S-parameter to extract: S11, S12, S21 or S22"`
	Mode      string `query:"mode" default:"log-magnitude-dB" doc:"Display mode: log-magnitude-dB or phase-deg"`
	RawBody   multipart.Form
}

// CreateTableResponse returns the table as JSON
type CreateTableResponse struct {
	Body TableResult
}

// FileResponse is a downloadable rendering of a table
type FileResponse struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

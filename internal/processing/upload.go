package processing

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"

	"github.com/RMahshie/sparam/internal/storage"
)

// Upload is one measurement file handed to a run.
type Upload interface {
	// Name is the display name, e.g. "amp.s2p".
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// RawMeasurement is an upload already held in memory.
type RawMeasurement struct {
	FileName string
	Data     []byte
}

func (m RawMeasurement) Name() string { return m.FileName }

func (m RawMeasurement) Open(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.Data)), nil
}

// FormFile is an upload received as part of a multipart form.
type FormFile struct {
	Header *multipart.FileHeader
}

func (f FormFile) Name() string { return f.Header.Filename }

func (f FormFile) Open(context.Context) (io.ReadCloser, error) {
	return f.Header.Open()
}

// StoredObject is an upload waiting in object storage under Key.
type StoredObject struct {
	Storage  storage.S3Service
	Key      string
	FileName string
}

func (o StoredObject) Name() string { return o.FileName }

func (o StoredObject) Open(ctx context.Context) (io.ReadCloser, error) {
	data, err := o.Storage.DownloadFile(ctx, o.Key)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

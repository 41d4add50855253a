package rates

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrUploadFailed marks a failure to persist an uploaded rates file. The
// previous table stays authoritative when this is returned.
var ErrUploadFailed = errors.New("rates upload failed")

// Receiver persists uploaded rate files into the store's single slot and
// reloads the table before the upload is acknowledged. The slot's directory
// must exist before the first call; main creates it at startup.
type Receiver struct {
	Store *Store
}

// Accept overwrites the rate file with src (last writer wins, not versioned)
// and then reloads the store synchronously, so a client that uploads and
// immediately reads the table sees its own rows. On a write failure the store
// is not reloaded.
func (r *Receiver) Accept(src io.Reader) error {
	f, err := os.Create(r.Store.Path())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	return r.Store.Reload()
}

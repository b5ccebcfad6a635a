package storage

import (
	"os"

	"github.com/josefjadrny/go-idb/pkg/logging"
	"github.com/spf13/afero"
)

type FileOption func(*FileAdapter)

// WithFs sets the filesystem the adapter works on. Tests use afero.NewMemMapFs.
func WithFs(fs afero.Fs) FileOption {
	return func(a *FileAdapter) {
		a.fs = fs
	}
}

// WithCodec sets the artifact codec (default JSONCodec).
func WithCodec(c Codec) FileOption {
	return func(a *FileAdapter) {
		a.codec = c
	}
}

// WithFileMode sets the permissions of written artifacts (default 0644).
func WithFileMode(mode os.FileMode) FileOption {
	return func(a *FileAdapter) {
		a.fileMode = mode
	}
}

func WithLogger(l logging.Logger) FileOption {
	return func(a *FileAdapter) {
		a.logger = l
	}
}

package site

import (
	"io/fs"
	"os"

	"git.home.luguber.info/inful/prismicgen/internal/foundation/errors"
)

// Asset is a file copied into the build directory under FileName.
// Src is read from FS when FS is set, otherwise from disk. Options are
// written next to the file as <FileName>.options.yaml.
type Asset struct {
	FileName string
	Src      string
	FS       fs.FS
	Options  map[string]any
}

// Read returns the asset's source bytes.
func (a Asset) Read() ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if a.FS != nil {
		data, err = fs.ReadFile(a.FS, a.Src)
	} else {
		// #nosec G304 -- asset sources come from the integration or the project tree
		data, err = os.ReadFile(a.Src)
	}
	if err != nil {
		return nil, errors.FileSystemError("failed to read asset source").
			WithCause(err).
			WithContext("file", a.FileName).
			WithContext("src", a.Src).
			Build()
	}
	return data, nil
}

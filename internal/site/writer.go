package site

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/prismicgen/internal/foundation/errors"
	"git.home.luguber.info/inful/prismicgen/internal/logfields"
	"git.home.luguber.info/inful/prismicgen/internal/manifest"
)

// RoutesFileName is the generated route list inside the build directory.
const RoutesFileName = "routes.json"

// optionsSuffix is appended to an asset's file name for its options sidecar.
const optionsSuffix = ".options.yaml"

// BuildInfo identifies the run that produced a build.
type BuildInfo struct {
	RunID      string
	Version    string
	Repository string
}

// WriteBuild writes res into the build directory and returns its manifest.
// The directory is replaced atomically: on error the previous build stays.
func (p *Pipeline) WriteBuild(res *Result, info BuildInfo) (*manifest.BuildManifest, error) {
	if res == nil {
		return nil, errors.InternalError("no pipeline result to write").Build()
	}

	st, err := beginStaging(p.buildDir, p.logger)
	if err != nil {
		return nil, errors.FileSystemError("failed to prepare build directory").
			WithCause(err).
			WithContext("path", p.buildDir).
			Build()
	}

	m, err := p.writeStage(st.dir, res, info)
	if err != nil {
		st.abort()
		return nil, err
	}

	if err := st.finalize(); err != nil {
		st.abort()
		return nil, errors.FileSystemError("failed to promote build directory").
			WithCause(err).
			WithContext("path", p.buildDir).
			Build()
	}

	p.logger.Info("Wrote build",
		logfields.Path(p.buildDir),
		logfields.Routes(m.Routes),
		logfields.RunID(m.ID))
	return m, nil
}

func (p *Pipeline) writeStage(dir string, res *Result, info BuildInfo) (*manifest.BuildManifest, error) {
	m := &manifest.BuildManifest{
		ID:         info.RunID,
		Timestamp:  time.Now().UTC(),
		Version:    info.Version,
		Repository: info.Repository,
		Middleware: res.Middleware,
		Routes:     len(res.Routes),
		RoutesHash: manifest.HashRoutes(res.Routes),
		Duration:   res.Duration.Milliseconds(),
	}

	written := make(map[string]bool)
	var err error
	if m.Templates, err = writeAssets(dir, res.Templates, written); err != nil {
		return nil, err
	}
	if m.Plugins, err = writeAssets(dir, res.Plugins, written); err != nil {
		return nil, err
	}
	for _, r := range res.AppRoutes {
		m.AppRoutes = append(m.AppRoutes, manifest.RouteRecord(r))
	}

	list := res.Routes
	if list == nil {
		list = []string{}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return nil, errors.InternalError("failed to encode routes").WithCause(err).Build()
	}
	if err := writeFile(dir, RoutesFileName, append(data, '\n')); err != nil {
		return nil, err
	}

	data, err = m.ToYAML()
	if err != nil {
		return nil, errors.InternalError("failed to encode manifest").WithCause(err).Build()
	}
	if err := writeFile(dir, manifest.FileName, data); err != nil {
		return nil, err
	}
	return m, nil
}

func writeAssets(dir string, assets []Asset, written map[string]bool) ([]manifest.AssetRecord, error) {
	records := make([]manifest.AssetRecord, 0, len(assets))
	for _, a := range assets {
		name := filepath.ToSlash(filepath.Clean(a.FileName))
		if written[name] {
			return nil, errors.BuildError("asset registered twice").
				WithContext("file", a.FileName).
				Build()
		}
		written[name] = true

		data, err := a.Read()
		if err != nil {
			return nil, err
		}
		if err := writeFile(dir, a.FileName, data); err != nil {
			return nil, err
		}

		rec := manifest.AssetRecord{
			FileName: name,
			SHA256:   fmt.Sprintf("%x", sha256.Sum256(data)),
		}
		if len(a.Options) > 0 {
			opts, err := yaml.Marshal(a.Options)
			if err != nil {
				return nil, errors.BuildError("failed to encode asset options").
					WithCause(err).
					WithContext("file", a.FileName).
					Build()
			}
			if err := writeFile(dir, a.FileName+optionsSuffix, opts); err != nil {
				return nil, err
			}
			rec.Options = true
		}
		records = append(records, rec)
	}
	return records, nil
}

// writeFile writes content to relativePath under dir. The path must stay
// inside dir.
func writeFile(dir, relativePath string, content []byte) error {
	if relativePath == "" {
		return errors.ValidationError("output path is required").Build()
	}

	cleanRel := filepath.Clean(filepath.FromSlash(relativePath))
	if filepath.IsAbs(cleanRel) || cleanRel == ".." || strings.HasPrefix(cleanRel, ".."+string(filepath.Separator)) {
		return errors.ValidationError("output path must be relative to the build directory").
			WithContext("path", relativePath).
			Build()
	}

	fullPath := filepath.Join(dir, cleanRel)
	rel, err := filepath.Rel(dir, fullPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return errors.ValidationError("output path escapes the build directory").
			WithContext("path", relativePath).
			Build()
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return errors.FileSystemError("failed to create output directory").
			WithCause(err).
			WithContext("path", filepath.Dir(fullPath)).
			Build()
	}
	// #nosec G306 -- build output is meant to be readable by the site toolchain
	if err := os.WriteFile(fullPath, content, 0o644); err != nil {
		return errors.FileSystemError("failed to write output file").
			WithCause(err).
			WithContext("path", fullPath).
			Build()
	}
	return nil
}

// ReadRoutes loads the route list from a build directory.
func ReadRoutes(buildDir string) ([]string, error) {
	// #nosec G304 -- fixed file name under the configured build directory
	data, err := os.ReadFile(filepath.Join(buildDir, RoutesFileName))
	if err != nil {
		return nil, errors.FileSystemError("failed to read routes").
			WithCause(err).
			WithContext("path", buildDir).
			Build()
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, errors.BuildError("failed to decode routes").
			WithCause(err).
			WithContext("path", buildDir).
			Build()
	}
	return list, nil
}

// ReadManifest loads the manifest from a build directory.
func ReadManifest(buildDir string) (*manifest.BuildManifest, error) {
	// #nosec G304 -- fixed file name under the configured build directory
	data, err := os.ReadFile(filepath.Join(buildDir, manifest.FileName))
	if err != nil {
		return nil, errors.FileSystemError("failed to read manifest").
			WithCause(err).
			WithContext("path", buildDir).
			Build()
	}
	m, err := manifest.FromYAML(data)
	if err != nil {
		return nil, errors.BuildError("failed to decode manifest").
			WithCause(err).
			WithContext("path", buildDir).
			Build()
	}
	return m, nil
}

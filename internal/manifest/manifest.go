// Package manifest records what a generation run wrote to the build directory.
package manifest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the manifest's name inside the build directory.
const FileName = "manifest.yaml"

// BuildManifest is a record of one generation run's inputs and outputs.
type BuildManifest struct {
	ID         string        `json:"id" yaml:"id"`
	Timestamp  time.Time     `json:"timestamp" yaml:"timestamp"`
	Version    string        `json:"version,omitempty" yaml:"version,omitempty"`
	Repository string        `json:"repository,omitempty" yaml:"repository,omitempty"`
	Templates  []AssetRecord `json:"templates,omitempty" yaml:"templates,omitempty"`
	Plugins    []AssetRecord `json:"plugins,omitempty" yaml:"plugins,omitempty"`
	AppRoutes  []RouteRecord `json:"app_routes,omitempty" yaml:"app_routes,omitempty"`
	Middleware []string      `json:"middleware,omitempty" yaml:"middleware,omitempty"`
	Routes     int           `json:"routes" yaml:"routes"`
	RoutesHash string        `json:"routes_hash" yaml:"routes_hash"`
	Duration   int64         `json:"duration_ms" yaml:"duration_ms"`
}

// AssetRecord is one file copied into the build directory.
type AssetRecord struct {
	FileName string `json:"file" yaml:"file"`
	SHA256   string `json:"sha256" yaml:"sha256"`
	Options  bool   `json:"options,omitempty" yaml:"options,omitempty"`
}

// RouteRecord is an application route registered by an extension.
type RouteRecord struct {
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Path      string `json:"path" yaml:"path"`
	Component string `json:"component,omitempty" yaml:"component,omitempty"`
}

// HashRoutes returns a stable digest of an ordered route list.
func HashRoutes(routes []string) string {
	h := sha256.New()
	for _, r := range routes {
		_, _ = h.Write([]byte(r))
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// ToYAML serializes the manifest to YAML.
func (m *BuildManifest) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromYAML deserializes a manifest from YAML.
func FromYAML(data []byte) (*BuildManifest, error) {
	var m BuildManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Hash computes a deterministic hash of the manifest's outputs, ignoring the
// run id, timestamp and duration. Two runs that wrote the same build have the
// same hash.
func (m *BuildManifest) Hash() (string, error) {
	hashInput := struct {
		Repository string        `json:"repository"`
		Templates  []AssetRecord `json:"templates"`
		Plugins    []AssetRecord `json:"plugins"`
		AppRoutes  []RouteRecord `json:"app_routes"`
		Middleware []string      `json:"middleware"`
		RoutesHash string        `json:"routes_hash"`
	}{
		Repository: m.Repository,
		Templates:  m.Templates,
		Plugins:    m.Plugins,
		AppRoutes:  m.AppRoutes,
		Middleware: m.Middleware,
		RoutesHash: m.RoutesHash,
	}

	data, err := json.Marshal(hashInput)
	if err != nil {
		return "", fmt.Errorf("marshal for hash: %w", err)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

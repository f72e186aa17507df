package integration

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/prismicgen/internal/linkresolver"
)

// DefaultPreviewPath is the preview route used when preview is enabled with `true`.
const DefaultPreviewPath = "/preview"

// PreviewOption enables the preview route. In YAML it is either a boolean
// or the route path.
type PreviewOption struct {
	Enabled bool
	Path    string
}

// PreviewAt enables preview at path.
func PreviewAt(path string) *PreviewOption {
	return &PreviewOption{Enabled: true, Path: path}
}

// PreviewOff disables preview.
func PreviewOff() *PreviewOption {
	return &PreviewOption{}
}

// UnmarshalYAML accepts `true`, `false` or a path string.
func (p *PreviewOption) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("preview must be a boolean or a path, got %s", node.Tag)
	}
	if node.Tag == "!!bool" {
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		*p = PreviewOption{Enabled: b}
		if b {
			p.Path = DefaultPreviewPath
		}
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*p = PreviewOption{}
		return nil
	}
	*p = PreviewOption{Enabled: true, Path: s}
	return nil
}

// MarshalYAML writes `false` when disabled and the path otherwise.
func (p PreviewOption) MarshalYAML() (any, error) {
	if !p.Enabled {
		return false, nil
	}
	return p.path(), nil
}

func (p PreviewOption) path() string {
	if p.Path == "" {
		return DefaultPreviewPath
	}
	return p.Path
}

// Options configures the integration.
type Options struct {
	Endpoint    string `yaml:"endpoint"`
	AccessToken string `yaml:"access_token,omitempty"`
	// Preview defaults to enabled at DefaultPreviewPath.
	Preview *PreviewOption `yaml:"preview,omitempty"`
	// Components defaults to true.
	Components              *bool               `yaml:"components,omitempty"`
	LinkResolver            []linkresolver.Rule `yaml:"link_resolver,omitempty"`
	DisableDefaultGenerator bool                `yaml:"disable_default_generator,omitempty"`
}

// PreviewPath returns the preview route, or "" when preview is disabled.
func (o Options) PreviewPath() string {
	if o.Preview == nil {
		return DefaultPreviewPath
	}
	if !o.Preview.Enabled {
		return ""
	}
	return o.Preview.path()
}

// ComponentsEnabled reports whether component plugins are installed.
func (o Options) ComponentsEnabled() bool {
	return o.Components == nil || *o.Components
}

// pluginPreview is the preview value handed to plugins: the path or false.
func (o Options) pluginPreview() any {
	if p := o.PreviewPath(); p != "" {
		return p
	}
	return false
}

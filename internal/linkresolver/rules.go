package linkresolver

import (
	"bytes"
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/prismicgen/internal/foundation/errors"
)

// RulesFile is the on-disk form of a rule list:
//
//	rules:
//	  - type: blog_post
//	    path: /blog/:uid
//	  - type: page
//	    lang: de-de
//	    path: /:locale/:uid
type RulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads a YAML rules file.
func LoadRules(filename string) ([]Rule, error) {
	// #nosec G304 - filename is derived from the project source directory
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.FileSystemError("failed to read link resolver rules").
			WithCause(err).
			WithContext("path", filename).
			Build()
	}

	var f RulesFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, errors.ConfigError("failed to parse link resolver rules").
			WithCause(err).
			WithContext("path", filename).
			Build()
	}
	if len(f.Rules) == 0 {
		return nil, errors.ConfigError("link resolver rules file defines no rules").
			WithContext("path", filename).
			Build()
	}
	return f.Rules, nil
}

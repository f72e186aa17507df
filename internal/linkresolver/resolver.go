// Package linkresolver maps content documents to route paths using ordered
// type/language rules.
package linkresolver

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"golang.org/x/text/language"

	"git.home.luguber.info/inful/prismicgen/internal/foundation/errors"
	"git.home.luguber.info/inful/prismicgen/internal/prismic"
)

// AnyType matches every document type.
const AnyType = "*"

// Rule maps documents of Type (and optionally Lang) to a Path pattern.
// Path may contain the placeholders :uid, :id, :type, :lang and :locale.
type Rule struct {
	Type string `yaml:"type"`
	Lang string `yaml:"lang,omitempty"`
	Path string `yaml:"path"`
}

var placeholder = regexp.MustCompile(`:([a-z]+)`)

var knownPlaceholders = map[string]bool{
	"uid":    true,
	"id":     true,
	"type":   true,
	"lang":   true,
	"locale": true,
}

type compiledRule struct {
	Rule
	anyLang bool
	tag     language.Tag
}

// Resolver resolves documents against a fixed rule list; first match wins.
type Resolver struct {
	rules []compiledRule
}

// New validates rules and returns a Resolver.
func New(rules []Rule) (*Resolver, error) {
	if len(rules) == 0 {
		return nil, errors.ValidationError("link resolver needs at least one rule").Build()
	}

	r := &Resolver{rules: make([]compiledRule, 0, len(rules))}
	for i, rule := range rules {
		cr, err := compile(rule)
		if err != nil {
			return nil, errors.ValidationError(fmt.Sprintf("invalid link resolver rule %d", i+1)).
				WithCause(err).
				WithContext("type", rule.Type).
				WithContext("path", rule.Path).
				Build()
		}
		r.rules = append(r.rules, cr)
	}
	return r, nil
}

func compile(rule Rule) (compiledRule, error) {
	cr := compiledRule{Rule: rule}
	if strings.TrimSpace(cr.Type) == "" {
		cr.Type = AnyType
	}
	if cr.Path == "" {
		return cr, fmt.Errorf("path is required")
	}
	if !strings.HasPrefix(cr.Path, "/") {
		return cr, fmt.Errorf("path %q must start with /", cr.Path)
	}
	for _, m := range placeholder.FindAllStringSubmatch(cr.Path, -1) {
		if !knownPlaceholders[m[1]] {
			return cr, fmt.Errorf("unknown placeholder :%s", m[1])
		}
	}

	switch cr.Lang {
	case "", prismic.AllLanguages:
		cr.anyLang = true
	default:
		tag, err := language.Parse(cr.Lang)
		if err != nil {
			return cr, fmt.Errorf("lang %q: %w", cr.Lang, err)
		}
		cr.tag = tag
	}
	return cr, nil
}

// Rules returns the normalized rules in match order.
func (r *Resolver) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	for i, cr := range r.rules {
		out[i] = cr.Rule
	}
	return out
}

// Resolve returns the route path for doc.
func (r *Resolver) Resolve(doc prismic.Document) (string, error) {
	for _, rule := range r.rules {
		if !rule.matches(doc) {
			continue
		}
		return rule.expand(doc)
	}
	return "", errors.ResolverError("no link resolver rule matches document").
		WithContext("document_id", doc.ID).
		WithContext("document_type", doc.Type).
		WithContext("lang", doc.Lang).
		Build()
}

func (cr compiledRule) matches(doc prismic.Document) bool {
	if cr.Type != AnyType && cr.Type != doc.Type {
		return false
	}
	if cr.anyLang {
		return true
	}
	tag, err := language.Parse(doc.Lang)
	if err != nil {
		return false
	}
	return tag.String() == cr.tag.String()
}

func (cr compiledRule) expand(doc prismic.Document) (string, error) {
	var missing string
	out := placeholder.ReplaceAllStringFunc(cr.Path, func(m string) string {
		name := m[1:]
		v := value(doc, name)
		if v == "" && missing == "" {
			missing = name
		}
		return url.PathEscape(v)
	})
	if missing != "" {
		return "", errors.ResolverError(fmt.Sprintf("document has no value for :%s", missing)).
			WithContext("document_id", doc.ID).
			WithContext("document_type", doc.Type).
			WithContext("path", cr.Path).
			Build()
	}
	return path.Clean("/" + strings.TrimLeft(out, "/")), nil
}

func value(doc prismic.Document, name string) string {
	switch name {
	case "uid":
		return doc.UID
	case "id":
		return doc.ID
	case "type":
		return doc.Type
	case "lang":
		return doc.Lang
	case "locale":
		tag, err := language.Parse(doc.Lang)
		if err != nil {
			return ""
		}
		return tag.String()
	}
	return ""
}

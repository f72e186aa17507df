package prismic

import "encoding/json"

// API is the repository description served at the endpoint root.
type API struct {
	Refs      []Ref             `json:"refs"`
	Types     map[string]string `json:"types"`
	Languages []Language        `json:"languages"`
	Tags      []string          `json:"tags"`
}

// Ref is a content release pointer. Queries are always issued against a ref.
type Ref struct {
	ID          string `json:"id"`
	Ref         string `json:"ref"`
	Label       string `json:"label"`
	IsMasterRef bool   `json:"isMasterRef"`
}

// Language is a locale configured for the repository.
type Language struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AlternateLanguage points at a translation of a document.
type AlternateLanguage struct {
	ID   string `json:"id"`
	UID  string `json:"uid,omitempty"`
	Type string `json:"type"`
	Lang string `json:"lang"`
}

// Document is a single content record. Data is kept raw; nothing in this
// module interprets custom type fields.
type Document struct {
	ID                   string              `json:"id"`
	UID                  string              `json:"uid,omitempty"`
	Type                 string              `json:"type"`
	Href                 string              `json:"href,omitempty"`
	Tags                 []string            `json:"tags,omitempty"`
	Lang                 string              `json:"lang"`
	AlternateLanguages   []AlternateLanguage `json:"alternate_languages,omitempty"`
	FirstPublicationDate string              `json:"first_publication_date,omitempty"`
	LastPublicationDate  string              `json:"last_publication_date,omitempty"`
	Data                 json.RawMessage     `json:"data,omitempty"`
}

// QueryOptions controls a documents search.
type QueryOptions struct {
	// PageSize is the number of documents per page (API maximum 100).
	PageSize int
	// Page is the 1-based page index.
	Page int
	// Lang selects a locale; AllLanguages ("*") disables language filtering.
	Lang string
	// Orderings is passed through verbatim, e.g. "[document.first_publication_date desc]".
	Orderings string
}

// AllLanguages is the lang selector matching every locale.
const AllLanguages = "*"

// MaxPageSize is the largest page size the search API accepts.
const MaxPageSize = 100

// QueryPage is one page of a documents search.
type QueryPage struct {
	Page             int        `json:"page"`
	ResultsPerPage   int        `json:"results_per_page"`
	ResultsSize      int        `json:"results_size"`
	TotalResultsSize int        `json:"total_results_size"`
	TotalPages       int        `json:"total_pages"`
	NextPage         string     `json:"next_page"`
	PrevPage         string     `json:"prev_page"`
	Results          []Document `json:"results"`
}

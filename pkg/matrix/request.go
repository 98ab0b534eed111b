package matrix

import (
	"net/url"
	"strings"
)

const (
	// DefaultBaseURL is the Distance Matrix JSON endpoint.
	DefaultBaseURL = "https://maps.googleapis.com/maps/api/distancematrix/json"

	// DefaultLanguage is the locale used for duration and distance texts.
	DefaultLanguage = "es"

	// MaxDestinations is the per-request destination cap of the API.
	MaxDestinations = 25

	// DestinationSeparator joins destinations inside one parameter value.
	DestinationSeparator = "|"
)

// Builder produces request descriptors for a single batch.
type Builder struct {
	// BaseURL is the endpoint the request targets.
	BaseURL string

	// Language fixes the locale of the human readable texts.
	Language string
}

// NewBuilder returns a Builder for the public endpoint and default locale.
func NewBuilder() Builder {
	return Builder{
		BaseURL:  DefaultBaseURL,
		Language: DefaultLanguage,
	}
}

// Request describes one Distance Matrix call.
// Params hold the already percent-encoded parameter values.
type Request struct {
	Endpoint string
	Params   []Param
}

// Param is a query parameter whose Value is already percent-encoded.
type Param struct {
	Name  string
	Value string
}

// Build assembles the request for origin and a batch of destinations.
//
// Inputs are not validated; the caller guarantees a non-empty origin, a
// non-empty destination list without empty entries, and a list no longer
// than MaxDestinations.
func (b Builder) Build(origin string, destinations []string, mode Mode, key string) Request {
	endpoint := b.BaseURL
	if endpoint == "" {
		endpoint = DefaultBaseURL
	}
	language := b.Language
	if language == "" {
		language = DefaultLanguage
	}

	return Request{
		Endpoint: endpoint,
		Params: []Param{
			{Name: "origins", Value: escape(origin)},
			{Name: "destinations", Value: escape(strings.Join(destinations, DestinationSeparator))},
			{Name: "mode", Value: escape(string(mode))},
			{Name: "language", Value: escape(language)},
			{Name: "key", Value: escape(key)},
		},
	}
}

// URL returns the full request URL including the credential.
func (r Request) URL() string {
	return r.Endpoint + "?" + r.encode(false)
}

// Redacted returns the URL with the credential masked, for logging.
func (r Request) Redacted() string {
	return r.Endpoint + "?" + r.encode(true)
}

// Get returns the decoded value of the named parameter.
func (r Request) Get(name string) string {
	for _, p := range r.Params {
		if p.Name == name {
			v, err := url.PathUnescape(p.Value)
			if err != nil {
				return p.Value
			}
			return v
		}
	}
	return ""
}

func (r Request) encode(redact bool) string {
	parts := make([]string, 0, len(r.Params))
	for _, p := range r.Params {
		if redact && p.Name == "key" {
			parts = append(parts, "key=REDACTED")
			continue
		}
		parts = append(parts, p.Name+"="+p.Value)
	}
	return strings.Join(parts, "&")
}

// escape percent-encodes s for use as a query value. Spaces become %20
// rather than '+'.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

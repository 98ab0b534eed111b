package matrix

import (
	"encoding/json"
	"fmt"
)

// Status values reported by the API, both top-level and per element.
const (
	StatusOK                     = "OK"
	StatusInvalidRequest         = "INVALID_REQUEST"
	StatusMaxElementsExceeded    = "MAX_ELEMENTS_EXCEEDED"
	StatusMaxDimensionsExceeded  = "MAX_DIMENSIONS_EXCEEDED"
	StatusOverDailyLimit         = "OVER_DAILY_LIMIT"
	StatusOverQueryLimit         = "OVER_QUERY_LIMIT"
	StatusRequestDenied          = "REQUEST_DENIED"
	StatusUnknownError           = "UNKNOWN_ERROR"
	StatusNotFound               = "NOT_FOUND"
	StatusZeroResults            = "ZERO_RESULTS"
	StatusMaxRouteLengthExceeded = "MAX_ROUTE_LENGTH_EXCEEDED"
)

// Response is the decoded Distance Matrix document.
type Response struct {
	Status               string   `json:"status"`
	ErrorMessage         string   `json:"error_message,omitempty"`
	OriginAddresses      []string `json:"origin_addresses,omitempty"`
	DestinationAddresses []string `json:"destination_addresses,omitempty"`
	Rows                 []Row    `json:"rows"`

	// Raw is the undecoded payload, kept for diagnostics and caching.
	Raw []byte `json:"-"`
}

// Row holds the results for one origin.
type Row struct {
	Elements []Element `json:"elements"`
}

// Element is the result for one origin/destination pair.
type Element struct {
	Status   string `json:"status"`
	Duration Value  `json:"duration"`
	Distance Value  `json:"distance"`
}

// Value pairs a machine value (seconds or meters) with its localized text.
type Value struct {
	Value int    `json:"value"`
	Text  string `json:"text"`
}

// OK reports whether the top-level status is the success sentinel.
func (r *Response) OK() bool {
	return r.Status == StatusOK
}

// QuotaExceeded reports whether the service rejected the call for quota reasons.
func (r *Response) QuotaExceeded() bool {
	return r.Status == StatusOverQueryLimit || r.Status == StatusOverDailyLimit
}

// OK reports whether the element resolved.
func (e Element) OK() bool {
	return e.Status == StatusOK
}

// Decode parses a Distance Matrix payload. The returned Response keeps data
// in Raw.
func Decode(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode distance matrix response: %w", err)
	}
	if resp.Status == "" {
		return nil, fmt.Errorf("decode distance matrix response: missing status field")
	}
	resp.Raw = data
	return &resp, nil
}

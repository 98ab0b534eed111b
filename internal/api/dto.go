package api

// RankingRequest is the body of POST /rankings.
type RankingRequest struct {
	Origin       string   `json:"origin"`
	Destinations []string `json:"destinations"`

	// AddressSuffix, when present, is appended verbatim to every
	// destination and takes precedence over Region.
	AddressSuffix *string `json:"address_suffix,omitempty"`

	// Region scopes destinations to an autonomous community.
	Region string `json:"region,omitempty"`

	Mode      string `json:"mode,omitempty"`
	BatchSize int    `json:"batch_size,omitempty"`
}

// RankedDestination is one entry of the ranking, rank starting at 1.
type RankedDestination struct {
	Rank            int    `json:"rank"`
	Name            string `json:"name"`
	Address         string `json:"address"`
	ResolvedAddress string `json:"resolved_address,omitempty"`
	DurationSeconds int    `json:"duration_seconds"`
	DurationText    string `json:"duration_text"`
	DistanceMeters  int    `json:"distance_meters"`
	DistanceText    string `json:"distance_text"`
}

// DroppedDestination is a destination the service could not resolve.
type DroppedDestination struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Status  string `json:"status"`
}

// RankingResponse is the 200 body of POST /rankings.
type RankingResponse struct {
	Mode    string               `json:"mode"`
	Ranked  []RankedDestination  `json:"ranked"`
	Dropped []DroppedDestination `json:"dropped"`
	Batches int                  `json:"batches"`
}

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error     string `json:"error"`
	Status    string `json:"status,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

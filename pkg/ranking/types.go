package ranking

import (
	"context"

	"github.com/traslados/commute-ranker/pkg/matrix"
)

// DefaultBatchSize is the number of destinations sent per request when the
// query leaves BatchSize at zero.
const DefaultBatchSize = matrix.MaxDestinations

// Fetcher performs a single Distance Matrix call.
// *client.Client implements it; tests substitute fakes.
type Fetcher interface {
	Fetch(ctx context.Context, req matrix.Request) (*matrix.Response, error)
}

// Query is the input of one ranking run.
type Query struct {
	// Origin is the free-text starting location.
	Origin string

	// Names are the destination names, in caller order.
	Names []string

	// Credential is the API key sent with every request.
	Credential string

	// AddressSuffix is appended to every name to form its address,
	// e.g. ", Región de Murcia, España". May be empty.
	AddressSuffix string

	// Mode is the travel mode. Empty means driving.
	Mode matrix.Mode

	// BatchSize caps destinations per request. 0 means DefaultBatchSize.
	BatchSize int
}

// DestinationSpec is a destination name and the address sent to the API.
type DestinationSpec struct {
	Name    string
	Address string
}

// Outcome is the travel result for one resolved destination.
type Outcome struct {
	Name            string
	Address         string
	ResolvedAddress string
	DurationSeconds int
	DurationText    string
	DistanceMeters  int
	DistanceText    string
}

// Dropped is a destination the service could not resolve.
type Dropped struct {
	Name    string
	Address string
	Status  string
}

// Result is the ranked output of a run.
type Result struct {
	// Outcomes are ordered by duration ascending, then distance ascending.
	Outcomes []Outcome

	// Dropped lists destinations with a non-OK element status, in input order.
	Dropped []Dropped

	// Batches is the number of requests issued.
	Batches int
}

// BuildSpecs maps names to destination specs by appending suffix.
func BuildSpecs(names []string, suffix string) []DestinationSpec {
	specs := make([]DestinationSpec, len(names))
	for i, name := range names {
		specs[i] = DestinationSpec{Name: name, Address: name + suffix}
	}
	return specs
}

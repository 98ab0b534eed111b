// Package batch partitions destination lists into API-compliant batches.
//
// The Distance Matrix API accepts at most 25 destinations per request, so a
// ranking run over a longer list is issued as several sequential requests.
// This package only computes the partition; fetching is done by the caller.
//
// Example usage:
//
//	for i, b := range batch.Split(destinations, 25) {
//		req := builder.Build(origin, addresses(b), mode, key)
//		...
//	}
//
// The partition:
//   - Preserves input order
//   - Produces non-overlapping, contiguous batches
//   - Fills every batch except possibly the last
//   - Returns no batches for empty input
package batch

// Package ranking orders candidate destinations by travel time from a fixed
// origin.
//
// A ranking run:
//   - Maps each destination name to a full address (name + suffix)
//   - Splits the destinations into batches of at most 25 (pkg/batch)
//   - Fetches one Distance Matrix response per batch, sequentially
//   - Rejects responses whose top-level status is not OK or whose element
//     count does not match the batch
//   - Drops destinations whose element status is not OK (reported in
//     Result.Dropped)
//   - Sorts the resolved destinations by duration, then distance (stable)
//
// Any fatal error aborts the run and no partial result is returned.
//
// Example usage:
//
//	r := ranking.New(httpClient, matrix.NewBuilder())
//	res, err := r.FetchAndRank(ctx, ranking.Query{
//		Origin:        "Plaza Mayor, Madrid",
//		Names:         []string{"Getafe", "Alcorcón"},
//		Credential:    apiKey,
//		AddressSuffix: ", Comunidad de Madrid, España",
//		Mode:          matrix.ModeDriving,
//	})
package ranking

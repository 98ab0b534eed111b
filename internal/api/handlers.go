package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/traslados/commute-ranker/pkg/client"
	"github.com/traslados/commute-ranker/pkg/logging"
	"github.com/traslados/commute-ranker/pkg/matrix"
	"github.com/traslados/commute-ranker/pkg/ranking"
)

// maxRequestBytes caps the POST /rankings body.
const maxRequestBytes = 1 << 20

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	if s.opts.Redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.opts.Redis.Ping(ctx).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("Readiness check failed: Redis unreachable")
			http.Error(w, "Redis unavailable", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func (s *Server) regionsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string][]string{"regions": ranking.Regions})
}

func (s *Server) rankingsHandler(w http.ResponseWriter, r *http.Request) {
	var req RankingRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body", "")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object", "")
		return
	}

	q, err := s.buildQuery(req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), "")
		return
	}

	ctx := r.Context()
	if s.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RequestTimeout)
		defer cancel()
	}

	res, err := s.opts.Ranker.FetchAndRank(ctx, q)
	if err != nil {
		s.writeRankingError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toResponse(q.Mode, res))
}

// buildQuery applies request cleanup and configured defaults. Validation
// of the resulting query is left to the ranker.
func (s *Server) buildQuery(req RankingRequest) (ranking.Query, error) {
	q := ranking.Query{
		Origin:     strings.TrimSpace(req.Origin),
		Names:      ranking.CleanNames(req.Destinations),
		Credential: s.opts.APIKey,
		Mode:       s.opts.DefaultMode,
		BatchSize:  req.BatchSize,
	}
	if q.BatchSize == 0 {
		q.BatchSize = s.opts.BatchSize
	}

	if strings.TrimSpace(req.Mode) != "" {
		mode, err := matrix.ParseMode(req.Mode)
		if err != nil {
			return q, err
		}
		q.Mode = mode
	}

	switch {
	case req.AddressSuffix != nil:
		q.AddressSuffix = *req.AddressSuffix
	case strings.TrimSpace(req.Region) != "":
		suffix, err := ranking.SuffixForRegion(req.Region)
		if err != nil {
			return q, err
		}
		q.AddressSuffix = suffix
	default:
		q.AddressSuffix = s.opts.DefaultAddressSuffix
	}

	return q, nil
}

func (s *Server) writeRankingError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *ranking.APIError
	var alignErr *ranking.AlignmentError

	status := http.StatusBadGateway
	upstream := ""
	msg := "distance matrix request failed"

	switch {
	case errors.Is(err, ranking.ErrInvalidQuery):
		writeError(w, r, http.StatusBadRequest, err.Error(), "")
		return
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		msg = "ranking timed out"
	case errors.Is(err, client.ErrQuotaBlocked):
		status = http.StatusServiceUnavailable
		msg = "distance matrix quota exhausted, retry later"
	case errors.As(err, &apiErr):
		upstream = apiErr.Status
		msg = apiErr.Error()
	case errors.As(err, &alignErr):
		msg = alignErr.Error()
	}

	s.logger.Error().
		Err(err).
		Str("request_id", RequestIDFromContext(r.Context())).
		Int("status", status).
		Msg("Ranking run failed")

	writeError(w, r, status, msg, upstream)
}

func toResponse(mode matrix.Mode, res *ranking.Result) RankingResponse {
	out := RankingResponse{
		Mode:    mode.String(),
		Ranked:  make([]RankedDestination, 0, len(res.Outcomes)),
		Dropped: make([]DroppedDestination, 0, len(res.Dropped)),
		Batches: res.Batches,
	}

	for i, o := range res.Outcomes {
		out.Ranked = append(out.Ranked, RankedDestination{
			Rank:            i + 1,
			Name:            o.Name,
			Address:         o.Address,
			ResolvedAddress: o.ResolvedAddress,
			DurationSeconds: o.DurationSeconds,
			DurationText:    o.DurationText,
			DistanceMeters:  o.DistanceMeters,
			DistanceText:    o.DistanceText,
		})
	}
	for _, d := range res.Dropped {
		out.Dropped = append(out.Dropped, DroppedDestination{
			Name:    d.Name,
			Address: d.Address,
			Status:  d.Status,
		})
	}

	return out
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger := logging.NewLogger(logging.ComponentAPI)
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg, upstream string) {
	writeJSON(w, r, status, ErrorResponse{
		Error:     msg,
		Status:    upstream,
		RequestID: RequestIDFromContext(r.Context()),
	})
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/njchilds90/gocalc/internal/evaluator"
	"github.com/njchilds90/gocalc/internal/report"
	"github.com/njchilds90/gocalc/internal/runner"
)

type evaluateResponse struct {
	Operation evaluator.Operation `json:"operation"`
	Typeset   string              `json:"typeset"`
	Text      string              `json:"text"`
	OK        bool                `json:"ok"`
}

type renderRequest struct {
	Expression string `json:"expression"`
}

type operationInfo struct {
	Name   string   `json:"name"`
	Params []string `json:"params"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) operationsHandler(w http.ResponseWriter, r *http.Request) {
	ops := evaluator.Operations()
	out := make([]operationInfo, len(ops))
	for i, op := range ops {
		params := op.Params()
		if params == nil {
			params = []string{}
		}
		out[i] = operationInfo{Name: op.String(), Params: params}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) evaluateHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	res, err := s.compute(r.Context(), req)
	if err != nil {
		s.writeComputeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, evaluateResponse{
		Operation: req.Operation,
		Typeset:   res.Typeset,
		Text:      res.Text,
		OK:        res.OK(),
	})
}

func (s *Server) renderHandler(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Expression) == "" {
		writeError(w, http.StatusBadRequest, evaluator.ErrEmptyExpression)
		return
	}
	writeJSON(w, http.StatusOK, s.eval.Render(req.Expression))
}

func (s *Server) reportHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	res, err := s.compute(r.Context(), req)
	if err != nil {
		s.writeComputeError(w, err)
		return
	}
	body, err := report.Format(report.Entry{
		Time:       s.now(),
		Expression: req.Expression,
		Operation:  req.Operation,
		Result:     res,
	})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="gocalc-%s.txt"`, req.Operation))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// decodeRequest reads an evaluation request, fills blank parameters from
// the configured defaults and validates it. On failure the 400 response
// has already been written.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (evaluator.Request, bool) {
	var req evaluator.Request
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return req, false
	}
	fill := func(dst *string, def string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = def
		}
	}
	fill(&req.Variable, s.cfg.Variable)
	fill(&req.Lower, s.cfg.Lower)
	fill(&req.Upper, s.cfg.Upper)
	fill(&req.Point, s.cfg.Point)

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return req, false
	}
	return req, true
}

// compute runs req on a fresh runner and waits for its result. If ctx
// ends first the evaluation keeps running and its result is discarded;
// its inflight slot is freed only when it finishes.
func (s *Server) compute(ctx context.Context, req evaluator.Request) (evaluator.Result, error) {
	select {
	case s.inflight <- struct{}{}:
	default:
		return evaluator.Result{}, errOverloaded
	}
	release := func() { <-s.inflight }

	opts := []runner.Option{
		runner.WithLogger(s.log.With().Str("request_id", middleware.GetReqID(ctx)).Logger()),
	}
	if s.metrics != nil {
		opts = append(opts, runner.WithObserver(s.metrics))
	}
	run := runner.New(s.eval, opts...)

	results := make(chan evaluator.Result, 1)
	done := func(res evaluator.Result) {
		release()
		results <- res
	}
	if err := run.Submit(req, done); err != nil {
		release()
		return evaluator.Result{}, err
	}
	select {
	case res := <-results:
		return res, nil
	case <-ctx.Done():
		return evaluator.Result{}, ctx.Err()
	}
}

func (s *Server) writeComputeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errOverloaded):
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, err)
	case errors.Is(err, runner.ErrBusy):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.log.Debug().Err(err).Msg("client went away before the result was ready")
	default:
		writeError(w, http.StatusBadRequest, err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

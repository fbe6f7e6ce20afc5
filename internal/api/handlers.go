package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/whomstve123/mixing-api/internal/logging"
	"github.com/whomstve123/mixing-api/internal/mixing"
	"github.com/whomstve123/mixing-api/internal/services"
)

const requestIDHeader = "X-Request-Id"

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	statuses := s.checkDeps()
	dependencies := make([]DependencyStatus, len(statuses))
	for i, dep := range statuses {
		dependencies[i] = DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Detail:      dep.Detail,
		}
	}
	s.writeJSON(w, http.StatusOK, StatusResponse{
		Status:       "ok",
		Service:      ServiceName,
		Version:      s.version,
		Endpoints:    endpoints,
		Dependencies: dependencies,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, dep := range s.checkDeps() {
		if !dep.Optional && !dep.Available {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, dep.Name+" unavailable\n")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ok\n")
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Allow", "POST, OPTIONS")
	s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, http.StatusNotFound, "no route for "+r.Method+" "+r.URL.Path)
}

func (s *Server) handleMix(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set(requestIDHeader, requestID)
	ctx := services.WithRequestID(r.Context(), requestID)
	ctx = services.WithStage(ctx, string(mixing.StageValidating))
	logger := logging.WithContext(ctx, s.logger)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge,
				"Request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return
		}
		s.writeError(w, http.StatusBadRequest, "Could not read request body")
		return
	}

	req, err := mixing.ParseRequest(body)
	if err != nil {
		s.writeFailure(w, requestID, err)
		return
	}
	logger.Info("mix request accepted", logging.Int("stem_count", len(req.Stems)))

	result, err := s.runner.Run(ctx, requestID, req)
	if err != nil {
		s.writeFailure(w, requestID, err)
		return
	}
	defer s.runner.Finish(ctx, result)

	header := w.Header()
	header.Set("Content-Type", mixing.ContentType)
	header.Set("Content-Disposition", mixing.ContentDisposition(requestID))
	header.Set("Content-Length", strconv.FormatInt(result.Size, 10))
	w.WriteHeader(http.StatusOK)

	written, err := result.Stream(w)
	if err != nil {
		// Headers are already sent; the client sees a truncated body.
		logging.WarnEvent(logger, "mix stream interrupted", logging.EventStreamFailed,
			logging.Error(err),
			logging.Size("written", written),
			logging.Size("size", result.Size),
		)
		return
	}
	logger.Info("mix delivered", logging.Int64("bytes", written))
}

func (s *Server) writeFailure(w http.ResponseWriter, requestID string, err error) {
	var vErr *mixing.ValidationError
	if errors.As(err, &vErr) {
		s.writeJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:     vErr.Message,
			Received:  vErr.Received,
			RequestID: requestID,
		})
		return
	}
	s.writeJSON(w, services.HTTPStatus(err), ProcessingErrorResponse{
		Error:     failureMessage(err),
		Details:   err.Error(),
		RequestID: requestID,
	})
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrDownload):
		return "Failed to download stem"
	case errors.Is(err, services.ErrEncode):
		return "Failed to mix stems"
	default:
		return "Failed to process mix"
	}
}

package server

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/jrsteele09/signature-studio/internal/errors"
	"github.com/jrsteele09/signature-studio/internal/reporting"
	"github.com/rs/zerolog/log"
)

// maxBodyBytes bounds JSON request bodies. A 2200x700 PNG data URL fits well inside.
const maxBodyBytes = 8 << 20

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("failed to encode JSON response")
	}
}

// writeError answers with the error's taxonomy status and a message that is
// safe to show. Server side failures are logged and reported in full.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)

	var upstreamErr *errors.UpstreamError
	if errors.As(err, &upstreamErr) {
		s.metrics.UpstreamError(string(upstreamErr.Provider), string(upstreamErr.Kind))
	}

	if status >= http.StatusInternalServerError {
		log.Err(err).Str("path", r.URL.Path).Msg("request failed")
		reporting.ReportError(r.Context(), err)
	} else {
		log.Debug().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request rejected")
	}

	writeJSON(w, status, errorResponse{
		Success: false,
		Message: errors.PublicMessage(err),
		Error:   errors.Code(err),
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			return errors.NewValidationError("", "request body must be application/json")
		}
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return &errors.ValidationError{Message: "request body exceeds " + strconv.Itoa(maxBodyBytes) + " bytes", Err: err}
		case errors.Is(err, io.EOF):
			return &errors.ValidationError{Message: "request body is empty", Err: err}
		default:
			return &errors.ValidationError{Message: "request body is not valid JSON", Err: err}
		}
	}
	return nil
}

// writeAttachment sends content as a download named filename.
func writeAttachment(w http.ResponseWriter, contentType, filename string, content []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		log.Err(err).Str("filename", filename).Msg("failed to write attachment")
	}
}

package server

import (
	"net/http"

	"github.com/jrsteele09/signature-studio/internal/validation"
	"github.com/jrsteele09/signature-studio/signature"
)

type previewResponse struct {
	Success bool                `json:"success"`
	HTML    string              `json:"html"`
	Form    signature.FormState `json:"form"`
}

// readForm decodes, completes and validates a signature form body.
func (s *Server) readForm(w http.ResponseWriter, r *http.Request) (signature.FormState, error) {
	var form signature.FormState
	if err := decodeJSON(w, r, &form); err != nil {
		return form, err
	}
	if err := applyAddress(&form); err != nil {
		return form, err
	}
	return form, validation.Struct(form)
}

// PreviewHandler renders the live preview fragment. The form comes back with
// the selected address applied so the editor can show it.
func (s *Server) PreviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := s.readForm(w, r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		html, err := s.renderer.Preview(form)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.metrics.Artifact("preview")
		writeJSON(w, http.StatusOK, previewResponse{Success: true, HTML: html, Form: form})
	}
}

// HTMLHandler returns the standalone HTML document for copy and paste.
func (s *Server) HTMLHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := s.readForm(w, r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		doc, err := s.renderer.StandaloneHTML(form)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.metrics.Artifact("html")
		writeAttachment(w, "text/html; charset=utf-8", "signature.html", []byte(doc))
	}
}

// PNGHandler rasterizes the signature.
func (s *Server) PNGHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := s.readForm(w, r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		img, err := s.renderer.Rasterize(form)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.metrics.Artifact("png")
		writeAttachment(w, "image/png", "signature.png", img)
	}
}

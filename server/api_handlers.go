package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/signature-studio/doctemplate"
	"github.com/jrsteele09/signature-studio/graph"
	"github.com/jrsteele09/signature-studio/internal/errors"
	"github.com/jrsteele09/signature-studio/internal/validation"
	"github.com/jrsteele09/signature-studio/signature"
	"github.com/rs/zerolog/log"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

type generateRequest struct {
	TemplateName string              `json:"templateName" validate:"required,max=120"`
	UserData     signature.FormState `json:"userData"`
}

// document fetches the requested template and fills it with the form.
func (s *Server) document(ctx context.Context, req *generateRequest) (string, []byte, error) {
	if err := applyAddress(&req.UserData); err != nil {
		return "", nil, err
	}
	if err := validation.Struct(req); err != nil {
		return "", nil, err
	}

	tmpl, err := s.templates.Fetch(ctx, req.TemplateName)
	if err != nil {
		return "", nil, err
	}
	if tmpl.Fallback {
		s.metrics.TemplateFetch("fallback")
	} else {
		s.metrics.TemplateFetch("blob")
	}

	doc, err := doctemplate.Fill(tmpl.Data, req.UserData.TemplateData())
	if err != nil {
		return "", nil, err
	}
	return "signature-" + tmpl.Name, doc, nil
}

// applyAddress fills the address fields from the selected office unless the
// user has already typed an address of their own.
func applyAddress(f *signature.FormState) error {
	if f.AddressID == "" || f.Address != "" || f.City != "" || f.PostalCode != "" {
		return nil
	}
	return f.SelectAddress(f.AddressID)
}

// GenerateSignatureHandler returns the filled Word document as a download.
func (s *Server) GenerateSignatureHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}

		filename, doc, err := s.document(r.Context(), &req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.metrics.Artifact("docx")
		writeAttachment(w, docxContentType, filename, doc)
	}
}

type templateResponse struct {
	Success      bool     `json:"success"`
	Name         string   `json:"name"`
	Placeholders []string `json:"placeholders"`
	Content      string   `json:"content"`
	Fallback     bool     `json:"fallback"`
}

// TemplateHandler describes a template: its placeholders and plain text.
func (s *Server) TemplateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(r.URL.Query().Get("template"))
		if name == "" {
			s.writeError(w, r, errors.NewValidationError("template", "is required"))
			return
		}

		tmpl, err := s.templates.Fetch(r.Context(), name)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		placeholders, err := doctemplate.Placeholders(tmpl.Data)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		content, err := doctemplate.Text(tmpl.Data)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, templateResponse{
			Success:      true,
			Name:         tmpl.Name,
			Placeholders: placeholders,
			Content:      content,
			Fallback:     tmpl.Fallback,
		})
	}
}

type sendSignatureRequest struct {
	SignatureImage string `json:"signatureImage" validate:"required"`
	UserEmail      string `json:"userEmail" validate:"required,email"`
	UserName       string `json:"userName" validate:"max=160"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SendSignatureHandler mails the rendered signature image to the signed-in user.
func (s *Server) SendSignatureHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFrom(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		var req sendSignatureRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := validation.Struct(req); err != nil {
			s.writeError(w, r, err)
			return
		}
		if own := session.Identity.Email; own != "" && !strings.EqualFold(strings.TrimSpace(req.UserEmail), own) {
			s.writeError(w, r, errors.NewValidationError("userEmail", "must be your own email address"))
			return
		}

		if err := s.mailer.Send(r.Context(), req.SignatureImage, req.UserEmail, req.UserName); err != nil {
			s.metrics.Mail(false)
			s.writeError(w, r, err)
			return
		}

		s.metrics.Mail(true)
		writeJSON(w, http.StatusOK, messageResponse{
			Success: true,
			Message: "Signature sent to " + req.UserEmail,
		})
	}
}

type outlookRequest struct {
	SignatureHTML string `json:"signatureHtml" validate:"required"`
	// AccessToken is accepted for compatibility; the session's token is used instead.
	AccessToken string `json:"accessToken"`
}

type mailboxSummary struct {
	TimeZone string `json:"timeZone,omitempty"`
	Language string `json:"language,omitempty"`
}

type outlookResponse struct {
	Success       bool            `json:"success"`
	SignatureHTML string          `json:"signatureHtml"`
	Instructions  []string        `json:"instructions"`
	Mailbox       *mailboxSummary `json:"mailbox,omitempty"`
}

var outlookInstructions = []string{
	"Open Outlook on the web and go to Settings > Mail > Compose and reply.",
	"Create a new signature and paste the copied signature into the editor.",
	"Select it as the default signature for new messages and for replies and forwards.",
	"Save your changes.",
}

// OutlookSignatureHandler returns the signature with the steps to install it.
// Graph has no API for the Outlook signature itself, so nothing is written.
func (s *Server) OutlookSignatureHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFrom(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		var req outlookRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := validation.Struct(req); err != nil {
			s.writeError(w, r, err)
			return
		}

		resp := outlookResponse{
			Success:       true,
			SignatureHTML: req.SignatureHTML,
			Instructions:  outlookInstructions,
		}

		settings, err := s.graph.MailboxSettings(graph.WithToken(r.Context(), session.BearerToken))
		if err != nil {
			// The instructions do not depend on the mailbox, so this is not fatal
			log.Warn().Err(err).Msg("could not read mailbox settings")
		} else {
			resp.Mailbox = &mailboxSummary{
				TimeZone: settings.TimeZone,
				Language: settings.Language.DisplayName,
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

type addressesResponse struct {
	Success   bool                `json:"success"`
	Addresses []signature.Address `json:"addresses"`
}

func (s *Server) AddressesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, addressesResponse{Success: true, Addresses: signature.Addresses()})
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

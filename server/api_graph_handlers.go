package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/signature-studio/graph"
	"github.com/jrsteele09/signature-studio/sessions"
	"github.com/jrsteele09/signature-studio/signature"
)

const oneDriveFolder = "Signatures"

type profileResponse struct {
	Success bool                `json:"success"`
	Profile *graph.Profile      `json:"profile"`
	Form    signature.FormState `json:"form"`
}

// ProfileHandler returns the directory profile and the form it suggests.
func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFrom(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		profile, err := s.graph.Me(graph.WithToken(r.Context(), session.BearerToken))
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, profileResponse{
			Success: true,
			Profile: profile,
			Form:    formFromProfile(profile, session.Identity),
		})
	}
}

// formFromProfile prefills the editor from the directory, falling back to
// the sign-in claims for whatever the directory leaves empty.
func formFromProfile(p *graph.Profile, identity sessions.Identity) signature.FormState {
	form := signature.FromIdentity(identity)
	if p.GivenName != "" || p.Surname != "" {
		form.FirstName = p.GivenName
		form.LastName = p.Surname
	}
	if email := p.Email(); email != "" {
		form.Email = email
	}
	if len(p.UsageLocation) == 2 {
		form.CountryCode = strings.ToUpper(p.UsageLocation)
	}
	form.JobTitle = p.JobTitle
	form.Phone = p.Phone()
	form.Address = p.StreetAddress
	form.City = p.City
	form.PostalCode = p.PostalCode
	form.Country = p.Country
	return form
}

type mailboxSettingsResponse struct {
	Success  bool                   `json:"success"`
	Settings *graph.MailboxSettings `json:"settings"`
}

func (s *Server) MailboxSettingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFrom(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		settings, err := s.graph.MailboxSettings(graph.WithToken(r.Context(), session.BearerToken))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, mailboxSettingsResponse{Success: true, Settings: settings})
	}
}

type oneDriveResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Item    *graph.DriveItem `json:"item"`
}

// OneDriveHandler generates the Word signature and saves it to the user's OneDrive.
func (s *Server) OneDriveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFrom(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

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

		ctx := graph.WithToken(r.Context(), session.BearerToken)
		item, err := s.graph.UploadFile(ctx, oneDriveFolder+"/"+filename, doc, docxContentType)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.metrics.Artifact("docx")
		writeJSON(w, http.StatusOK, oneDriveResponse{
			Success: true,
			Message: "Saved " + item.Name + " to OneDrive",
			Item:    item,
		})
	}
}

package server

import (
	"html/template"
	"net/http"

	"github.com/jrsteele09/signature-studio/sessions"
	"github.com/jrsteele09/signature-studio/signature"
	"github.com/rs/zerolog/log"
)

// IndexHandler is the public landing page.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := pageData{}
		if session, ok := sessions.FromContext(r.Context()); ok {
			data.SignedIn = true
			data.UserName = session.Identity.Name
		}
		s.renderPage(w, r, "index.html", data)
	}
}

type dashboardPage struct {
	Form      signature.FormState
	Addresses []signature.Address
	Preview   template.HTML
}

// DashboardHandler renders the signature editor prefilled from the signed-in identity.
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFrom(r)
		if err != nil {
			redirectSuccess(w, r, RouteSignIn)
			return
		}

		form := signature.FromIdentity(session.Identity)
		preview, err := s.renderer.Preview(form)
		if err != nil {
			log.Err(err).Msg("failed to render dashboard preview")
		}

		s.renderPage(w, r, "dashboard.html", pageData{
			SignedIn: true,
			UserName: session.Identity.Name,
			Page: dashboardPage{
				Form:      form,
				Addresses: signature.Addresses(),
				// Preview comes out of html/template with every value escaped
				Preview: template.HTML(preview),
			},
		})
	}
}

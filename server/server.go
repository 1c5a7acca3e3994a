package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/signature-studio/doctemplate"
	"github.com/jrsteele09/signature-studio/graph"
	"github.com/jrsteele09/signature-studio/identity"
	"github.com/jrsteele09/signature-studio/internal/config"
	"github.com/jrsteele09/signature-studio/internal/metrics"
	"github.com/jrsteele09/signature-studio/server/authflowrepo"
	"github.com/jrsteele09/signature-studio/sessions"
	"github.com/jrsteele09/signature-studio/signature"
	"github.com/rs/zerolog/log"
)

// TemplateSource fetches named document templates.
type TemplateSource interface {
	Fetch(ctx context.Context, name string) (*doctemplate.Template, error)
}

// MailSender mails a rendered signature image to a recipient.
type MailSender interface {
	Send(ctx context.Context, imageDataURL, recipient, displayName string) error
}

// GraphAPI is the part of the graph client the handlers use. The bearer
// token travels in the context, see graph.WithToken.
type GraphAPI interface {
	Me(ctx context.Context) (*graph.Profile, error)
	MailboxSettings(ctx context.Context) (*graph.MailboxSettings, error)
	UploadFile(ctx context.Context, path string, content []byte, contentType string) (*graph.DriveItem, error)
}

type Dependencies struct {
	Config    config.Config
	Sessions  *sessions.Manager
	AuthFlows authflowrepo.Repo
	Identity  identity.Provider
	Templates TemplateSource
	Mailer    MailSender
	Graph     GraphAPI
	Renderer  *signature.Renderer
	Metrics   *metrics.Metrics
}

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	baseURL string
	mux     *http.ServeMux
	routes  []string
	config  config.Config

	sessions  *sessions.Manager
	authFlows authflowrepo.Repo
	identity  identity.Provider
	templates TemplateSource
	mailer    MailSender
	graph     GraphAPI
	renderer  *signature.Renderer
	metrics   *metrics.Metrics

	now func() time.Time
}

func New(deps Dependencies) (*Server, error) {
	switch {
	case deps.Config == nil:
		return nil, fmt.Errorf("[Server New] missing configuration")
	case deps.Sessions == nil || deps.AuthFlows == nil:
		return nil, fmt.Errorf("[Server New] missing session stores")
	case deps.Identity == nil:
		return nil, fmt.Errorf("[Server New] missing identity provider")
	case deps.Templates == nil || deps.Mailer == nil || deps.Graph == nil:
		return nil, fmt.Errorf("[Server New] missing upstream clients")
	case deps.Renderer == nil:
		return nil, fmt.Errorf("[Server New] missing signature renderer")
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}

	s := &Server{
		env:       deps.Config.GetEnv(),
		baseURL:   deps.Config.GetBaseURL(),
		mux:       http.NewServeMux(),
		config:    deps.Config,
		sessions:  deps.Sessions,
		authFlows: deps.AuthFlows,
		identity:  deps.Identity,
		templates: deps.Templates,
		mailer:    deps.Mailer,
		graph:     deps.Graph,
		renderer:  deps.Renderer,
		metrics:   deps.Metrics,
		now:       time.Now,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Debug().Msgf("[%-19s] %s", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}

// origin is the application's public origin. Without BASE_URL the request's own host is used.
func (s *Server) origin(r *http.Request) string {
	if s.baseURL != "" {
		return s.baseURL
	}
	return getScheme(r) + "://" + r.Host
}

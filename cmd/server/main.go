package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/signature-studio/doctemplate"
	"github.com/jrsteele09/signature-studio/graph"
	"github.com/jrsteele09/signature-studio/identity"
	"github.com/jrsteele09/signature-studio/internal/config"
	"github.com/jrsteele09/signature-studio/internal/logging"
	"github.com/jrsteele09/signature-studio/internal/metrics"
	"github.com/jrsteele09/signature-studio/internal/reporting"
	"github.com/jrsteele09/signature-studio/mailer"
	"github.com/jrsteele09/signature-studio/server"
	"github.com/jrsteele09/signature-studio/server/authflowrepo"
	"github.com/jrsteele09/signature-studio/sessions"
	"github.com/jrsteele09/signature-studio/signature"
	"github.com/rs/zerolog/log"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("error running server")
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logging.Setup(c.GetEnv(), c.GetLogLevel())
	if err := config.Validate(c); err != nil {
		return err
	}

	flush, err := reporting.Init(c.GetSentryDSN(), c.GetEnv(), version)
	if err != nil {
		log.Warn().Err(err).Msg("error reporting disabled")
	}
	defer flush(context.Background())

	displayAppname(c.GetAppName())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deps, closeDeps, err := buildDependencies(ctx, c)
	if err != nil {
		return err
	}
	defer closeDeps()

	handler, err := server.New(deps)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() { errs <- listenAndServe(httpServer) }()

	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

// buildDependencies wires the server's collaborators. The returned func
// releases the session store and the sign-in flow cache.
func buildDependencies(ctx context.Context, c config.Config) (deps server.Dependencies, closeDeps func(), err error) {
	store, err := sessionStore(ctx, c)
	if err != nil {
		return deps, nil, err
	}
	flows := authflowrepo.NewCacheRepo(c.GetSignInFlowTimeout())
	closeDeps = func() {
		flows.Close()
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing session store")
		}
	}
	defer func() {
		if err != nil {
			closeDeps()
		}
	}()

	codec, err := sessions.NewCookieCodec(c.GetSessionSecret())
	if err != nil {
		return deps, nil, err
	}
	manager := sessions.NewManager(store, codec, sessions.ManagerOptions{
		MaxAge:       c.GetMaxSessionAge(),
		SecureCookie: isHTTPS(c.GetBaseURL()),
	})

	// The provider keeps its context for later signing key fetches
	provider, err := identity.NewOIDCProvider(context.Background(), identity.Options{
		Issuer:       c.GetIdentityIssuer(),
		ClientID:     c.GetIdentityClientID(),
		ClientSecret: c.GetIdentityClientSecret(),
		RedirectURL:  c.GetBaseURL() + identity.CallbackPath,
		Scopes:       c.GetIdentityScopes(),
	})
	if err != nil {
		return deps, nil, fmt.Errorf("identity provider: %w", err)
	}

	templates, err := templateClient(c)
	if err != nil {
		return deps, nil, err
	}

	renderer, err := signature.NewRenderer(signature.Branding{
		Company: c.GetCompanyName(),
		Website: c.GetCompanyWebsite(),
		Accent:  c.GetAccentColor(),
	})
	if err != nil {
		return deps, nil, err
	}

	return server.Dependencies{
		Config:    c,
		Sessions:  manager,
		AuthFlows: flows,
		Identity:  provider,
		Templates: templates,
		Mailer: mailer.NewDispatcher(mailer.Options{
			Host:        c.GetSmtpHost(),
			Port:        c.GetSmtpPort(),
			Username:    c.GetSmtpUser(),
			Password:    c.GetSmtpPassword(),
			From:        c.GetSmtpFrom(),
			FromName:    c.GetSmtpFromName(),
			ImplicitTLS: c.GetSmtpImplicitTLS(),
			StartTLS:    c.GetSmtpStartTLS(),
			Timeout:     c.GetSmtpTimeout(),
		}),
		Graph:    graph.NewClient(graph.Options{BaseURL: c.GetGraphBaseURL()}),
		Renderer: renderer,
		Metrics:  metrics.New(),
	}, closeDeps, nil
}

func sessionStore(ctx context.Context, c config.Config) (sessions.Store, error) {
	if c.GetSessionStore() != config.SessionStoreRedis {
		log.Info().Msg("using in-memory session store")
		return sessions.NewMemoryStore(), nil
	}
	client, err := sessions.DialRedis(ctx, c.GetRedisAddr(), c.GetRedisPassword(), c.GetRedisDB())
	if err != nil {
		return nil, err
	}
	log.Info().Str("addr", c.GetRedisAddr()).Msg("using redis session store")
	return sessions.NewRedisStore(client, c.GetRedisPrefix()), nil
}

func templateClient(c config.Config) (*doctemplate.Client, error) {
	var credential azcore.TokenCredential
	if c.GetBlobUseAAD() {
		cred, err := azidentity.NewClientSecretCredential(
			c.GetIdentityTenantID(), c.GetIdentityClientID(), c.GetIdentityClientSecret(), nil)
		if err != nil {
			return nil, fmt.Errorf("blob credential: %w", err)
		}
		credential = cred
	}
	if c.GetBlobEndpoint() == "" {
		log.Warn().Msg("BLOB_ENDPOINT not set, the built-in template will be used")
	}
	return doctemplate.NewClient(doctemplate.Options{
		Endpoint:   c.GetBlobEndpoint(),
		Container:  c.GetBlobContainer(),
		SASToken:   c.GetBlobSASToken(),
		Credential: credential,
		Strict:     c.GetTemplateFallbackMode() == config.TemplateFallbackStrict,
	})
}

func isHTTPS(baseURL string) bool {
	u, err := url.Parse(baseURL)
	return err == nil && u.Scheme == "https"
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

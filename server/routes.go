package server

import (
	"net/http"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteIndex+"{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare(s.RouteGuardMiddleware)...))

	// SIGN-IN
	s.RegisterRouteHandler("GET "+RouteSignIn, ChainMiddleware(s.SignInPageHandler(), s.HTMLMiddleWare(s.RouteGuardMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteSignInStart, ChainMiddleware(s.SignInStartHandler(), s.HTMLMiddleWare(s.RouteGuardMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteCallback, ChainMiddleware(s.CallbackHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteCallback, ChainMiddleware(s.CallbackHandler(), s.HTMLMiddleWare()...)) // For form_post response mode
	s.RegisterRouteHandler("GET "+RouteSignOut, ChainMiddleware(s.SignOutHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteSignOut, ChainMiddleware(s.SignOutHandler(), s.HTMLMiddleWare()...))

	// Protected pages
	s.RegisterRouteHandler("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), s.HTMLMiddleWare(s.RouteGuardMiddleware)...))

	// Signature API
	s.RegisterRouteHandler("POST "+RouteAPIGenerate, ChainMiddleware(s.GenerateSignatureHandler(), s.APIMiddleware(s.RouteGuardMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteAPITemplate, ChainMiddleware(s.TemplateHandler(), s.APIMiddleware(s.RouteGuardMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAPISendSignature, ChainMiddleware(s.SendSignatureHandler(), s.APIMiddleware(s.RouteGuardMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAPIOutlook, ChainMiddleware(s.OutlookSignatureHandler(), s.APIMiddleware(s.RouteGuardMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAPIPreview, ChainMiddleware(s.PreviewHandler(), s.APIMiddleware(s.RouteGuardMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAPIHTML, ChainMiddleware(s.HTMLHandler(), s.APIMiddleware(s.RouteGuardMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAPIPNG, ChainMiddleware(s.PNGHandler(), s.APIMiddleware(s.RouteGuardMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteAPIAddresses, ChainMiddleware(s.AddressesHandler(), s.APIMiddleware(s.RouteGuardMiddleware)...))

	// Graph backed API
	s.RegisterRouteHandler("GET "+RouteAPIProfile, ChainMiddleware(s.ProfileHandler(), s.APIMiddleware(s.RouteGuardMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteAPIMailboxSettings, ChainMiddleware(s.MailboxSettingsHandler(), s.APIMiddleware(s.RouteGuardMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAPIOneDrive, ChainMiddleware(s.OneDriveHandler(), s.APIMiddleware(s.RouteGuardMiddleware)...))

	// CORS preflight never carries the session cookie, so it is not guarded
	s.RegisterRouteHandler("OPTIONS "+RouteAPIPrefix, ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {}, s.APIMiddleware()...))

	// Operations
	s.RegisterRouteHandler("GET "+RouteAPIHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics.Handler())

	s.RegisterRouteHandler("GET "+RouteStatic, ChainMiddleware(FileServerHandler().ServeHTTP, s.HTMLMiddleWare(s.CacheMiddleware)...))
}

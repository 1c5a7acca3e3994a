package server

import (
	"github.com/jrsteele09/signature-studio/identity"
	"github.com/jrsteele09/signature-studio/redirect"
)

const callbackParam = redirect.CallbackParam

// Pages
const (
	RouteIndex       = "/"
	RouteSignIn      = redirect.SignInPath
	RouteSignInStart = redirect.SignInPath + "/start"
	RouteCallback    = identity.CallbackPath
	RouteSignOut     = "/auth/signout"
	RouteDashboard   = redirect.DashboardPath
)

// Signature API
const (
	RouteAPIPrefix          = "/api/"
	RouteAPIGenerate        = "/api/signature/generate"
	RouteAPITemplate        = "/api/template"
	RouteAPISendSignature   = "/api/send-signature"
	RouteAPIOutlook         = "/api/outlook-signature"
	RouteAPIPreview         = "/api/signature/preview"
	RouteAPIHTML            = "/api/signature/html"
	RouteAPIPNG             = "/api/signature/png"
	RouteAPIOneDrive        = "/api/signature/onedrive"
	RouteAPIProfile         = "/api/profile"
	RouteAPIMailboxSettings = "/api/mailbox-settings"
	RouteAPIAddresses       = "/api/addresses"
	RouteAPIHealth          = "/api/health"
)

// Operations
const (
	RouteMetrics = "/metrics"
	RouteStatic  = "/static/"
)

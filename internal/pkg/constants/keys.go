package constants

const (
	CookieKeyAuthToken = "auth_token"
	HeaderRequestID    = "X-Request-ID"

	CtxKeyUserID = "user_id"
	CtxKeyClaims = "claims"
	CtxKeyToken  = "token"

	RoleUser  = "user"
	RoleAdmin = "admin"

	PlanFree = "free"
)

// Viper keys.
const (
	ViperConfigFile = "config"

	ViperServerAddr           = "server.addr"
	ViperServerAllowedOrigins = "server.allowed_origins"

	ViperDBDSN = "db.dsn"

	ViperBackendBaseURL      = "backend.base_url"
	ViperBackendTimeout      = "backend.timeout"
	ViperBackendFetchRetries = "backend.fetch_retries"

	ViperSecretKey    = "auth.secret"
	ViperAuthTokenTTL = "auth.token_ttl"

	ViperStripeSecretKey       = "stripe.secret_key"
	ViperStripeWebhookSecret   = "stripe.webhook_secret"
	ViperStripePrices          = "stripe.prices"
	ViperStripeSuccessURL      = "stripe.success_url"
	ViperStripeCancelURL       = "stripe.cancel_url"
	ViperStripePortalReturnURL = "stripe.portal_return_url"

	ViperLogLevel = "log.level"

	ViperCacheMaxRuns = "cache.max_runs"

	ViperPrefsFile = "prefs.file"
)

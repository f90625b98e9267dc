// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	auditlogfeature "github.com/dalemusser/greenlink/internal/app/features/auditlog"
	collectionsfeature "github.com/dalemusser/greenlink/internal/app/features/collections"
	collectorsfeature "github.com/dalemusser/greenlink/internal/app/features/collectors"
	errorsfeature "github.com/dalemusser/greenlink/internal/app/features/errors"
	healthfeature "github.com/dalemusser/greenlink/internal/app/features/health"
	householdsfeature "github.com/dalemusser/greenlink/internal/app/features/households"
	loginfeature "github.com/dalemusser/greenlink/internal/app/features/login"
	logoutfeature "github.com/dalemusser/greenlink/internal/app/features/logout"
	logsfeature "github.com/dalemusser/greenlink/internal/app/features/logs"
	mefeature "github.com/dalemusser/greenlink/internal/app/features/me"
	paymentsfeature "github.com/dalemusser/greenlink/internal/app/features/payments"
	reportsfeature "github.com/dalemusser/greenlink/internal/app/features/reports"
	routesfeature "github.com/dalemusser/greenlink/internal/app/features/routes"
	"github.com/dalemusser/greenlink/internal/app/store/audit"
	userstore "github.com/dalemusser/greenlink/internal/app/store/users"
	"github.com/dalemusser/greenlink/internal/app/system/auditlog"
	"github.com/dalemusser/greenlink/internal/app/system/auth"
	"github.com/dalemusser/greenlink/internal/app/system/ratelimit"
	"github.com/dalemusser/greenlink/internal/app/system/servicedate"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. It builds the session manager, the
// audit logger and the service calendar, then mounts one JSON feature
// router per resource. Unknown paths and methods answer with JSON errors.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// LoadSessionUser re-reads the account on every request, so a disabled
	// account or changed role takes effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	cal, err := servicedate.Load(appCfg.TimeZone)
	if err != nil {
		logger.Error("time zone load failed", zap.String("time_zone", appCfg.TimeZone), zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	errLog := errorsfeature.NewErrorLogger(logger)
	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	r := chi.NewRouter()
	r.NotFound(errorsfeature.NotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.MongoClient, cal, logger)))

	// Authentication
	loginHandler := loginfeature.NewHandler(db, sessionMgr, errLog, auditLog, ratelimit.NewLoginLimiter(), logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLog, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	meHandler := mefeature.NewHandler(db, cal, errLog, logger)
	r.Mount("/me", mefeature.Routes(meHandler, sessionMgr))

	// Registry management
	householdsHandler := householdsfeature.NewHandler(db, cal, errLog, auditLog, logger)
	r.Mount("/households", householdsfeature.Routes(householdsHandler, sessionMgr))

	collectorsHandler := collectorsfeature.NewHandler(db, errLog, auditLog, logger)
	r.Mount("/collectors", collectorsfeature.Routes(collectorsHandler, sessionMgr))

	// Daily work
	routesHandler := routesfeature.NewHandler(db, cal, errLog, auditLog, logger)
	r.Mount("/routes", routesfeature.Routes(routesHandler, sessionMgr))

	collectionsHandler := collectionsfeature.NewHandler(db, cal, errLog, logger)
	r.Mount("/collections", collectionsfeature.Routes(collectionsHandler, sessionMgr))

	paymentsHandler := paymentsfeature.NewHandler(db, cal, errLog, logger)
	r.Mount("/payments", paymentsfeature.Routes(paymentsHandler, sessionMgr))

	// Oversight
	logsHandler := logsfeature.NewHandler(db, errLog, logger)
	r.Mount("/logs", logsfeature.Routes(logsHandler, sessionMgr))

	reportsHandler := reportsfeature.NewHandler(db, cal, errLog, logger)
	r.Mount("/reports", reportsfeature.Routes(reportsHandler, sessionMgr))

	auditHandler := auditlogfeature.NewHandler(db, errLog, logger)
	r.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

	return r, nil
}

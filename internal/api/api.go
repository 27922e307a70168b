package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/ougirez/supplytwin/internal/api/controller"
	"github.com/ougirez/supplytwin/internal/pkg/constants"
	"github.com/ougirez/supplytwin/internal/pkg/store"
	"github.com/ougirez/supplytwin/internal/service/admin"
	"github.com/ougirez/supplytwin/internal/service/auth"
	"github.com/ougirez/supplytwin/internal/service/billing"
	"github.com/ougirez/supplytwin/internal/service/scenario"
	"github.com/ougirez/supplytwin/internal/service/simulation"
	"github.com/ougirez/supplytwin/internal/service/user"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
)

var defaultAllowedOrigins = []string{"http://localhost:3000"}

type Deps struct {
	Store          store.Store
	Backend        simulation.Backend
	BillingGateway billing.Gateway
	BillingConfig  billing.Config
	MaxCachedRuns  int
	AllowedOrigins []string
	// Ping reports database health for /healthz. Optional.
	Ping func(ctx context.Context) error
}

type APIService struct {
	router *echo.Echo
	store  store.Store
	ping   func(ctx context.Context) error
}

func (svc *APIService) Serve(addr string) error {
	if err := svc.router.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (svc *APIService) Shutdown(ctx context.Context) error {
	return svc.router.Shutdown(ctx)
}

// Handler exposes the router, mostly for tests.
func (svc *APIService) Handler() http.Handler {
	return svc.router
}

func NewAPIService(deps Deps) (*APIService, error) {
	if deps.Store == nil {
		return nil, errors.New("api: store is required")
	}
	if deps.Backend == nil {
		return nil, errors.New("api: simulation backend is required")
	}
	if viper.GetString(constants.ViperSecretKey) == "" {
		return nil, fmt.Errorf("api: %s is required", constants.ViperSecretKey)
	}

	svc := &APIService{router: echo.New(), store: deps.Store, ping: deps.Ping}

	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = defaultAllowedOrigins
	}

	svc.router.HideBanner = true
	svc.router.Logger.SetLevel(log.WARN)
	svc.router.Validator = NewValidator()
	svc.router.Binder = NewBinder()
	svc.router.JSONSerializer = JSONSerializer{}
	svc.router.HTTPErrorHandler = httpErrorHandler
	svc.router.Use(middleware.Recover())
	svc.router.Use(RequestIDMiddleware)
	svc.router.Use(middleware.Logger())
	svc.router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     []string{echo.GET, echo.PUT, echo.POST, echo.DELETE, echo.OPTIONS},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	simulations := simulation.NewService(
		deps.Backend,
		simulation.StoreRecorder(deps.Store),
		deps.Store,
		simulation.Config{MaxCachedRuns: deps.MaxCachedRuns},
	)

	cntrl := controller.NewController(
		auth.NewService(deps.Store),
		user.NewUserService(deps.Store),
		scenario.NewService(deps.Store),
		simulations,
		billing.NewService(deps.Store, deps.BillingGateway, deps.BillingConfig),
		admin.NewService(deps.Store),
	)

	svc.router.GET("/healthz", svc.healthz)
	svc.router.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := svc.router.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/signup", cntrl.Signup)
	authGroup.POST("/login", cntrl.Login)

	api.POST("/stripe/webhook", cntrl.StripeWebhook)

	private := api.Group("", svc.AuthMiddleware)

	private.GET("/me", cntrl.GetMe)
	private.PUT("/me", cntrl.UpdateMe)
	private.GET("/prefs/:key", cntrl.GetPref)
	private.PUT("/prefs/:key", cntrl.PutPref)
	private.DELETE("/prefs/:key", cntrl.DeletePref)

	private.POST("/run", cntrl.RunSimulation)

	simulationsGroup := private.Group("/simulations")
	simulationsGroup.GET("", cntrl.ListSimulations)
	simulationsGroup.GET("/:id", cntrl.GetSimulation)
	simulationsGroup.DELETE("/:id", cntrl.DeleteSimulation)
	simulationsGroup.GET("/:id/outputs", cntrl.GetOutputs)
	simulationsGroup.POST("/:id/refresh", cntrl.RefreshOutputs)
	simulationsGroup.GET("/:id/chart", cntrl.GetChart)
	simulationsGroup.GET("/:id/kpis", cntrl.GetKPIs)
	simulationsGroup.GET("/:id/compare", cntrl.CompareSimulations)
	simulationsGroup.GET("/:id/table/:output", cntrl.GetTable)
	simulationsGroup.GET("/:id/export/:output", cntrl.ExportTable)

	scenarios := private.Group("/scenarios")
	scenarios.GET("", cntrl.ListScenarios)
	scenarios.POST("", cntrl.CreateScenario)
	scenarios.GET("/:id", cntrl.GetScenario)
	scenarios.PUT("/:id", cntrl.UpdateScenario)
	scenarios.DELETE("/:id", cntrl.DeleteScenario)

	private.POST("/create-checkout-session", cntrl.CreateCheckoutSession)
	private.POST("/customer-portal", cntrl.CustomerPortal)

	adminGroup := private.Group("/admin", svc.AdminMiddleware)
	adminGroup.GET("/users", cntrl.AdminListUsers)
	adminGroup.PUT("/users/:id", cntrl.AdminUpdateUser)
	adminGroup.DELETE("/users/:id", cntrl.AdminDeleteUser)
	adminGroup.GET("/simulations", cntrl.AdminListSimulations)
	adminGroup.DELETE("/simulations/:id", cntrl.AdminDeleteSimulation)
	adminGroup.GET("/scenarios", cntrl.AdminListScenarios)
	adminGroup.DELETE("/scenarios/:id", cntrl.AdminDeleteScenario)
	adminGroup.GET("/stats", cntrl.AdminStats)

	return svc, nil
}

func (svc *APIService) healthz(ctx echo.Context) error {
	if svc.ping != nil {
		if err := svc.ping(ctx.Request().Context()); err != nil {
			return ctx.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		}
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

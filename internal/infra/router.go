package infra

import (
	stderrors "errors"
	"net/http"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/go-redis/redis/v9"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/yalovets/cleancrm/docs"
	"github.com/yalovets/cleancrm/internal/cache"
	"github.com/yalovets/cleancrm/internal/config"
	apperrors "github.com/yalovets/cleancrm/internal/errors"
	"github.com/yalovets/cleancrm/internal/handlers"
	"github.com/yalovets/cleancrm/internal/middleware"
	modelauth "github.com/yalovets/cleancrm/internal/model/auth"
	"github.com/yalovets/cleancrm/internal/repository"
	"github.com/yalovets/cleancrm/internal/service"
	"github.com/yalovets/cleancrm/internal/validation"
	"github.com/yalovets/cleancrm/pkg/db/transactor"
)

// Router wires repositories, services and handlers into the echo application
func Router(pgPool *pgxpool.Pool, mongoClient *mongo.Client, redisClient *redis.Client, cfg config.Config) (*echo.Echo, error) {
	e := echo.New()

	v, err := buildValidator(e)
	if err != nil {
		return nil, err
	}
	e.Validator = v
	e.HTTPErrorHandler = HTTPErrorHandler(e)

	jwtCfg := cfg.AuthCfg.JwtCfg

	trx := transactor.NewPgxTransactor(pgPool)
	executor := transactor.NewPgxWithinTransactionExecutor(pgPool)

	jwtIssuer := modelauth.NewJwtIssuer(jwtCfg.Issuer, jwtCfg.SigningMethod, jwtCfg.TimeToLive, jwtCfg.PrivateKey)
	jwtValidator := modelauth.NewJwtValidator(jwtCfg.SigningMethod, jwtCfg.PublicKey)

	authorizeMw := middleware.Authorize(jwtValidator)

	userRps := repository.NewPostgresUserRepository(executor)
	rfrTokenRps := repository.NewPostgresRefreshTokenRepository(executor)
	pgCustomerRps := repository.NewPostgresCustomerRepository(pgPool)
	mongoCustomerRps := repository.NewMongoCustomerRepository(mongoClient, cfg.MongoCfg.Database)

	customerCache := cache.NewRedisCustomerCacheRepository(redisClient)

	authSvc := service.NewAuthService(jwtIssuer, &cfg.AuthCfg.RefreshTokenCfg, trx, userRps, rfrTokenRps)
	customerSvcV1 := service.NewCustomerService(pgCustomerRps, customerCache)
	customerSvcV2 := service.NewCustomerService(mongoCustomerRps, customerCache)

	authHandler := handlers.NewAuthHTTPHandler(authSvc)
	customerHandlerV1 := handlers.NewCustomerHTTPHandler(customerSvcV1)
	customerHandlerV2 := handlers.NewCustomerHTTPHandler(customerSvcV2)

	e.GET("/swagger/*", echoswagger.WrapHandler)

	api := e.Group("/api")

	authAPI := api.Group("/auth")
	authAPI.POST("/signup", authHandler.Signup)
	authAPI.POST("/login", authHandler.Login)
	authAPI.POST("/logout", authHandler.Logout)
	authAPI.POST("/refresh", authHandler.Refresh)

	customersAPIV1 := api.Group("/v1/customers", authorizeMw)
	customersAPIV1.GET("", customerHandlerV1.GetAll)
	customersAPIV1.GET("/:id", customerHandlerV1.Get)
	customersAPIV1.POST("", customerHandlerV1.Post)
	customersAPIV1.PATCH("/:id", customerHandlerV1.Patch)
	customersAPIV1.DELETE("/:id", customerHandlerV1.DeleteByID)

	customersAPIV2 := api.Group("/v2/customers", authorizeMw)
	customersAPIV2.GET("", customerHandlerV2.GetAll)
	customersAPIV2.GET("/:id", customerHandlerV2.Get)
	customersAPIV2.POST("", customerHandlerV2.Post)
	customersAPIV2.PATCH("/:id", customerHandlerV2.Patch)
	customersAPIV2.DELETE("/:id", customerHandlerV2.DeleteByID)

	return e, nil
}

// HTTPErrorHandler translates service errors to plain-text responses:
// business rule violations become 400, missing entries 404, anything
// unexpected is logged and hidden behind 500.
func HTTPErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var notFoundErr *apperrors.EntryNotFoundErr
		var businessErr *apperrors.BusinessErr
		var payloadErr *validation.PayloadError
		var httpErr *echo.HTTPError

		switch {
		case stderrors.As(err, &notFoundErr):
			err = c.String(http.StatusNotFound, notFoundErr.Error())
		case stderrors.As(err, &businessErr):
			err = c.String(http.StatusBadRequest, businessErr.Error())
		case stderrors.As(err, &payloadErr):
			err = c.String(http.StatusBadRequest, payloadErr.Error())
		case stderrors.As(err, &httpErr):
			e.DefaultHTTPErrorHandler(err, c)
			return
		default:
			logrus.WithField("component", "http").Errorf("%s %s failed - %v", c.Request().Method, c.Request().URL.Path, err)
			err = c.String(http.StatusInternalServerError, "Internal error")
		}

		if err != nil {
			logrus.WithField("component", "http").Errorf("failed to write error response - %v", err)
		}
	}
}

func buildValidator(e *echo.Echo) (*validation.EchoValidator, error) {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)

	translator, ok := uni.GetTranslator("en")
	if !ok {
		return nil, stderrors.New("failed to find en translator")
	}

	validate := validator.New()
	if err := entranslations.RegisterDefaultTranslations(validate, translator); err != nil {
		return nil, err
	}

	return validation.Echo(validate, translator), nil
}

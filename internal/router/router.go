package router

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"catalog/internal/auth"
	"catalog/internal/config"
	apperrors "catalog/internal/errors"
	"catalog/internal/handler"
	"catalog/internal/middleware"
	"catalog/internal/model"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth    *handler.AuthHandler
	Product *handler.ProductHandler
	User    *handler.UserHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, log *slog.Logger, authn *middleware.Authenticator, h Handlers) {
	e.HTTPErrorHandler = ErrorHandler
	e.Validator = NewValidator()

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
	}))

	e.GET("/", handler.Home)
	e.GET("/healthz", handler.Healthz)
	e.GET("/apidocs/*", echoSwagger.WrapHandler)

	requireUser := []echo.MiddlewareFunc{authn.Require(auth.KindAccess), authn.LoadActor}
	requireAdmin := []echo.MiddlewareFunc{authn.Require(auth.KindAccess), authn.LoadActor, middleware.RequireRole(model.RoleAdmin)}

	api := e.Group("/api")

	// Public routes
	api.POST("/register", h.Auth.Register)
	api.POST("/login", h.Auth.Login)
	api.POST("/refresh", h.Auth.Refresh, authn.Require(auth.KindRefresh))

	// Product routes: reads are public, writes need an access token
	api.GET("/products", h.Product.ListProducts, authn.Optional())
	api.GET("/products/:id", h.Product.GetProduct, authn.Optional())
	api.POST("/products", h.Product.CreateProduct, requireUser...)
	api.PUT("/products/:id", h.Product.UpdateProduct, requireUser...)
	api.DELETE("/products/:id", h.Product.DeleteProduct, requireUser...)

	api.GET("/me", h.User.Me, requireUser...)

	// Admin user management
	api.GET("/users", h.User.ListUsers, requireAdmin...)
	api.GET("/users/:id", h.User.GetUser, requireAdmin...)
	api.PUT("/users/:id/role", h.User.SetRole, requireAdmin...)
}

// ErrorHandler renders every error as a JSON {msg, code} body. Domain errors
// that reach it unmapped go through MapErrorToHTTP, so internals never leak.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		httpErr := apperrors.MapErrorToHTTP(err)
		he = echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	body := he.Message
	switch m := body.(type) {
	case string:
		body = apperrors.ErrorResponse{Msg: m}
	case error:
		body = apperrors.ErrorResponse{Msg: m.Error()}
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(he.Code)
	} else {
		err = c.JSON(he.Code, body)
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface. The first failing field is
// returned as a *errors.ValidationError.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return apperrors.Required(field)
	case "max":
		return apperrors.Invalid(field, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	default:
		return apperrors.Invalid(field, field+" is invalid")
	}
}

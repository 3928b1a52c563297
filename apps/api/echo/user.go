package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/econspark/core"
	"github.com/trezcool/econspark/core/user"
)

type userApi struct {
	svc  *user.Service
	conf *core.Config
}

func registerUserAPI(g *echo.Group, authed []echo.MiddlewareFunc, svc *user.Service, conf *core.Config) {
	api := userApi{svc: svc, conf: conf}

	ug := g.Group("/users")

	// un-authed endpoints
	// TODO: rate limit `/login` & `/register`
	ug.POST("/register", api.register)
	ug.POST("/login", api.login)
	ug.GET("/roles", api.queryRoles)

	// authed endpoints
	ag := ug.Group("", authed...)
	ag.POST("/token-refresh", api.refreshToken)
	ag.GET("/me", api.me)
}

// Handlers

func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := bind(ctx, &data); err != nil {
		return err
	}

	usr, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	token, err := GenerateToken(GetUserClaims(usr, api.conf), api.conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusCreated, RegisterResponse{User: usr, Token: token})
}

func (api *userApi) login(ctx echo.Context) error {
	var data user.Credentials
	if err := bind(ctx, &data); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(GetUserClaims(usr, api.conf), api.conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.svc, api.conf)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) me(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, ctxUser(ctx))
}

func (api *userApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, user.Roles)
}

type (
	LoginResponse struct {
		Token string `json:"token"`
	}

	RegisterResponse struct {
		User  user.User `json:"user"`
		Token string    `json:"token"`
	}
)

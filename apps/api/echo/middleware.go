package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/econspark/core/user"
)

// contextUserMiddleware resolves the token subject to a stored user; tokens of deleted users are rejected.
func contextUserMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if _, err := getContextUser(ctx, svc); err != nil {
				return err
			}
			return next(ctx)
		}
	}
}

// ctxUser returns the user set by contextUserMiddleware.
func ctxUser(ctx echo.Context) user.User {
	usr, _ := ctx.Get(contextUserKey).(user.User)
	return usr
}

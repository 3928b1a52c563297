package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// paramID reads a positive integer path parameter; anything else is a 404.
func paramID(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

// bind decodes the request body into data, turning decoding failures into a 400.
func bind(ctx echo.Context, data interface{}) error {
	if err := ctx.Bind(data); err != nil {
		if herr, ok := err.(*echo.HTTPError); ok {
			return herr
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

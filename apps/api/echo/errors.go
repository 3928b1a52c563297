package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/econspark/core"
	"github.com/trezcool/econspark/core/access"
	"github.com/trezcool/econspark/core/activity"
	"github.com/trezcool/econspark/core/classroom"
	"github.com/trezcool/econspark/core/content"
	"github.com/trezcool/econspark/core/user"
)

var (
	errUnauthorized   = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errRefreshExpired = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpNotFound   = echo.NewHTTPError(http.StatusNotFound, "not found")

	// domainErrorCodes maps the domain sentinel errors to their status code.
	// The error text itself is user-facing.
	domainErrorCodes = map[error]int{
		user.ErrInvalidCredentials:     http.StatusBadRequest,
		user.ErrUsernameExists:         http.StatusConflict,
		user.ErrNotFound:               http.StatusNotFound,
		access.ErrPermissionDenied:     http.StatusForbidden,
		classroom.ErrNotFound:          http.StatusNotFound,
		classroom.ErrClassNameExists:   http.StatusConflict,
		classroom.ErrAlreadyEnrolled:   http.StatusConflict,
		classroom.ErrSelfEnrollment:    http.StatusBadRequest,
		classroom.ErrJoinCodeExhausted: http.StatusServiceUnavailable,
		content.ErrSetNotFound:         http.StatusNotFound,
		content.ErrQuestionNotFound:    http.StatusNotFound,
		content.ErrSetNameExists:       http.StatusConflict,
		activity.ErrAssignmentNotFound: http.StatusNotFound,
	}
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		if status, ok := domainErrorCodes[cause]; ok {
			code = status
			message = cause.Error()
		} else {
			switch origErr := cause.(type) {
			case *echo.HTTPError:
				if origErr == middleware.ErrJWTMissing {
					code = http.StatusUnauthorized
					message = origErr.Message
					break
				}
				if origErr.Internal != nil {
					if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
						origErr = herr
					}
				}
				code = origErr.Code
				message = origErr.Message
			case *core.ValidationError:
				if len(origErr.Fields) > 0 {
					fldErrs := make(map[string]string, len(origErr.Fields))
					for _, fErr := range origErr.Fields {
						fldErrs[fErr.Field] = fErr.Error
					}
					message = fldErrs
				} else {
					message = origErr.Error()
				}
				code = http.StatusBadRequest
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				args := []interface{}{errors.Wrap(err, msg), map[string]interface{}{
					"request_id": ctx.Response().Header().Get(echo.HeaderXRequestID),
				}}
				if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
					args = append(args, usr)
				}
				logger.Error(msg, args...)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/econspark/core/activity"
)

type activityApi struct {
	svc *activity.Service
}

// registerActivityAPI registers the class scoped chat & assignment endpoints on the classes group.
func registerActivityAPI(g *echo.Group, svc *activity.Service) {
	api := activityApi{svc: svc}

	g.GET("/:id/messages", api.queryMessages)
	g.POST("/:id/messages", api.postMessage)

	g.GET("/:id/assignments", api.queryAssignments)
	g.POST("/:id/assignments", api.createAssignment)
	g.GET("/:id/assignments/:aid", api.retrieveAssignment)
	g.DELETE("/:id/assignments/:aid", api.destroyAssignment)
}

// Handlers

func (api *activityApi) queryMessages(ctx echo.Context) error {
	classID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	msgs, err := api.svc.ListMessages(ctx.Request().Context(), ctxUser(ctx), classID)
	if err != nil {
		return errors.Wrap(err, "querying chat messages")
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *activityApi) postMessage(ctx echo.Context) error {
	classID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var data activity.NewMessage
	if err = bind(ctx, &data); err != nil {
		return err
	}

	msg, err := api.svc.PostMessage(ctx.Request().Context(), ctxUser(ctx), classID, data)
	if err != nil {
		return errors.Wrap(err, "posting chat message")
	}
	return ctx.JSON(http.StatusCreated, msg)
}

func (api *activityApi) queryAssignments(ctx echo.Context) error {
	classID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	asgs, err := api.svc.ListAssignments(ctx.Request().Context(), ctxUser(ctx), classID)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	return ctx.JSON(http.StatusOK, asgs)
}

func (api *activityApi) createAssignment(ctx echo.Context) error {
	classID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var data activity.NewAssignment
	if err = bind(ctx, &data); err != nil {
		return err
	}

	asg, err := api.svc.CreateAssignment(ctx.Request().Context(), ctxUser(ctx), classID, data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, asg)
}

func (api *activityApi) retrieveAssignment(ctx echo.Context) error {
	classID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	asgID, err := paramID(ctx, "aid")
	if err != nil {
		return err
	}

	asg, err := api.svc.GetAssignment(ctx.Request().Context(), ctxUser(ctx), classID, asgID)
	if err != nil {
		return errors.Wrap(err, "retrieving assignment")
	}
	return ctx.JSON(http.StatusOK, asg)
}

func (api *activityApi) destroyAssignment(ctx echo.Context) error {
	classID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	asgID, err := paramID(ctx, "aid")
	if err != nil {
		return err
	}

	if err = api.svc.DeleteAssignment(ctx.Request().Context(), ctxUser(ctx), classID, asgID); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

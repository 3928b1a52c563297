package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/econspark/core/classroom"
	"github.com/trezcool/econspark/core/content"
)

type classroomApi struct {
	svc        *classroom.Service
	contentSvc *content.Service
}

func registerClassroomAPI(g *echo.Group, svc *classroom.Service, contentSvc *content.Service) {
	api := classroomApi{svc: svc, contentSvc: contentSvc}

	g.POST("", api.create)
	g.GET("", api.query)
	g.POST("/join", api.join)
	g.GET("/:id", api.retrieve)
	g.DELETE("/:id", api.destroy)
	g.GET("/:id/members", api.queryMembers)
	g.GET("/:id/sets", api.querySets)
}

// Handlers

func (api *classroomApi) create(ctx echo.Context) error {
	var data classroom.NewClass
	if err := bind(ctx, &data); err != nil {
		return err
	}

	cls, err := api.svc.CreateClass(ctx.Request().Context(), ctxUser(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, cls)
}

func (api *classroomApi) query(ctx echo.Context) error {
	classes, err := api.svc.ListClassesForUser(ctx.Request().Context(), ctxUser(ctx))
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *classroomApi) join(ctx echo.Context) error {
	var data classroom.JoinRequest
	if err := bind(ctx, &data); err != nil {
		return err
	}

	cls, err := api.svc.JoinByCode(ctx.Request().Context(), ctxUser(ctx), data)
	if err != nil {
		return errors.Wrap(err, "joining class")
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *classroomApi) retrieve(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	cls, err := api.svc.GetClass(ctx.Request().Context(), ctxUser(ctx), id)
	if err != nil {
		return errors.Wrap(err, "retrieving class")
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *classroomApi) destroy(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	if err = api.svc.DeleteClass(ctx.Request().Context(), ctxUser(ctx), id); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *classroomApi) queryMembers(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	members, err := api.svc.ListMembers(ctx.Request().Context(), ctxUser(ctx), id)
	if err != nil {
		return errors.Wrap(err, "querying members")
	}
	return ctx.JSON(http.StatusOK, members)
}

func (api *classroomApi) querySets(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	sets, err := api.contentSvc.ListSetsForClass(ctx.Request().Context(), ctxUser(ctx), id)
	if err != nil {
		return errors.Wrap(err, "querying class question sets")
	}
	return ctx.JSON(http.StatusOK, sets)
}

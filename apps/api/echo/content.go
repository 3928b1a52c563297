package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/econspark/core/content"
)

type contentApi struct {
	svc *content.Service
}

func registerContentAPI(g *echo.Group, svc *content.Service) {
	api := contentApi{svc: svc}

	g.POST("", api.create)
	g.GET("", api.query)
	g.GET("/:id", api.retrieve)
	g.DELETE("/:id", api.destroy)

	g.GET("/:id/questions", api.queryQuestions)
	g.POST("/:id/questions", api.addQuestion)
	g.DELETE("/:id/questions/:qid", api.destroyQuestion)

	g.POST("/:id/classes/:cid", api.share)
	g.DELETE("/:id/classes/:cid", api.unshare)
}

// Handlers

func (api *contentApi) create(ctx echo.Context) error {
	var data content.NewQuestionSet
	if err := bind(ctx, &data); err != nil {
		return err
	}

	qs, err := api.svc.CreateQuestionSet(ctx.Request().Context(), ctxUser(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating question set")
	}
	return ctx.JSON(http.StatusCreated, qs)
}

func (api *contentApi) query(ctx echo.Context) error {
	sets, err := api.svc.ListAccessibleSets(ctx.Request().Context(), ctxUser(ctx))
	if err != nil {
		return errors.Wrap(err, "querying question sets")
	}
	return ctx.JSON(http.StatusOK, sets)
}

func (api *contentApi) retrieve(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	qs, err := api.svc.GetQuestionSet(ctx.Request().Context(), ctxUser(ctx), id)
	if err != nil {
		return errors.Wrap(err, "retrieving question set")
	}
	return ctx.JSON(http.StatusOK, qs)
}

func (api *contentApi) destroy(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	if err = api.svc.DeleteQuestionSet(ctx.Request().Context(), ctxUser(ctx), id); err != nil {
		return errors.Wrap(err, "deleting question set")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *contentApi) queryQuestions(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	questions, err := api.svc.ListQuestions(ctx.Request().Context(), ctxUser(ctx), id)
	if err != nil {
		return errors.Wrap(err, "querying questions")
	}
	return ctx.JSON(http.StatusOK, questions)
}

func (api *contentApi) addQuestion(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var data content.NewQuestion
	if err = bind(ctx, &data); err != nil {
		return err
	}

	q, err := api.svc.AddQuestion(ctx.Request().Context(), ctxUser(ctx), id, data)
	if err != nil {
		return errors.Wrap(err, "adding question")
	}
	return ctx.JSON(http.StatusCreated, q)
}

func (api *contentApi) destroyQuestion(ctx echo.Context) error {
	setID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	qID, err := paramID(ctx, "qid")
	if err != nil {
		return err
	}

	if err = api.svc.DeleteQuestion(ctx.Request().Context(), ctxUser(ctx), setID, qID); err != nil {
		return errors.Wrap(err, "deleting question")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *contentApi) share(ctx echo.Context) error {
	setID, classID, err := shareParams(ctx)
	if err != nil {
		return err
	}

	if err = api.svc.ShareSetWithClass(ctx.Request().Context(), ctxUser(ctx), setID, classID); err != nil {
		return errors.Wrap(err, "sharing question set")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *contentApi) unshare(ctx echo.Context) error {
	setID, classID, err := shareParams(ctx)
	if err != nil {
		return err
	}

	if err = api.svc.UnshareSetFromClass(ctx.Request().Context(), ctxUser(ctx), setID, classID); err != nil {
		return errors.Wrap(err, "unsharing question set")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func shareParams(ctx echo.Context) (setID, classID int, err error) {
	if setID, err = paramID(ctx, "id"); err != nil {
		return 0, 0, err
	}
	if classID, err = paramID(ctx, "cid"); err != nil {
		return 0, 0, err
	}
	return setID, classID, nil
}

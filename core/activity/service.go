package activity

import (
	"context"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/econspark/core"
	"github.com/trezcool/econspark/core/access"
	"github.com/trezcool/econspark/core/classroom"
	"github.com/trezcool/econspark/core/user"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrAssignmentNotFound = errors.New("assignment not found")
)

type (
	Repository interface {
		// CreateMessage inserts msg; its SentAt is raised to the latest SentAt of the class if older.
		CreateMessage(ctx context.Context, msg ChatMessage) (ChatMessage, error)
		// QueryMessages returns the messages of a class ordered by (sent_at, id).
		QueryMessages(ctx context.Context, classID int) ([]ChatMessage, error)

		CreateAssignment(ctx context.Context, asg Assignment) (Assignment, error)
		GetAssignmentByID(ctx context.Context, id int) (Assignment, error)
		// QueryAssignments returns the assignments of a class ordered by due date, undated ones last.
		QueryAssignments(ctx context.Context, classID int) ([]Assignment, error)
		DeleteAssignment(ctx context.Context, id int) error
	}

	// ClassResolver resolves a class and the access facts of a user relative to it.
	ClassResolver interface {
		Target(ctx context.Context, usr user.User, classID int) (classroom.Class, access.Target, error)
	}

	Service struct {
		repo       Repository
		classes    ClassResolver
		validate   *validator.Validate
		translator ut.Translator
		logger     core.Logger
	}
)

func NewService(
	repo Repository,
	classes ClassResolver,
	validate *validator.Validate,
	translator ut.Translator,
	logger core.Logger,
) *Service {
	return &Service{
		repo:       repo,
		classes:    classes,
		validate:   validate,
		translator: translator,
		logger:     logger,
	}
}

func (svc *Service) authorize(ctx context.Context, usr user.User, classID int, action access.Action) (classroom.Class, error) {
	cls, target, err := svc.classes.Target(ctx, usr, classID)
	if err != nil {
		return classroom.Class{}, err
	}
	if err = access.Check(usr, action, target); err != nil {
		return classroom.Class{}, err
	}
	return cls, nil
}

// PostMessage appends a chat message to the class. The author must teach or be enrolled in it.
func (svc *Service) PostMessage(ctx context.Context, author user.User, classID int, nm NewMessage) (ChatMessage, error) {
	cls, err := svc.authorize(ctx, author, classID, access.PostMessage)
	if err != nil {
		return ChatMessage{}, err
	}
	if err = nm.Validate(svc.validate); err != nil {
		return ChatMessage{}, core.TranslateValidationErrors(err, svc.translator)
	}

	msg, err := svc.repo.CreateMessage(ctx, ChatMessage{
		Message:  nm.Message,
		SentAt:   NowFunc().UTC(),
		UserID:   author.ID,
		Username: author.Username,
		ClassID:  cls.ID,
	})
	if err != nil {
		return ChatMessage{}, errors.Wrap(err, "creating chat message")
	}
	return msg, nil
}

func (svc *Service) ListMessages(ctx context.Context, caller user.User, classID int) ([]ChatMessage, error) {
	cls, err := svc.authorize(ctx, caller, classID, access.ViewMessages)
	if err != nil {
		return nil, err
	}
	msgs, err := svc.repo.QueryMessages(ctx, cls.ID)
	if err != nil {
		return nil, errors.Wrap(err, "querying chat messages")
	}
	if msgs == nil {
		msgs = []ChatMessage{}
	}
	return msgs, nil
}

// CreateAssignment is restricted to the teacher of the class.
func (svc *Service) CreateAssignment(ctx context.Context, creator user.User, classID int, na NewAssignment) (Assignment, error) {
	cls, err := svc.authorize(ctx, creator, classID, access.ManageAssignments)
	if err != nil {
		return Assignment{}, err
	}
	if err = na.Validate(svc.validate); err != nil {
		return Assignment{}, core.TranslateValidationErrors(err, svc.translator)
	}

	asg := na.toAssignment()
	asg.ClassID = cls.ID
	asg.CreatorID = creator.ID
	asg.CreatedAt = NowFunc().UTC()

	if asg, err = svc.repo.CreateAssignment(ctx, asg); err != nil {
		return Assignment{}, errors.Wrap(err, "creating assignment")
	}
	svc.logger.Info("assignment created", map[string]interface{}{"class_id": cls.ID, "assignment_id": asg.ID}, creator)
	return asg, nil
}

// GetAssignment returns an assignment of the class to its teacher or members.
func (svc *Service) GetAssignment(ctx context.Context, caller user.User, classID, assignmentID int) (Assignment, error) {
	cls, err := svc.authorize(ctx, caller, classID, access.ViewAssignments)
	if err != nil {
		return Assignment{}, err
	}
	return svc.getClassAssignment(ctx, cls.ID, assignmentID)
}

func (svc *Service) DeleteAssignment(ctx context.Context, caller user.User, classID, assignmentID int) error {
	cls, err := svc.authorize(ctx, caller, classID, access.ManageAssignments)
	if err != nil {
		return err
	}
	asg, err := svc.getClassAssignment(ctx, cls.ID, assignmentID)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteAssignment(ctx, asg.ID); err != nil {
		if errors.Cause(err) == ErrAssignmentNotFound {
			return ErrAssignmentNotFound
		}
		return errors.Wrap(err, "deleting assignment")
	}
	return nil
}

func (svc *Service) ListAssignments(ctx context.Context, caller user.User, classID int) ([]Assignment, error) {
	cls, err := svc.authorize(ctx, caller, classID, access.ViewAssignments)
	if err != nil {
		return nil, err
	}
	asgs, err := svc.repo.QueryAssignments(ctx, cls.ID)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	if asgs == nil {
		asgs = []Assignment{}
	}
	return asgs, nil
}

// getClassAssignment hides assignments of other classes behind ErrAssignmentNotFound.
func (svc *Service) getClassAssignment(ctx context.Context, classID, assignmentID int) (Assignment, error) {
	asg, err := svc.repo.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		if errors.Cause(err) == ErrAssignmentNotFound {
			return Assignment{}, ErrAssignmentNotFound
		}
		return Assignment{}, errors.Wrap(err, "finding assignment by ID")
	}
	if asg.ClassID != classID {
		return Assignment{}, ErrAssignmentNotFound
	}
	return asg, nil
}

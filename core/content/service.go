package content

import (
	"context"
	"sort"
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
	ErrSetNotFound      = errors.New("question set not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrSetNameExists    = errors.New("you already have a question set with this name")
)

type (
	Repository interface {
		// CreateQuestionSet inserts qs; ErrSetNameExists on an (owner, name) conflict.
		CreateQuestionSet(ctx context.Context, qs QuestionSet) (QuestionSet, error)
		GetQuestionSetByID(ctx context.Context, id int) (QuestionSet, error)
		QueryQuestionSetsByOwner(ctx context.Context, userID int) ([]QuestionSet, error)
		// QueryQuestionSetsSharedWithUser returns the sets shared with any class the user teaches or belongs to.
		QueryQuestionSetsSharedWithUser(ctx context.Context, userID int) ([]QuestionSet, error)
		QueryQuestionSetsByClass(ctx context.Context, classID int) ([]QuestionSet, error)
		// DeleteQuestionSet removes the set, its questions and its shares in one transaction.
		DeleteQuestionSet(ctx context.Context, id int) error

		CreateQuestion(ctx context.Context, q Question) (Question, error)
		GetQuestionByID(ctx context.Context, id int) (Question, error)
		QueryQuestions(ctx context.Context, setID int) ([]Question, error)
		DeleteQuestion(ctx context.Context, id int) error

		// ShareQuestionSet is idempotent.
		ShareQuestionSet(ctx context.Context, setID, classID int) error
		UnshareQuestionSet(ctx context.Context, setID, classID int) error
		IsSharedWith(ctx context.Context, setID, classID int) (bool, error)
		IsSharedWithUser(ctx context.Context, setID, userID int) (bool, error)
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

func (svc *Service) CreateQuestionSet(ctx context.Context, owner user.User, ns NewQuestionSet) (QuestionSet, error) {
	if err := access.Check(owner, access.CreateQuestionSet, access.Target{}); err != nil {
		return QuestionSet{}, err
	}
	if err := ns.Validate(svc.validate); err != nil {
		return QuestionSet{}, core.TranslateValidationErrors(err, svc.translator)
	}

	qs, err := svc.repo.CreateQuestionSet(ctx, QuestionSet{
		Name:        ns.Name,
		Description: ns.Description,
		UserID:      owner.ID,
		CreatedAt:   NowFunc().UTC(),
	})
	if err != nil {
		if err == ErrSetNameExists {
			return QuestionSet{}, err
		}
		return QuestionSet{}, errors.Wrap(err, "creating question set")
	}
	return qs, nil
}

// setTarget loads the set and the access facts of usr relative to it.
func (svc *Service) setTarget(ctx context.Context, usr user.User, setID int) (QuestionSet, access.Target, error) {
	qs, err := svc.repo.GetQuestionSetByID(ctx, setID)
	if err != nil {
		if errors.Cause(err) == ErrSetNotFound {
			return QuestionSet{}, access.Target{}, ErrSetNotFound
		}
		return QuestionSet{}, access.Target{}, errors.Wrap(err, "finding question set by ID")
	}
	target := access.Target{OwnerID: qs.UserID}
	if !access.IsOwner(usr, target) {
		if target.SharedWithActor, err = svc.repo.IsSharedWithUser(ctx, qs.ID, usr.ID); err != nil {
			return QuestionSet{}, access.Target{}, errors.Wrap(err, "checking question set shares")
		}
	}
	return qs, target, nil
}

// GetQuestionSet returns the set if caller owns it or it is shared with one of caller's classes.
func (svc *Service) GetQuestionSet(ctx context.Context, caller user.User, setID int) (QuestionSet, error) {
	qs, target, err := svc.setTarget(ctx, caller, setID)
	if err != nil {
		return QuestionSet{}, err
	}
	if err = access.Check(caller, access.ViewQuestionSet, target); err != nil {
		return QuestionSet{}, err
	}
	return qs, nil
}

func (svc *Service) AddQuestion(ctx context.Context, caller user.User, setID int, nq NewQuestion) (Question, error) {
	qs, target, err := svc.setTarget(ctx, caller, setID)
	if err != nil {
		return Question{}, err
	}
	if err = access.Check(caller, access.EditQuestionSet, target); err != nil {
		return Question{}, err
	}
	if err = nq.Validate(svc.validate); err != nil {
		return Question{}, core.TranslateValidationErrors(err, svc.translator)
	}

	q, err := svc.repo.CreateQuestion(ctx, Question{
		Question:      nq.Question,
		Answer:        nq.Answer,
		UserID:        caller.ID,
		QuestionSetID: qs.ID,
		CreatedAt:     NowFunc().UTC(),
	})
	if err != nil {
		return Question{}, errors.Wrap(err, "creating question")
	}
	return q, nil
}

// ListQuestions returns the questions of a readable set, in insertion order.
func (svc *Service) ListQuestions(ctx context.Context, caller user.User, setID int) ([]Question, error) {
	qs, err := svc.GetQuestionSet(ctx, caller, setID)
	if err != nil {
		return nil, err
	}
	questions, err := svc.repo.QueryQuestions(ctx, qs.ID)
	if err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}
	if questions == nil {
		questions = []Question{}
	}
	return questions, nil
}

// DeleteQuestion removes a question of the set; questions of other sets are reported as ErrQuestionNotFound.
func (svc *Service) DeleteQuestion(ctx context.Context, caller user.User, setID, questionID int) error {
	q, err := svc.repo.GetQuestionByID(ctx, questionID)
	if err != nil {
		if errors.Cause(err) == ErrQuestionNotFound {
			return ErrQuestionNotFound
		}
		return errors.Wrap(err, "finding question by ID")
	}
	if q.QuestionSetID != setID {
		return ErrQuestionNotFound
	}
	if err = access.Check(caller, access.EditQuestionSet, access.Target{OwnerID: q.UserID}); err != nil {
		return err
	}
	if err = svc.repo.DeleteQuestion(ctx, q.ID); err != nil {
		return errors.Wrap(err, "deleting question")
	}
	return nil
}

// DeleteQuestionSet removes the set and every question in it.
func (svc *Service) DeleteQuestionSet(ctx context.Context, caller user.User, setID int) error {
	qs, target, err := svc.setTarget(ctx, caller, setID)
	if err != nil {
		return err
	}
	if err = access.Check(caller, access.EditQuestionSet, target); err != nil {
		return err
	}
	if err = svc.repo.DeleteQuestionSet(ctx, qs.ID); err != nil {
		return errors.Wrap(err, "deleting question set")
	}
	svc.logger.Info("question set deleted", map[string]interface{}{"question_set_id": qs.ID}, caller)
	return nil
}

// ShareSetWithClass makes the set readable by the teacher and members of the class.
// Ownership does not change.
func (svc *Service) ShareSetWithClass(ctx context.Context, caller user.User, setID, classID int) error {
	qs, cls, err := svc.shareTargets(ctx, caller, setID, classID)
	if err != nil {
		return err
	}
	if err = svc.repo.ShareQuestionSet(ctx, qs.ID, cls.ID); err != nil {
		return errors.Wrap(err, "sharing question set")
	}
	return nil
}

func (svc *Service) UnshareSetFromClass(ctx context.Context, caller user.User, setID, classID int) error {
	qs, cls, err := svc.shareTargets(ctx, caller, setID, classID)
	if err != nil {
		return err
	}
	if err = svc.repo.UnshareQuestionSet(ctx, qs.ID, cls.ID); err != nil {
		return errors.Wrap(err, "unsharing question set")
	}
	return nil
}

func (svc *Service) shareTargets(ctx context.Context, caller user.User, setID, classID int) (QuestionSet, classroom.Class, error) {
	qs, target, err := svc.setTarget(ctx, caller, setID)
	if err != nil {
		return QuestionSet{}, classroom.Class{}, err
	}
	cls, _, err := svc.classes.Target(ctx, caller, classID)
	if err != nil {
		return QuestionSet{}, classroom.Class{}, err
	}
	target.ClassTeacherID = cls.TeacherID
	if err = access.Check(caller, access.ShareQuestionSet, target); err != nil {
		return QuestionSet{}, classroom.Class{}, err
	}
	return qs, cls, nil
}

func (svc *Service) IsSharedWith(ctx context.Context, setID, classID int) (bool, error) {
	shared, err := svc.repo.IsSharedWith(ctx, setID, classID)
	if err != nil {
		return false, errors.Wrap(err, "checking question set share")
	}
	return shared, nil
}

// ListAccessibleSets returns the sets usr owns plus the ones shared with usr's classes, once each.
func (svc *Service) ListAccessibleSets(ctx context.Context, usr user.User) ([]QuestionSet, error) {
	owned, err := svc.repo.QueryQuestionSetsByOwner(ctx, usr.ID)
	if err != nil {
		return nil, errors.Wrap(err, "querying owned question sets")
	}
	shared, err := svc.repo.QueryQuestionSetsSharedWithUser(ctx, usr.ID)
	if err != nil {
		return nil, errors.Wrap(err, "querying shared question sets")
	}

	seen := make(map[int]struct{}, len(owned)+len(shared))
	sets := make([]QuestionSet, 0, len(owned)+len(shared))
	for _, group := range [][]QuestionSet{owned, shared} {
		for _, qs := range group {
			if _, ok := seen[qs.ID]; ok {
				continue
			}
			seen[qs.ID] = struct{}{}
			sets = append(sets, qs)
		}
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].ID < sets[j].ID })
	return sets, nil
}

// ListSetsForClass returns the sets shared with a class the caller teaches or belongs to.
func (svc *Service) ListSetsForClass(ctx context.Context, caller user.User, classID int) ([]QuestionSet, error) {
	cls, target, err := svc.classes.Target(ctx, caller, classID)
	if err != nil {
		return nil, err
	}
	if err = access.Check(caller, access.ViewClass, target); err != nil {
		return nil, err
	}
	sets, err := svc.repo.QueryQuestionSetsByClass(ctx, cls.ID)
	if err != nil {
		return nil, errors.Wrap(err, "querying class question sets")
	}
	if sets == nil {
		sets = []QuestionSet{}
	}
	return sets, nil
}

package classroom

import (
	"context"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/econspark/core"
	"github.com/trezcool/econspark/core/access"
	"github.com/trezcool/econspark/core/user"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound           = errors.New("class not found")
	ErrClassNameExists    = errors.New("you already have a class with this name")
	ErrJoinCodeExists     = errors.New("join code already in use")
	ErrJoinCodeExhausted  = errors.New("could not generate a unique join code")
	ErrAlreadyEnrolled    = errors.New("you are already enrolled in this class")
	ErrSelfEnrollment     = errors.New("you are the teacher of this class")
	errInvalidCodeSetting = errors.New("join code length and attempts must be positive")
)

type (
	Repository interface {
		// CreateClass inserts cls; ErrClassNameExists or ErrJoinCodeExists on a unique conflict.
		CreateClass(ctx context.Context, cls Class) (Class, error)
		JoinCodeExists(ctx context.Context, code string) (bool, error)
		GetClassByID(ctx context.Context, id int) (Class, error)
		GetClassByJoinCode(ctx context.Context, code string) (Class, error)
		QueryClassesByTeacher(ctx context.Context, teacherID int) ([]Class, error)
		QueryClassesByMember(ctx context.Context, userID int) ([]Class, error)
		// DeleteClass removes the class along with its memberships, chat messages, assignments
		// and question set shares, in one transaction.
		DeleteClass(ctx context.Context, id int) error

		// CreateMembership inserts m; ErrAlreadyEnrolled on a (user, class) conflict.
		CreateMembership(ctx context.Context, m Membership) (Membership, error)
		MembershipExists(ctx context.Context, classID, userID int) (bool, error)
		QueryMembers(ctx context.Context, classID int) ([]Member, error)
	}

	Service struct {
		repo       Repository
		validate   *validator.Validate
		translator ut.Translator
		logger     core.Logger
		conf       core.ClassroomConfig
	}
)

func NewService(
	repo Repository,
	validate *validator.Validate,
	translator ut.Translator,
	logger core.Logger,
	conf core.ClassroomConfig,
) *Service {
	return &Service{
		repo:       repo,
		validate:   validate,
		translator: translator,
		logger:     logger,
		conf:       conf,
	}
}

// CreateClass creates a class owned by teacher, under a freshly drawn join code.
// Codes are re-drawn on collision, at most conf.JoinCodeAttempts times.
func (svc *Service) CreateClass(ctx context.Context, teacher user.User, nc NewClass) (Class, error) {
	if err := access.Check(teacher, access.CreateClass, access.Target{}); err != nil {
		return Class{}, err
	}
	if err := nc.Validate(svc.validate); err != nil {
		return Class{}, core.TranslateValidationErrors(err, svc.translator)
	}
	if svc.conf.JoinCodeLength <= 0 || svc.conf.JoinCodeAttempts <= 0 {
		return Class{}, errInvalidCodeSetting
	}

	for attempt := 0; attempt < svc.conf.JoinCodeAttempts; attempt++ {
		code, err := generateJoinCode(svc.conf.JoinCodeLength)
		if err != nil {
			return Class{}, errors.Wrap(err, "generating join code")
		}
		exists, err := svc.repo.JoinCodeExists(ctx, code)
		if err != nil {
			return Class{}, errors.Wrap(err, "checking join code")
		}
		if exists {
			continue
		}

		cls, err := svc.repo.CreateClass(ctx, Class{
			Name:        nc.Name,
			Description: nc.Description,
			JoinCode:    code,
			TeacherID:   teacher.ID,
			CreatedAt:   NowFunc().UTC(),
		})
		switch err {
		case nil:
			svc.logger.Info("class created", map[string]interface{}{"class_id": cls.ID}, teacher)
			return cls, nil
		case ErrJoinCodeExists: // lost a race for the code
			continue
		case ErrClassNameExists:
			return Class{}, err
		default:
			return Class{}, errors.Wrap(err, "creating class")
		}
	}
	return Class{}, ErrJoinCodeExhausted
}

// JoinByCode enrolls usr in the class identified by code.
func (svc *Service) JoinByCode(ctx context.Context, usr user.User, req JoinRequest) (Class, error) {
	if err := req.Validate(svc.validate); err != nil {
		return Class{}, core.TranslateValidationErrors(err, svc.translator)
	}

	cls, err := svc.repo.GetClassByJoinCode(ctx, req.Code)
	if err != nil {
		return Class{}, svc.trapNotFound(err, "finding class by join code")
	}
	if !access.Can(usr, access.JoinClass, access.Target{OwnerID: cls.TeacherID}) {
		return Class{}, ErrSelfEnrollment
	}

	exists, err := svc.repo.MembershipExists(ctx, cls.ID, usr.ID)
	if err != nil {
		return Class{}, errors.Wrap(err, "checking membership")
	}
	if exists {
		return Class{}, ErrAlreadyEnrolled
	}

	_, err = svc.repo.CreateMembership(ctx, Membership{
		UserID:   usr.ID,
		ClassID:  cls.ID,
		JoinedAt: NowFunc().UTC(),
	})
	if err != nil {
		if err == ErrAlreadyEnrolled {
			return Class{}, err
		}
		return Class{}, errors.Wrap(err, "creating membership")
	}
	return cls, nil
}

// DeleteClass removes the class and everything scoped to it. Only its teacher may do so.
func (svc *Service) DeleteClass(ctx context.Context, caller user.User, classID int) error {
	cls, err := svc.repo.GetClassByID(ctx, classID)
	if err != nil {
		return svc.trapNotFound(err, "finding class by ID")
	}
	if err = access.Check(caller, access.DeleteClass, access.Target{OwnerID: cls.TeacherID}); err != nil {
		return err
	}
	if err = svc.repo.DeleteClass(ctx, cls.ID); err != nil {
		return svc.trapNotFound(err, "deleting class")
	}
	svc.logger.Info("class deleted", map[string]interface{}{"class_id": cls.ID}, caller)
	return nil
}

// GetByID returns the class without any access check.
func (svc *Service) GetByID(ctx context.Context, classID int) (Class, error) {
	cls, err := svc.repo.GetClassByID(ctx, classID)
	if err != nil {
		return Class{}, svc.trapNotFound(err, "finding class by ID")
	}
	return cls, nil
}

// GetClass returns the class if caller teaches it or is enrolled in it.
func (svc *Service) GetClass(ctx context.Context, caller user.User, classID int) (Class, error) {
	cls, target, err := svc.Target(ctx, caller, classID)
	if err != nil {
		return Class{}, err
	}
	if err = access.Check(caller, access.ViewClass, target); err != nil {
		return Class{}, err
	}
	return cls, nil
}

// Target resolves the class and the access facts of usr relative to it.
func (svc *Service) Target(ctx context.Context, usr user.User, classID int) (Class, access.Target, error) {
	cls, err := svc.GetByID(ctx, classID)
	if err != nil {
		return Class{}, access.Target{}, err
	}
	target := access.Target{OwnerID: cls.TeacherID}
	if !access.IsOwner(usr, target) {
		if target.Enrolled, err = svc.IsMember(ctx, cls.ID, usr.ID); err != nil {
			return Class{}, access.Target{}, err
		}
	}
	return cls, target, nil
}

func (svc *Service) IsMember(ctx context.Context, classID, userID int) (bool, error) {
	exists, err := svc.repo.MembershipExists(ctx, classID, userID)
	if err != nil {
		return false, errors.Wrap(err, "checking membership")
	}
	return exists, nil
}

// ListClassesForUser returns the classes usr teaches and the ones usr is enrolled in.
func (svc *Service) ListClassesForUser(ctx context.Context, usr user.User) (UserClasses, error) {
	taught, err := svc.repo.QueryClassesByTeacher(ctx, usr.ID)
	if err != nil {
		return UserClasses{}, errors.Wrap(err, "querying taught classes")
	}
	enrolled, err := svc.repo.QueryClassesByMember(ctx, usr.ID)
	if err != nil {
		return UserClasses{}, errors.Wrap(err, "querying enrolled classes")
	}
	if taught == nil {
		taught = []Class{}
	}
	if enrolled == nil {
		enrolled = []Class{}
	}
	return UserClasses{Taught: taught, Enrolled: enrolled}, nil
}

// ListMembers returns the participants of the class, ordered by join time.
func (svc *Service) ListMembers(ctx context.Context, caller user.User, classID int) ([]Member, error) {
	_, target, err := svc.Target(ctx, caller, classID)
	if err != nil {
		return nil, err
	}
	if err = access.Check(caller, access.ViewClass, target); err != nil {
		return nil, err
	}
	members, err := svc.repo.QueryMembers(ctx, classID)
	if err != nil {
		return nil, errors.Wrap(err, "querying members")
	}
	if members == nil {
		members = []Member{}
	}
	return members, nil
}

// trapNotFound passes ErrNotFound through and wraps anything else.
func (svc *Service) trapNotFound(err error, msg string) error {
	if errors.Cause(err) == ErrNotFound {
		return ErrNotFound
	}
	return errors.Wrap(err, msg)
}

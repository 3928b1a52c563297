package user

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/econspark/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound           = errors.New("user not found")
	ErrUsernameExists     = errors.New("a user with this username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type (
	Repository interface {
		// CreateUser inserts usr and returns it with its ID; ErrUsernameExists on a username conflict.
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByUsername(ctx context.Context, username string) (User, error)
		// UpdateUser saves the mutable fields: PasswordHash & LastLogin.
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service struct {
		repo       Repository
		validate   *validator.Validate
		translator ut.Translator
		logger     core.Logger

		dummyOnce sync.Once
		dummyHash []byte
	}
)

func NewService(repo Repository, validate *validator.Validate, translator ut.Translator, logger core.Logger) *Service {
	return &Service{
		repo:       repo,
		validate:   validate,
		translator: translator,
		logger:     logger,
	}
}

// Register validates nu and creates the User with a freshly salted password hash.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	if err := nu.Validate(svc.validate); err != nil {
		return User{}, core.TranslateValidationErrors(err, svc.translator)
	}

	usr := User{
		Username:  nu.Username,
		Role:      nu.Role,
		CreatedAt: NowFunc().UTC(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}

	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		if err == ErrUsernameExists {
			return User{}, err
		}
		return User{}, errors.Wrap(err, "creating user")
	}
	svc.logger.Info("user registered", map[string]interface{}{"user_id": usr.ID, "role": usr.Role})
	return usr, nil
}

// Authenticate returns the User matching the credentials and records the login.
// Unknown usernames and wrong passwords both yield ErrInvalidCredentials,
// and both pay for one bcrypt comparison.
func (svc *Service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	if err := creds.Validate(svc.validate); err != nil {
		return User{}, core.TranslateValidationErrors(err, svc.translator)
	}

	usr, err := svc.repo.GetUserByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			return User{}, errors.Wrap(err, "finding user by username")
		}
		_ = bcrypt.CompareHashAndPassword(svc.getDummyHash(), []byte(creds.Password))
		return User{}, ErrInvalidCredentials
	}
	if err = usr.CheckPassword(creds.Password); err != nil {
		return User{}, ErrInvalidCredentials
	}

	usr.LastLogin = null.TimeFrom(NowFunc().UTC())
	if usr, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return User{}, errors.Wrap(err, "setting lastLogin")
	}
	return usr, nil
}

func (svc *Service) getDummyHash() []byte {
	svc.dummyOnce.Do(func() {
		pwd := make([]byte, 16)
		_, _ = rand.Read(pwd)
		svc.dummyHash, _ = bcrypt.GenerateFromPassword(pwd, hashCost)
	})
	return svc.dummyHash
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
}

// CurrentRole returns the stored role of usr.
func (svc *Service) CurrentRole(usr User) Role {
	return usr.Role
}

// ResetPassword sets a new password for the user, bypassing the sign-up policy (admin only).
func (svc *Service) ResetPassword(ctx context.Context, uname, pwd string) error {
	if len(pwd) > pwdMaxBytes {
		return core.NewValidationError(nil, core.FieldError{Field: "password", Error: pwdMaxBytesText})
	}
	usr, err := svc.GetByUsername(ctx, uname)
	if err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	if _, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return errors.Wrap(err, "updating user")
	}
	return nil
}

package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/econspark/core"
)

// Roles
const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

var (
	AllRoles = []Role{RoleTeacher, RoleStudent}

	Roles = []RoleInfo{
		{Name: "Student", Value: RoleStudent},
		{Name: "Teacher", Value: RoleTeacher},
	}

	hashCost = bcrypt.DefaultCost // lowered in tests
)

// Role is fixed at sign-up; there is no promotion flow.
type Role string

func (r Role) IsValid() bool {
	return r == RoleTeacher || r == RoleStudent
}

type RoleInfo struct {
	Name  string `json:"name"`
	Value Role   `json:"value"`
}

type User struct {
	ID           int       `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Role         Role      `json:"role" db:"role"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
	LastLogin    null.Time `json:"last_login" db:"last_login"` // UTC
}

// SetPassword stores a salted bcrypt hash of pwd; the plaintext is never kept.
func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), hashCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

func (u User) IsStudent() bool {
	return u.Role == RoleStudent
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Username        string `json:"username" validate:"required,alphanum_"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Role            Role   `json:"role" validate:"required,oneof=teacher student"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Role = Role(core.CleanString(string(nu.Role), true /* lower */))
	return validate.Struct(nu)
}

// Credentials is what a user presents to authenticate.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Username = core.CleanString(c.Username, true /* lower */)
	return validate.Struct(c)
}

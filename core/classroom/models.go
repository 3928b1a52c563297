package classroom

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/econspark/core"
	"github.com/trezcool/econspark/core/user"
)

type Class struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	JoinCode    string    `json:"join_code" db:"join_code"`
	TeacherID   int       `json:"teacher_id" db:"teacher_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
}

// Membership records that a user joined a class as a participant.
type Membership struct {
	ID       int       `json:"id" db:"id"`
	UserID   int       `json:"user_id" db:"user_id"`
	ClassID  int       `json:"class_id" db:"class_id"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"` // UTC
}

// Member is a class participant as listed to the class.
type Member struct {
	UserID   int       `json:"user_id" db:"user_id"`
	Username string    `json:"username" db:"username"`
	Role     user.Role `json:"role" db:"role"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}

// UserClasses splits the classes of a user by the part they play in them.
type UserClasses struct {
	Taught   []Class `json:"taught"`
	Enrolled []Class `json:"enrolled"`
}

// NewClass contains information needed to create a new Class.
type NewClass struct {
	Name        string `json:"name" validate:"required,notblank,max=150"`
	Description string `json:"description" validate:"max=2000"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

type JoinRequest struct {
	Code string `json:"code" validate:"required"`
}

// Validate normalizes the code (trimmed, upper-cased) before checking it.
func (jr *JoinRequest) Validate(validate *validator.Validate) error {
	jr.Code = NormalizeJoinCode(jr.Code)
	return validate.Struct(jr)
}

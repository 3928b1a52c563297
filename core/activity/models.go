package activity

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/econspark/core"
)

const MessageMaxLength = 1500

type ChatMessage struct {
	ID       int       `json:"id" db:"id"`
	Message  string    `json:"message" db:"message"`
	SentAt   time.Time `json:"sent_at" db:"sent_at"` // UTC
	UserID   int       `json:"user_id" db:"user_id"`
	Username string    `json:"username" db:"username"`
	ClassID  int       `json:"class_id" db:"class_id"`
}

type Assignment struct {
	ID          int         `json:"id" db:"id"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description" db:"description"`
	DueDate     null.Time   `json:"due_date" db:"due_date"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"` // UTC
	ClassID     int         `json:"class_id" db:"class_id"`
	CreatorID   int         `json:"creator_id" db:"creator_id"`
	Attachment  null.String `json:"attachment" db:"attachment"`
}

type NewMessage struct {
	Message string `json:"message" validate:"required,notblank,max=1500"`
}

func (nm *NewMessage) Validate(validate *validator.Validate) error {
	nm.Message = core.CleanString(nm.Message)
	return validate.Struct(nm)
}

// NewAssignment contains information needed to create a new Assignment.
// Attachment is an opaque reference (URL or similar), never a stored file.
type NewAssignment struct {
	Title       string     `json:"title" validate:"required,notblank,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	DueDate     *time.Time `json:"due_date"`
	Attachment  string     `json:"attachment" validate:"max=2048"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	na.Attachment = core.CleanString(na.Attachment)
	return validate.Struct(na)
}

func (na NewAssignment) toAssignment() Assignment {
	asg := Assignment{
		Title:       na.Title,
		Description: na.Description,
	}
	if na.DueDate != nil {
		asg.DueDate = null.TimeFrom(na.DueDate.UTC())
	}
	if na.Attachment != "" {
		asg.Attachment = null.StringFrom(na.Attachment)
	}
	return asg
}

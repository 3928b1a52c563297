package content

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/econspark/core"
)

type QuestionSet struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	UserID      int       `json:"user_id" db:"user_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
}

// Question carries its answer; there is no separate answer record.
type Question struct {
	ID            int       `json:"id" db:"id"`
	Question      string    `json:"question" db:"question"`
	Answer        string    `json:"answer" db:"answer"`
	UserID        int       `json:"user_id" db:"user_id"`
	QuestionSetID int       `json:"question_set_id" db:"question_set_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"` // UTC
}

// NewQuestionSet contains information needed to create a new QuestionSet.
type NewQuestionSet struct {
	Name        string `json:"name" validate:"required,notblank,max=150"`
	Description string `json:"description" validate:"max=2000"`
}

func (ns *NewQuestionSet) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Description = core.CleanString(ns.Description)
	return validate.Struct(ns)
}

// NewQuestion contains information needed to add a Question to a set.
// Texts are kept verbatim.
type NewQuestion struct {
	Question string `json:"question" validate:"required,notblank"`
	Answer   string `json:"answer" validate:"required,notblank"`
}

func (nq NewQuestion) Validate(validate *validator.Validate) error {
	return validate.Struct(nq)
}

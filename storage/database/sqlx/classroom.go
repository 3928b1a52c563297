package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/econspark/core/classroom"
)

const classColumns = `id, name, description, join_code, teacher_id, created_at`

var classConstraints = map[string]error{
	"class_join_code_key":                   classroom.ErrJoinCodeExists,
	"class_teacher_id_name_key":             classroom.ErrClassNameExists,
	"class_membership_user_id_class_id_key": classroom.ErrAlreadyEnrolled,
}

type classroomRepository struct {
	db *sqlx.DB
}

var _ classroom.Repository = (*classroomRepository)(nil) // interface compliance check

func NewClassroomRepository(db *sqlx.DB) classroom.Repository {
	return &classroomRepository{db: db}
}

func (repo *classroomRepository) CreateClass(ctx context.Context, cls classroom.Class) (classroom.Class, error) {
	const q = `
		INSERT INTO class (name, description, join_code, teacher_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := repo.db.QueryRowxContext(ctx, q, cls.Name, cls.Description, cls.JoinCode, cls.TeacherID, cls.CreatedAt).
		Scan(&cls.ID)
	if err != nil {
		return classroom.Class{}, constraintError(err, classConstraints)
	}
	return cls, nil
}

func (repo *classroomRepository) JoinCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := repo.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM class WHERE join_code = $1)`, code)
	return exists, err
}

func (repo *classroomRepository) GetClassByID(ctx context.Context, id int) (classroom.Class, error) {
	var cls classroom.Class
	if err := repo.db.GetContext(ctx, &cls, `SELECT `+classColumns+` FROM class WHERE id = $1`, id); err != nil {
		return classroom.Class{}, notFound(err, classroom.ErrNotFound)
	}
	return cls, nil
}

func (repo *classroomRepository) GetClassByJoinCode(ctx context.Context, code string) (classroom.Class, error) {
	var cls classroom.Class
	if err := repo.db.GetContext(ctx, &cls, `SELECT `+classColumns+` FROM class WHERE join_code = $1`, code); err != nil {
		return classroom.Class{}, notFound(err, classroom.ErrNotFound)
	}
	return cls, nil
}

func (repo *classroomRepository) QueryClassesByTeacher(ctx context.Context, teacherID int) ([]classroom.Class, error) {
	classes := make([]classroom.Class, 0)
	err := repo.db.SelectContext(ctx, &classes, `SELECT `+classColumns+` FROM class WHERE teacher_id = $1 ORDER BY id`, teacherID)
	return classes, err
}

func (repo *classroomRepository) QueryClassesByMember(ctx context.Context, userID int) ([]classroom.Class, error) {
	const q = `
		SELECT c.id, c.name, c.description, c.join_code, c.teacher_id, c.created_at
		FROM class c
		JOIN class_membership m ON m.class_id = c.id
		WHERE m.user_id = $1
		ORDER BY c.id`

	classes := make([]classroom.Class, 0)
	err := repo.db.SelectContext(ctx, &classes, q, userID)
	return classes, err
}

// DeleteClass removes the class and its dependents in one transaction.
func (repo *classroomRepository) DeleteClass(ctx context.Context, id int) error {
	return withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		for _, q := range []string{
			`DELETE FROM class_membership WHERE class_id = $1`,
			`DELETE FROM chat_message WHERE class_id = $1`,
			`DELETE FROM assignment WHERE class_id = $1`,
			`DELETE FROM question_set_class WHERE class_id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return errors.Wrap(err, "deleting class dependents")
			}
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM class WHERE id = $1`, id)
		if err != nil {
			return errors.Wrap(err, "deleting class")
		}
		return affected(res, classroom.ErrNotFound)
	})
}

func (repo *classroomRepository) CreateMembership(ctx context.Context, m classroom.Membership) (classroom.Membership, error) {
	const q = `
		INSERT INTO class_membership (user_id, class_id, joined_at)
		VALUES ($1, $2, $3)
		RETURNING id`

	if err := repo.db.QueryRowxContext(ctx, q, m.UserID, m.ClassID, m.JoinedAt).Scan(&m.ID); err != nil {
		return classroom.Membership{}, constraintError(err, classConstraints)
	}
	return m, nil
}

func (repo *classroomRepository) MembershipExists(ctx context.Context, classID, userID int) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM class_membership WHERE class_id = $1 AND user_id = $2)`

	var exists bool
	err := repo.db.GetContext(ctx, &exists, q, classID, userID)
	return exists, err
}

func (repo *classroomRepository) QueryMembers(ctx context.Context, classID int) ([]classroom.Member, error) {
	const q = `
		SELECT u.id AS user_id, u.username, u.role, m.joined_at
		FROM class_membership m
		JOIN "user" u ON u.id = m.user_id
		WHERE m.class_id = $1
		ORDER BY m.joined_at, m.id`

	members := make([]classroom.Member, 0)
	err := repo.db.SelectContext(ctx, &members, q, classID)
	return members, err
}

package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/econspark/core/content"
)

const (
	setColumns      = `qs.id, qs.name, qs.description, qs.user_id, qs.created_at`
	questionColumns = `id, question, answer, user_id, question_set_id, created_at`

	// sets reachable by $1 through a class they teach or belong to
	sharedWithUserClause = `
		FROM question_set qs
		JOIN question_set_class s ON s.question_set_id = qs.id
		JOIN class c ON c.id = s.class_id
		LEFT JOIN class_membership m ON m.class_id = c.id AND m.user_id = $1
		WHERE (c.teacher_id = $1 OR m.id IS NOT NULL)`
)

var contentConstraints = map[string]error{
	"question_set_user_id_name_key": content.ErrSetNameExists,
}

type contentRepository struct {
	db *sqlx.DB
}

var _ content.Repository = (*contentRepository)(nil) // interface compliance check

func NewContentRepository(db *sqlx.DB) content.Repository {
	return &contentRepository{db: db}
}

func (repo *contentRepository) CreateQuestionSet(ctx context.Context, qs content.QuestionSet) (content.QuestionSet, error) {
	const q = `
		INSERT INTO question_set (name, description, user_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	if err := repo.db.QueryRowxContext(ctx, q, qs.Name, qs.Description, qs.UserID, qs.CreatedAt).Scan(&qs.ID); err != nil {
		return content.QuestionSet{}, constraintError(err, contentConstraints)
	}
	return qs, nil
}

func (repo *contentRepository) GetQuestionSetByID(ctx context.Context, id int) (content.QuestionSet, error) {
	var qs content.QuestionSet
	if err := repo.db.GetContext(ctx, &qs, `SELECT `+setColumns+` FROM question_set qs WHERE qs.id = $1`, id); err != nil {
		return content.QuestionSet{}, notFound(err, content.ErrSetNotFound)
	}
	return qs, nil
}

func (repo *contentRepository) QueryQuestionSetsByOwner(ctx context.Context, userID int) ([]content.QuestionSet, error) {
	sets := make([]content.QuestionSet, 0)
	err := repo.db.SelectContext(ctx, &sets, `SELECT `+setColumns+` FROM question_set qs WHERE qs.user_id = $1 ORDER BY qs.id`, userID)
	return sets, err
}

func (repo *contentRepository) QueryQuestionSetsSharedWithUser(ctx context.Context, userID int) ([]content.QuestionSet, error) {
	sets := make([]content.QuestionSet, 0)
	err := repo.db.SelectContext(ctx, &sets, `SELECT DISTINCT `+setColumns+sharedWithUserClause+` ORDER BY qs.id`, userID)
	return sets, err
}

func (repo *contentRepository) QueryQuestionSetsByClass(ctx context.Context, classID int) ([]content.QuestionSet, error) {
	const q = `
		SELECT ` + setColumns + `
		FROM question_set qs
		JOIN question_set_class s ON s.question_set_id = qs.id
		WHERE s.class_id = $1
		ORDER BY qs.id`

	sets := make([]content.QuestionSet, 0)
	err := repo.db.SelectContext(ctx, &sets, q, classID)
	return sets, err
}

func (repo *contentRepository) DeleteQuestionSet(ctx context.Context, id int) error {
	return withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		for _, q := range []string{
			`DELETE FROM question WHERE question_set_id = $1`,
			`DELETE FROM question_set_class WHERE question_set_id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return errors.Wrap(err, "deleting question set dependents")
			}
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM question_set WHERE id = $1`, id)
		if err != nil {
			return errors.Wrap(err, "deleting question set")
		}
		return affected(res, content.ErrSetNotFound)
	})
}

func (repo *contentRepository) CreateQuestion(ctx context.Context, qn content.Question) (content.Question, error) {
	const q = `
		INSERT INTO question (question, answer, user_id, question_set_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := repo.db.QueryRowxContext(ctx, q, qn.Question, qn.Answer, qn.UserID, qn.QuestionSetID, qn.CreatedAt).
		Scan(&qn.ID)
	if err != nil {
		return content.Question{}, err
	}
	return qn, nil
}

func (repo *contentRepository) GetQuestionByID(ctx context.Context, id int) (content.Question, error) {
	var qn content.Question
	if err := repo.db.GetContext(ctx, &qn, `SELECT `+questionColumns+` FROM question WHERE id = $1`, id); err != nil {
		return content.Question{}, notFound(err, content.ErrQuestionNotFound)
	}
	return qn, nil
}

func (repo *contentRepository) QueryQuestions(ctx context.Context, setID int) ([]content.Question, error) {
	questions := make([]content.Question, 0)
	err := repo.db.SelectContext(ctx, &questions, `SELECT `+questionColumns+` FROM question WHERE question_set_id = $1 ORDER BY id`, setID)
	return questions, err
}

func (repo *contentRepository) DeleteQuestion(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM question WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return affected(res, content.ErrQuestionNotFound)
}

func (repo *contentRepository) ShareQuestionSet(ctx context.Context, setID, classID int) error {
	const q = `
		INSERT INTO question_set_class (question_set_id, class_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	_, err := repo.db.ExecContext(ctx, q, setID, classID)
	return err
}

func (repo *contentRepository) UnshareQuestionSet(ctx context.Context, setID, classID int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM question_set_class WHERE question_set_id = $1 AND class_id = $2`, setID, classID)
	return err
}

func (repo *contentRepository) IsSharedWith(ctx context.Context, setID, classID int) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM question_set_class WHERE question_set_id = $1 AND class_id = $2)`

	var shared bool
	err := repo.db.GetContext(ctx, &shared, q, setID, classID)
	return shared, err
}

func (repo *contentRepository) IsSharedWithUser(ctx context.Context, setID, userID int) (bool, error) {
	var shared bool
	err := repo.db.GetContext(ctx, &shared, `SELECT EXISTS (SELECT 1 `+sharedWithUserClause+` AND qs.id = $2)`, userID, setID)
	return shared, err
}

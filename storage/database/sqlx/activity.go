package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/econspark/core/activity"
)

const assignmentColumns = `id, title, description, due_date, created_at, class_id, creator_id, attachment`

type activityRepository struct {
	db *sqlx.DB
}

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db *sqlx.DB) activity.Repository {
	return &activityRepository{db: db}
}

func (repo *activityRepository) CreateMessage(ctx context.Context, msg activity.ChatMessage) (activity.ChatMessage, error) {
	// sent_at never goes below the latest message of the class
	const q = `
		INSERT INTO chat_message (message, sent_at, user_id, class_id)
		SELECT $1, GREATEST($2::timestamptz, COALESCE(MAX(sent_at), $2::timestamptz)), $3, $4
		FROM chat_message
		WHERE class_id = $4
		RETURNING id, sent_at`

	if err := repo.db.QueryRowxContext(ctx, q, msg.Message, msg.SentAt, msg.UserID, msg.ClassID).Scan(&msg.ID, &msg.SentAt); err != nil {
		return activity.ChatMessage{}, err
	}
	msg.SentAt = msg.SentAt.UTC()
	return msg, nil
}

func (repo *activityRepository) QueryMessages(ctx context.Context, classID int) ([]activity.ChatMessage, error) {
	const q = `
		SELECT m.id, m.message, m.sent_at, m.user_id, u.username, m.class_id
		FROM chat_message m
		JOIN "user" u ON u.id = m.user_id
		WHERE m.class_id = $1
		ORDER BY m.sent_at, m.id`

	msgs := make([]activity.ChatMessage, 0)
	err := repo.db.SelectContext(ctx, &msgs, q, classID)
	return msgs, err
}

func (repo *activityRepository) CreateAssignment(ctx context.Context, asg activity.Assignment) (activity.Assignment, error) {
	const q = `
		INSERT INTO assignment (title, description, due_date, created_at, class_id, creator_id, attachment)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := repo.db.QueryRowxContext(ctx, q,
		asg.Title, asg.Description, asg.DueDate, asg.CreatedAt, asg.ClassID, asg.CreatorID, asg.Attachment,
	).Scan(&asg.ID)
	if err != nil {
		return activity.Assignment{}, err
	}
	return asg, nil
}

func (repo *activityRepository) GetAssignmentByID(ctx context.Context, id int) (activity.Assignment, error) {
	var asg activity.Assignment
	if err := repo.db.GetContext(ctx, &asg, `SELECT `+assignmentColumns+` FROM assignment WHERE id = $1`, id); err != nil {
		return activity.Assignment{}, notFound(err, activity.ErrAssignmentNotFound)
	}
	return asg, nil
}

func (repo *activityRepository) QueryAssignments(ctx context.Context, classID int) ([]activity.Assignment, error) {
	const q = `SELECT ` + assignmentColumns + ` FROM assignment WHERE class_id = $1 ORDER BY due_date ASC NULLS LAST, id`

	asgs := make([]activity.Assignment, 0)
	err := repo.db.SelectContext(ctx, &asgs, q, classID)
	return asgs, err
}

func (repo *activityRepository) DeleteAssignment(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM assignment WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return affected(res, activity.ErrAssignmentNotFound)
}

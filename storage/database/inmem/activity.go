package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/econspark/core/activity"
	"github.com/trezcool/econspark/core/classroom"
)

type activityRepository struct {
	db *DB
}

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db *DB) activity.Repository {
	return &activityRepository{db: db}
}

func (repo *activityRepository) CreateMessage(_ context.Context, msg activity.ChatMessage) (activity.ChatMessage, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.classes[msg.ClassID]; !ok {
		return activity.ChatMessage{}, classroom.ErrNotFound
	}
	for _, other := range repo.db.messages {
		if other.ClassID == msg.ClassID && other.SentAt.After(msg.SentAt) {
			msg.SentAt = other.SentAt
		}
	}
	if usr, ok := repo.db.users[msg.UserID]; ok {
		msg.Username = usr.Username
	}
	msg.ID = repo.db.nextID("chat_message")
	repo.db.messages[msg.ID] = &msg
	return msg, nil
}

func (repo *activityRepository) QueryMessages(_ context.Context, classID int) ([]activity.ChatMessage, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	msgs := make([]activity.ChatMessage, 0)
	for _, msg := range repo.db.messages {
		if msg.ClassID == classID {
			msgs = append(msgs, *msg)
		}
	}
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].SentAt.Equal(msgs[j].SentAt) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].SentAt.Before(msgs[j].SentAt)
	})
	return msgs, nil
}

func (repo *activityRepository) CreateAssignment(_ context.Context, asg activity.Assignment) (activity.Assignment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.classes[asg.ClassID]; !ok {
		return activity.Assignment{}, classroom.ErrNotFound
	}
	asg.ID = repo.db.nextID("assignment")
	repo.db.assignments[asg.ID] = &asg
	return asg, nil
}

func (repo *activityRepository) GetAssignmentByID(_ context.Context, id int) (activity.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if asg, ok := repo.db.assignments[id]; ok {
		return *asg, nil
	}
	return activity.Assignment{}, activity.ErrAssignmentNotFound
}

func (repo *activityRepository) QueryAssignments(_ context.Context, classID int) ([]activity.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	asgs := make([]activity.Assignment, 0)
	for _, asg := range repo.db.assignments {
		if asg.ClassID == classID {
			asgs = append(asgs, *asg)
		}
	}
	sort.Slice(asgs, func(i, j int) bool {
		a, b := asgs[i], asgs[j]
		switch {
		case a.DueDate.Valid && b.DueDate.Valid && !a.DueDate.Time.Equal(b.DueDate.Time):
			return a.DueDate.Time.Before(b.DueDate.Time)
		case a.DueDate.Valid != b.DueDate.Valid:
			return a.DueDate.Valid // undated last
		}
		return a.ID < b.ID
	})
	return asgs, nil
}

func (repo *activityRepository) DeleteAssignment(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.assignments[id]; !ok {
		return activity.ErrAssignmentNotFound
	}
	delete(repo.db.assignments, id)
	return nil
}

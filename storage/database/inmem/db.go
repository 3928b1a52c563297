package inmemdb

import (
	"sync"

	"github.com/trezcool/econspark/core/activity"
	"github.com/trezcool/econspark/core/classroom"
	"github.com/trezcool/econspark/core/content"
	"github.com/trezcool/econspark/core/user"
)

type shareKey struct {
	setID, classID int
}

// DB keeps every table in memory behind a single lock, so a write spanning
// several tables (a cascade delete) is atomic like a SQL transaction.
type DB struct {
	mutex sync.RWMutex
	seq   map[string]int

	users       map[int]*user.User
	classes     map[int]*classroom.Class
	memberships map[int]*classroom.Membership
	sets        map[int]*content.QuestionSet
	questions   map[int]*content.Question
	shares      map[shareKey]struct{}
	messages    map[int]*activity.ChatMessage
	assignments map[int]*activity.Assignment
}

func Open() *DB {
	return &DB{
		seq:         make(map[string]int),
		users:       make(map[int]*user.User),
		classes:     make(map[int]*classroom.Class),
		memberships: make(map[int]*classroom.Membership),
		sets:        make(map[int]*content.QuestionSet),
		questions:   make(map[int]*content.Question),
		shares:      make(map[shareKey]struct{}),
		messages:    make(map[int]*activity.ChatMessage),
		assignments: make(map[int]*activity.Assignment),
	}
}

// nextID must be called with the write lock held.
func (db *DB) nextID(table string) int {
	db.seq[table]++
	return db.seq[table]
}

// Counts returns the number of rows per table; used to assert cascades.
func (db *DB) Counts() map[string]int {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	return map[string]int{
		"user":               len(db.users),
		"class":              len(db.classes),
		"class_membership":   len(db.memberships),
		"question_set":       len(db.sets),
		"question":           len(db.questions),
		"question_set_class": len(db.shares),
		"chat_message":       len(db.messages),
		"assignment":         len(db.assignments),
	}
}

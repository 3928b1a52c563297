// Package access decides who may read, write or delete what.
// Every decision is a pure function of the actor and facts already resolved about the target;
// nothing here touches storage.
package access

import (
	"github.com/pkg/errors"

	"github.com/trezcool/econspark/core/user"
)

var ErrPermissionDenied = errors.New("permission denied")

type Action int

const (
	CreateClass Action = iota + 1
	ViewClass
	JoinClass
	DeleteClass
	PostMessage
	ViewMessages
	ManageAssignments
	ViewAssignments
	CreateQuestionSet
	ViewQuestionSet
	EditQuestionSet // add/delete questions, delete the set
	ShareQuestionSet
)

var actionNames = map[Action]string{
	CreateClass:       "create class",
	ViewClass:         "view class",
	JoinClass:         "join class",
	DeleteClass:       "delete class",
	PostMessage:       "post message",
	ViewMessages:      "view messages",
	ManageAssignments: "manage assignments",
	ViewAssignments:   "view assignments",
	CreateQuestionSet: "create question set",
	ViewQuestionSet:   "view question set",
	EditQuestionSet:   "edit question set",
	ShareQuestionSet:  "share question set",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown action"
}

// Target holds what is known about the entity an action applies to.
// Only the fields relevant to the action need to be set.
type Target struct {
	// OwnerID is the owning user: the teacher of a class, the creator of a question set.
	OwnerID int
	// ClassTeacherID is the teacher of the class the action is scoped to, when it differs from OwnerID
	// (e.g. sharing a set into a class).
	ClassTeacherID int
	// Enrolled is true when the actor has a membership in the class.
	Enrolled bool
	// SharedWithActor is true when the set is shared with a class the actor teaches or belongs to.
	SharedWithActor bool
}

// Can reports whether usr may perform action on target.
func Can(usr user.User, action Action, target Target) bool {
	if usr.ID == 0 {
		return false
	}
	isOwner := IsOwner(usr, target)

	switch action {
	case CreateClass:
		return usr.IsTeacher()
	case JoinClass:
		return !isOwner
	case DeleteClass, ManageAssignments:
		return isOwner && usr.IsTeacher()
	case ViewClass, PostMessage, ViewMessages, ViewAssignments:
		return isOwner || target.Enrolled
	case CreateQuestionSet:
		return true
	case EditQuestionSet:
		return isOwner
	case ViewQuestionSet:
		return isOwner || target.SharedWithActor
	case ShareQuestionSet:
		return isOwner && target.ClassTeacherID == usr.ID
	default:
		return false
	}
}

// IsOwner reports whether usr owns target.
func IsOwner(usr user.User, target Target) bool {
	return usr.ID != 0 && target.OwnerID == usr.ID
}

// Check is Can returning ErrPermissionDenied instead of false.
func Check(usr user.User, action Action, target Target) error {
	if !Can(usr, action, target) {
		return ErrPermissionDenied
	}
	return nil
}

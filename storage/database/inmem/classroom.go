package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/econspark/core/classroom"
)

type classroomRepository struct {
	db *DB
}

var _ classroom.Repository = (*classroomRepository)(nil) // interface compliance check

func NewClassroomRepository(db *DB) classroom.Repository {
	return &classroomRepository{db: db}
}

func (repo *classroomRepository) CreateClass(_ context.Context, cls classroom.Class) (classroom.Class, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, c := range repo.db.classes {
		if c.JoinCode == cls.JoinCode {
			return classroom.Class{}, classroom.ErrJoinCodeExists
		}
		if c.TeacherID == cls.TeacherID && c.Name == cls.Name {
			return classroom.Class{}, classroom.ErrClassNameExists
		}
	}
	cls.ID = repo.db.nextID("class")
	repo.db.classes[cls.ID] = &cls
	return cls, nil
}

func (repo *classroomRepository) JoinCodeExists(_ context.Context, code string) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, c := range repo.db.classes {
		if c.JoinCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (repo *classroomRepository) GetClassByID(_ context.Context, id int) (classroom.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if cls, ok := repo.db.classes[id]; ok {
		return *cls, nil
	}
	return classroom.Class{}, classroom.ErrNotFound
}

func (repo *classroomRepository) GetClassByJoinCode(_ context.Context, code string) (classroom.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, cls := range repo.db.classes {
		if cls.JoinCode == code {
			return *cls, nil
		}
	}
	return classroom.Class{}, classroom.ErrNotFound
}

func (repo *classroomRepository) QueryClassesByTeacher(_ context.Context, teacherID int) ([]classroom.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	classes := make([]classroom.Class, 0)
	for _, cls := range repo.db.classes {
		if cls.TeacherID == teacherID {
			classes = append(classes, *cls)
		}
	}
	sortClasses(classes)
	return classes, nil
}

func (repo *classroomRepository) QueryClassesByMember(_ context.Context, userID int) ([]classroom.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	classes := make([]classroom.Class, 0)
	for _, m := range repo.db.memberships {
		if m.UserID != userID {
			continue
		}
		if cls, ok := repo.db.classes[m.ClassID]; ok {
			classes = append(classes, *cls)
		}
	}
	sortClasses(classes)
	return classes, nil
}

func (repo *classroomRepository) DeleteClass(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.classes[id]; !ok {
		return classroom.ErrNotFound
	}
	for mID, m := range repo.db.memberships {
		if m.ClassID == id {
			delete(repo.db.memberships, mID)
		}
	}
	for msgID, msg := range repo.db.messages {
		if msg.ClassID == id {
			delete(repo.db.messages, msgID)
		}
	}
	for aID, asg := range repo.db.assignments {
		if asg.ClassID == id {
			delete(repo.db.assignments, aID)
		}
	}
	for key := range repo.db.shares {
		if key.classID == id {
			delete(repo.db.shares, key)
		}
	}
	delete(repo.db.classes, id)
	return nil
}

func (repo *classroomRepository) CreateMembership(_ context.Context, m classroom.Membership) (classroom.Membership, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.classes[m.ClassID]; !ok {
		return classroom.Membership{}, classroom.ErrNotFound
	}
	for _, other := range repo.db.memberships {
		if other.UserID == m.UserID && other.ClassID == m.ClassID {
			return classroom.Membership{}, classroom.ErrAlreadyEnrolled
		}
	}
	m.ID = repo.db.nextID("class_membership")
	repo.db.memberships[m.ID] = &m
	return m, nil
}

func (repo *classroomRepository) MembershipExists(_ context.Context, classID, userID int) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, m := range repo.db.memberships {
		if m.UserID == userID && m.ClassID == classID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *classroomRepository) QueryMembers(_ context.Context, classID int) ([]classroom.Member, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	memberships := make([]classroom.Membership, 0)
	for _, m := range repo.db.memberships {
		if m.ClassID == classID {
			memberships = append(memberships, *m)
		}
	}
	sort.Slice(memberships, func(i, j int) bool {
		if memberships[i].JoinedAt.Equal(memberships[j].JoinedAt) {
			return memberships[i].ID < memberships[j].ID
		}
		return memberships[i].JoinedAt.Before(memberships[j].JoinedAt)
	})

	members := make([]classroom.Member, 0, len(memberships))
	for _, m := range memberships {
		member := classroom.Member{UserID: m.UserID, JoinedAt: m.JoinedAt}
		if usr, ok := repo.db.users[m.UserID]; ok {
			member.Username = usr.Username
			member.Role = usr.Role
		}
		members = append(members, member)
	}
	return members, nil
}

func sortClasses(classes []classroom.Class) {
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
}

package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/econspark/core/content"
)

type contentRepository struct {
	db *DB
}

var _ content.Repository = (*contentRepository)(nil) // interface compliance check

func NewContentRepository(db *DB) content.Repository {
	return &contentRepository{db: db}
}

func (repo *contentRepository) CreateQuestionSet(_ context.Context, qs content.QuestionSet) (content.QuestionSet, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, other := range repo.db.sets {
		if other.UserID == qs.UserID && other.Name == qs.Name {
			return content.QuestionSet{}, content.ErrSetNameExists
		}
	}
	qs.ID = repo.db.nextID("question_set")
	repo.db.sets[qs.ID] = &qs
	return qs, nil
}

func (repo *contentRepository) GetQuestionSetByID(_ context.Context, id int) (content.QuestionSet, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if qs, ok := repo.db.sets[id]; ok {
		return *qs, nil
	}
	return content.QuestionSet{}, content.ErrSetNotFound
}

func (repo *contentRepository) QueryQuestionSetsByOwner(_ context.Context, userID int) ([]content.QuestionSet, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return repo.filterSets(func(qs *content.QuestionSet) bool { return qs.UserID == userID }), nil
}

func (repo *contentRepository) QueryQuestionSetsSharedWithUser(_ context.Context, userID int) ([]content.QuestionSet, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return repo.filterSets(func(qs *content.QuestionSet) bool { return repo.sharedWithUser(qs.ID, userID) }), nil
}

func (repo *contentRepository) QueryQuestionSetsByClass(_ context.Context, classID int) ([]content.QuestionSet, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return repo.filterSets(func(qs *content.QuestionSet) bool {
		_, ok := repo.db.shares[shareKey{setID: qs.ID, classID: classID}]
		return ok
	}), nil
}

func (repo *contentRepository) DeleteQuestionSet(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.sets[id]; !ok {
		return content.ErrSetNotFound
	}
	for qID, q := range repo.db.questions {
		if q.QuestionSetID == id {
			delete(repo.db.questions, qID)
		}
	}
	for key := range repo.db.shares {
		if key.setID == id {
			delete(repo.db.shares, key)
		}
	}
	delete(repo.db.sets, id)
	return nil
}

func (repo *contentRepository) CreateQuestion(_ context.Context, q content.Question) (content.Question, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.sets[q.QuestionSetID]; !ok {
		return content.Question{}, content.ErrSetNotFound
	}
	q.ID = repo.db.nextID("question")
	repo.db.questions[q.ID] = &q
	return q, nil
}

func (repo *contentRepository) GetQuestionByID(_ context.Context, id int) (content.Question, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if q, ok := repo.db.questions[id]; ok {
		return *q, nil
	}
	return content.Question{}, content.ErrQuestionNotFound
}

func (repo *contentRepository) QueryQuestions(_ context.Context, setID int) ([]content.Question, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	questions := make([]content.Question, 0)
	for _, q := range repo.db.questions {
		if q.QuestionSetID == setID {
			questions = append(questions, *q)
		}
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
	return questions, nil
}

func (repo *contentRepository) DeleteQuestion(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.questions[id]; !ok {
		return content.ErrQuestionNotFound
	}
	delete(repo.db.questions, id)
	return nil
}

func (repo *contentRepository) ShareQuestionSet(_ context.Context, setID, classID int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.sets[setID]; !ok {
		return content.ErrSetNotFound
	}
	repo.db.shares[shareKey{setID: setID, classID: classID}] = struct{}{}
	return nil
}

func (repo *contentRepository) UnshareQuestionSet(_ context.Context, setID, classID int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.shares, shareKey{setID: setID, classID: classID})
	return nil
}

func (repo *contentRepository) IsSharedWith(_ context.Context, setID, classID int) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	_, ok := repo.db.shares[shareKey{setID: setID, classID: classID}]
	return ok, nil
}

func (repo *contentRepository) IsSharedWithUser(_ context.Context, setID, userID int) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return repo.sharedWithUser(setID, userID), nil
}

// sharedWithUser must be called with the lock held.
func (repo *contentRepository) sharedWithUser(setID, userID int) bool {
	for key := range repo.db.shares {
		if key.setID != setID {
			continue
		}
		cls, ok := repo.db.classes[key.classID]
		if !ok {
			continue
		}
		if cls.TeacherID == userID {
			return true
		}
		for _, m := range repo.db.memberships {
			if m.ClassID == cls.ID && m.UserID == userID {
				return true
			}
		}
	}
	return false
}

// filterSets must be called with the lock held.
func (repo *contentRepository) filterSets(keep func(*content.QuestionSet) bool) []content.QuestionSet {
	sets := make([]content.QuestionSet, 0)
	for _, qs := range repo.db.sets {
		if keep(qs) {
			sets = append(sets, *qs)
		}
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].ID < sets[j].ID })
	return sets
}

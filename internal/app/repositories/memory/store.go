// Package memory is a thread-safe in-process implementation of the
// repository interfaces, used for local runs and tests. Every write checks
// its constraints and mutates the maps under a single lock, so uniqueness
// behaves like the database constraint under concurrent writers.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/yigit/rea/internal/app/filters"
	"github.com/yigit/rea/internal/app/models"
	"github.com/yigit/rea/internal/pkg/apperrors"
)

type pairKey struct {
	userID       int64
	instrumentID int64
}

// Store holds every table
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	nextUserID, nextInstrumentID, nextLinkID, nextExerciseID int64

	users       map[int64]models.User
	usernames   map[string]int64
	instruments map[int64]models.Instrument
	links       map[int64]models.UserInstrument
	pairs       map[pairKey]int64
	exercises   map[int64]models.Exercise
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		now:         func() time.Time { return time.Now().UTC() },
		users:       make(map[int64]models.User),
		usernames:   make(map[string]int64),
		instruments: make(map[int64]models.Instrument),
		links:       make(map[int64]models.UserInstrument),
		pairs:       make(map[pairKey]int64),
		exercises:   make(map[int64]models.Exercise),
	}
}

// SetClock overrides the time source for system-assigned timestamps
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Users returns the user repository view
func (s *Store) Users() *UserStore { return &UserStore{s} }

// Instruments returns the instrument repository view
func (s *Store) Instruments() *InstrumentStore { return &InstrumentStore{s} }

// UserInstruments returns the proficiency record repository view
func (s *Store) UserInstruments() *UserInstrumentStore { return &UserInstrumentStore{s} }

// Exercises returns the exercise repository view
func (s *Store) Exercises() *ExerciseStore { return &ExerciseStore{s} }

// page cuts one page out of an already filtered slice
func page[T any](items []T, offset uint64, limit int) []T {
	total := uint64(len(items))
	if offset >= total {
		return []T{}
	}
	end := offset + uint64(limit)
	if limit <= 0 || end > total {
		end = total
	}
	return items[offset:end]
}

// ---- users

// UserStore implements the user repository
type UserStore struct{ s *Store }

func cloneUser(u models.User) *models.User {
	if u.DateOfBirth != nil {
		dob := *u.DateOfBirth
		u.DateOfBirth = &dob
	}
	return &u
}

func (r *UserStore) Create(_ context.Context, user *models.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usernames[user.Username]; taken {
		return apperrors.ErrUsernameTaken
	}

	s.nextUserID++
	user.ID = s.nextUserID
	user.DateJoined = s.now()
	s.users[user.ID] = *cloneUser(*user)
	s.usernames[user.Username] = user.ID
	return nil
}

func (r *UserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.usernames[username]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return cloneUser(r.s.users[id]), nil
}

func (r *UserStore) List(_ context.Context, filter filters.UserFilter, offset uint64, limit int) ([]*models.User, int64, error) {
	r.s.mu.RLock()
	all := make([]*models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		all = append(all, cloneUser(u))
	}
	r.s.mu.RUnlock()

	matched := filter.Apply(all)
	return page(matched, offset, limit), int64(len(matched)), nil
}

func (r *UserStore) Update(_ context.Context, user *models.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[user.ID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if owner, taken := s.usernames[user.Username]; taken && owner != user.ID {
		return apperrors.ErrUsernameTaken
	}

	delete(s.usernames, current.Username)
	s.usernames[user.Username] = user.ID
	updated := *cloneUser(*user)
	updated.DateJoined = current.DateJoined
	s.users[user.ID] = updated
	return nil
}

func (r *UserStore) Delete(_ context.Context, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	delete(s.users, id)
	delete(s.usernames, u.Username)
	for linkID, l := range s.links {
		if l.UserID == id {
			s.deleteLinkLocked(linkID, l)
		}
	}
	return nil
}

func (r *UserStore) CountByType(_ context.Context, userType models.UserType) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, u := range r.s.users {
		if u.UserType == userType {
			n++
		}
	}
	return n, nil
}

// ---- instruments

// InstrumentStore implements the instrument repository
type InstrumentStore struct{ s *Store }

func (r *InstrumentStore) Create(_ context.Context, instrument *models.Instrument) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextInstrumentID++
	instrument.ID = s.nextInstrumentID
	s.instruments[instrument.ID] = *instrument
	return nil
}

func (r *InstrumentStore) GetByID(_ context.Context, id int64) (*models.Instrument, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i, ok := r.s.instruments[id]
	if !ok {
		return nil, apperrors.ErrInstrumentNotFound
	}
	return &i, nil
}

func (r *InstrumentStore) List(_ context.Context, filter filters.InstrumentFilter, offset uint64, limit int) ([]*models.Instrument, int64, error) {
	r.s.mu.RLock()
	all := make([]*models.Instrument, 0, len(r.s.instruments))
	for _, i := range r.s.instruments {
		all = append(all, &i)
	}
	r.s.mu.RUnlock()

	matched := filter.Apply(all)
	return page(matched, offset, limit), int64(len(matched)), nil
}

func (r *InstrumentStore) Update(_ context.Context, instrument *models.Instrument) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.instruments[instrument.ID]; !ok {
		return apperrors.ErrInstrumentNotFound
	}
	s.instruments[instrument.ID] = *instrument
	return nil
}

func (r *InstrumentStore) Delete(_ context.Context, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.instruments[id]; !ok {
		return apperrors.ErrInstrumentNotFound
	}
	delete(s.instruments, id)
	for linkID, l := range s.links {
		if l.InstrumentID == id {
			s.deleteLinkLocked(linkID, l)
		}
	}
	return nil
}

func (r *InstrumentStore) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.instruments)), nil
}

// ---- user instruments

// UserInstrumentStore implements the proficiency record repository
type UserInstrumentStore struct{ s *Store }

// loadLocked copies a record and attaches its instrument
func (s *Store) loadLocked(l models.UserInstrument) *models.UserInstrument {
	out := l
	if i, ok := s.instruments[l.InstrumentID]; ok {
		out.Instrument = &i
	}
	return &out
}

func (s *Store) deleteLinkLocked(id int64, l models.UserInstrument) {
	delete(s.links, id)
	delete(s.pairs, pairKey{l.UserID, l.InstrumentID})
}

// checkRefsLocked mirrors the foreign keys
func (s *Store) checkRefsLocked(userID, instrumentID int64) error {
	if _, ok := s.users[userID]; !ok {
		return apperrors.ErrUserNotFound
	}
	if _, ok := s.instruments[instrumentID]; !ok {
		return apperrors.ErrInstrumentNotFound
	}
	return nil
}

func (r *UserInstrumentStore) Create(_ context.Context, link *models.UserInstrument) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkRefsLocked(link.UserID, link.InstrumentID); err != nil {
		return err
	}
	key := pairKey{link.UserID, link.InstrumentID}
	if _, exists := s.pairs[key]; exists {
		return apperrors.ErrDuplicateInstrument
	}

	s.nextLinkID++
	link.ID = s.nextLinkID
	stored := *link
	stored.Instrument = nil
	s.links[link.ID] = stored
	s.pairs[key] = link.ID
	return nil
}

func (r *UserInstrumentStore) GetByID(_ context.Context, id int64) (*models.UserInstrument, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	l, ok := r.s.links[id]
	if !ok {
		return nil, apperrors.ErrUserInstrumentNotFound
	}
	return r.s.loadLocked(l), nil
}

func (r *UserInstrumentStore) List(_ context.Context, filter filters.UserInstrumentFilter, offset uint64, limit int) ([]*models.UserInstrument, int64, error) {
	r.s.mu.RLock()
	all := make([]*models.UserInstrument, 0, len(r.s.links))
	for _, l := range r.s.links {
		all = append(all, r.s.loadLocked(l))
	}
	r.s.mu.RUnlock()

	matched := filter.Apply(all)
	return page(matched, offset, limit), int64(len(matched)), nil
}

func (r *UserInstrumentStore) ListByUserIDs(ctx context.Context, userIDs []int64) (map[int64][]*models.UserInstrument, error) {
	grouped := make(map[int64][]*models.UserInstrument, len(userIDs))
	for _, id := range userIDs {
		links, _, err := r.List(ctx, filters.ForUser(id), 0, 0)
		if err != nil {
			return nil, err
		}
		if len(links) > 0 {
			grouped[id] = links
		}
	}
	return grouped, nil
}

func (r *UserInstrumentStore) Update(_ context.Context, link *models.UserInstrument) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.links[link.ID]
	if !ok {
		return apperrors.ErrUserInstrumentNotFound
	}
	link.UserID = current.UserID
	if err := s.checkRefsLocked(link.UserID, link.InstrumentID); err != nil {
		return err
	}
	key := pairKey{link.UserID, link.InstrumentID}
	if owner, exists := s.pairs[key]; exists && owner != link.ID {
		return apperrors.ErrDuplicateInstrument
	}

	delete(s.pairs, pairKey{current.UserID, current.InstrumentID})
	stored := *link
	stored.Instrument = nil
	s.links[link.ID] = stored
	s.pairs[key] = link.ID
	return nil
}

func (r *UserInstrumentStore) Delete(_ context.Context, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.links[id]
	if !ok {
		return apperrors.ErrUserInstrumentNotFound
	}
	s.deleteLinkLocked(id, l)
	return nil
}

// ---- exercises

// ExerciseStore implements the exercise repository
type ExerciseStore struct{ s *Store }

func (r *ExerciseStore) Create(_ context.Context, exercise *models.Exercise) error {
	if !exercise.HasFile() {
		return apperrors.ErrExerciseFileRequired
	}

	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextExerciseID++
	exercise.ID = s.nextExerciseID
	exercise.Created = s.now()
	exercise.Modified = exercise.Created
	s.exercises[exercise.ID] = *exercise
	return nil
}

func (r *ExerciseStore) GetByID(_ context.Context, id int64) (*models.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.exercises[id]
	if !ok {
		return nil, apperrors.ErrExerciseNotFound
	}
	return &e, nil
}

func (r *ExerciseStore) List(_ context.Context, filter filters.ExerciseFilter, offset uint64, limit int) ([]*models.Exercise, int64, error) {
	r.s.mu.RLock()
	all := make([]*models.Exercise, 0, len(r.s.exercises))
	for _, e := range r.s.exercises {
		all = append(all, &e)
	}
	r.s.mu.RUnlock()

	matched := filter.Apply(all)
	return page(matched, offset, limit), int64(len(matched)), nil
}

func (r *ExerciseStore) Update(_ context.Context, exercise *models.Exercise) error {
	if !exercise.HasFile() {
		return apperrors.ErrExerciseFileRequired
	}

	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.exercises[exercise.ID]
	if !ok {
		return apperrors.ErrExerciseNotFound
	}
	exercise.Created = current.Created
	exercise.Modified = s.now()
	s.exercises[exercise.ID] = *exercise
	return nil
}

func (r *ExerciseStore) Delete(_ context.Context, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.exercises[id]; !ok {
		return apperrors.ErrExerciseNotFound
	}
	delete(s.exercises, id)
	return nil
}

func (r *ExerciseStore) CountByCategory(_ context.Context) (map[models.ExerciseCategory]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[models.ExerciseCategory]int64, len(models.ExerciseCategories))
	for _, c := range models.ExerciseCategories {
		counts[c] = 0
	}
	for _, e := range r.s.exercises {
		counts[e.Category]++
	}
	return counts, nil
}

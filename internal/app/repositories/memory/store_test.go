package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/rea/internal/app/filters"
	"github.com/yigit/rea/internal/app/models"
	"github.com/yigit/rea/internal/pkg/apperrors"
)

func seed(t *testing.T) (*Store, *models.User, *models.Instrument) {
	t.Helper()
	s := NewStore()
	ctx := context.Background()

	u := &models.User{Username: "alice", UserType: models.UserTypeStudent}
	require.NoError(t, s.Users().Create(ctx, u))
	i := &models.Instrument{Name: "Violin", Family: "String"}
	require.NoError(t, s.Instruments().Create(ctx, i))
	return s, u, i
}

func TestUsernameUnique(t *testing.T) {
	s, _, _ := seed(t)
	err := s.Users().Create(context.Background(), &models.User{Username: "alice"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestUserRoundTripIsCopied(t *testing.T) {
	s, u, _ := seed(t)
	ctx := context.Background()

	got, err := s.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	got.Username = "mallory"

	again, err := s.Users().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
	assert.False(t, again.DateJoined.IsZero())
}

func TestDuplicatePairConflicts(t *testing.T) {
	s, u, i := seed(t)
	ctx := context.Background()

	first := &models.UserInstrument{UserID: u.ID, InstrumentID: i.ID, Proficiency: models.ProficiencyBeginner}
	require.NoError(t, s.UserInstruments().Create(ctx, first))

	second := &models.UserInstrument{UserID: u.ID, InstrumentID: i.ID, Proficiency: models.ProficiencyExpert}
	err := s.UserInstruments().Create(ctx, second)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateInstrument)
}

func TestConcurrentPairCreateLeavesOne(t *testing.T) {
	s, u, i := seed(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var ok, conflicts int
	for n := 0; n < 16; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.UserInstruments().Create(ctx, &models.UserInstrument{UserID: u.ID, InstrumentID: i.ID})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if assert.ErrorIs(t, err, apperrors.ErrConflict) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 15, conflicts)
	_, total, err := s.UserInstruments().List(ctx, filters.ForUser(u.ID), 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestMissingReferences(t *testing.T) {
	s, u, i := seed(t)
	ctx := context.Background()

	err := s.UserInstruments().Create(ctx, &models.UserInstrument{UserID: 999, InstrumentID: i.ID})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	err = s.UserInstruments().Create(ctx, &models.UserInstrument{UserID: u.ID, InstrumentID: 999})
	assert.ErrorIs(t, err, apperrors.ErrInstrumentNotFound)
}

func TestLinksLoadInstrument(t *testing.T) {
	s, u, i := seed(t)
	ctx := context.Background()

	link := &models.UserInstrument{UserID: u.ID, InstrumentID: i.ID}
	require.NoError(t, s.UserInstruments().Create(ctx, link))

	got, err := s.UserInstruments().GetByID(ctx, link.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Instrument)
	assert.Equal(t, "Violin", got.Instrument.Name)

	grouped, err := s.UserInstruments().ListByUserIDs(ctx, []int64{u.ID, 42})
	require.NoError(t, err)
	assert.Len(t, grouped[u.ID], 1)
	assert.NotContains(t, grouped, int64(42))
}

func TestDeletesCascade(t *testing.T) {
	ctx := context.Background()

	t.Run("user", func(t *testing.T) {
		s, u, i := seed(t)
		require.NoError(t, s.UserInstruments().Create(ctx, &models.UserInstrument{UserID: u.ID, InstrumentID: i.ID}))
		require.NoError(t, s.Users().Delete(ctx, u.ID))

		_, total, err := s.UserInstruments().List(ctx, filters.UserInstrumentFilter{}, 0, 10)
		require.NoError(t, err)
		assert.Zero(t, total)
		// the username is free again
		require.NoError(t, s.Users().Create(ctx, &models.User{Username: "alice"}))
	})

	t.Run("instrument", func(t *testing.T) {
		s, u, i := seed(t)
		require.NoError(t, s.UserInstruments().Create(ctx, &models.UserInstrument{UserID: u.ID, InstrumentID: i.ID}))
		require.NoError(t, s.Instruments().Delete(ctx, i.ID))

		_, total, err := s.UserInstruments().List(ctx, filters.ForUser(u.ID), 0, 10)
		require.NoError(t, err)
		assert.Zero(t, total)
	})
}

func TestUpdateKeepsOwnerAndChecksPair(t *testing.T) {
	s, u, violin := seed(t)
	ctx := context.Background()
	cello := &models.Instrument{Name: "Cello", Family: "String"}
	require.NoError(t, s.Instruments().Create(ctx, cello))

	a := &models.UserInstrument{UserID: u.ID, InstrumentID: violin.ID}
	b := &models.UserInstrument{UserID: u.ID, InstrumentID: cello.ID}
	require.NoError(t, s.UserInstruments().Create(ctx, a))
	require.NoError(t, s.UserInstruments().Create(ctx, b))

	b.InstrumentID = violin.ID
	assert.ErrorIs(t, s.UserInstruments().Update(ctx, b), apperrors.ErrConflict)

	a.UserID = 77
	a.YearsOfExperience = 3
	require.NoError(t, s.UserInstruments().Update(ctx, a))
	got, err := s.UserInstruments().GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.UserID)
	assert.Equal(t, 3, got.YearsOfExperience)
}

func TestExerciseFileRequired(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	err := s.Exercises().Create(ctx, &models.Exercise{Category: models.CategoryPitch})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	e := &models.Exercise{Midi: "exercises/midi/a.mid", Category: models.CategoryPitch}
	require.NoError(t, s.Exercises().Create(ctx, e))
	e.Midi = ""
	assert.ErrorIs(t, s.Exercises().Update(ctx, e), apperrors.ErrExerciseFileRequired)
}

func TestExerciseListAndCounts(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})

	for _, c := range []models.ExerciseCategory{models.CategoryRhythm, models.CategoryPitch, models.CategoryRhythm} {
		require.NoError(t, s.Exercises().Create(ctx, &models.Exercise{Svg: "x.svg", Category: c}))
	}

	rhythm := models.CategoryRhythm
	list, total, err := s.Exercises().List(ctx, filters.ExerciseFilter{Category: &rhythm}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, list, 2)
	assert.Equal(t, int64(3), list[0].ID)
	assert.Equal(t, int64(1), list[1].ID)

	counts, err := s.Exercises().CountByCategory(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts[models.CategoryPitch])
	assert.EqualValues(t, 2, counts[models.CategoryRhythm])
}

func TestPaging(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{3, 4}, page(items, 2, 2))
	assert.Equal(t, []int{5}, page(items, 4, 2))
	assert.Empty(t, page(items, 10, 2))
	assert.Equal(t, items, page(items, 0, 0))
}

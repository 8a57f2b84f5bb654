package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/rea/internal/app/auth"
	"github.com/yigit/rea/internal/app/filters"
	"github.com/yigit/rea/internal/app/models"
	"github.com/yigit/rea/internal/app/models/dto"
	"github.com/yigit/rea/internal/app/repositories"
	"github.com/yigit/rea/internal/pkg/apperrors"
	pkgauth "github.com/yigit/rea/internal/pkg/auth"
	"github.com/yigit/rea/internal/pkg/filestorage"
)

func TestMain(m *testing.M) {
	pkgauth.BcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type testEnv struct {
	repos           *repositories.Repositories
	storage         *filestorage.LocalStorage
	users           UserService
	auth            AuthService
	instruments     InstrumentService
	userInstruments UserInstrumentService
	exercises       ExerciseService
	stats           StatsService

	student, other, teacher, admin auth.Actor
	violin                         *models.Instrument
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	enforcer, err := auth.NewEnforcer()
	require.NoError(t, err)
	storage, err := filestorage.NewLocalStorage(t.TempDir(), "/media")
	require.NoError(t, err)
	jwtService := pkgauth.NewJWTService(pkgauth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "rea-test",
	})

	repos := repositories.NewMemoryRepositories()
	env := &testEnv{
		repos:           repos,
		storage:         storage,
		users:           NewUserService(repos.UserRepository, repos.UserInstrumentRepository, enforcer),
		auth:            NewAuthService(repos.UserRepository, enforcer, jwtService, zerolog.Nop()),
		instruments:     NewInstrumentService(repos.InstrumentRepository, enforcer),
		userInstruments: NewUserInstrumentService(repos.UserInstrumentRepository, enforcer),
		exercises:       NewExerciseService(repos.ExerciseRepository, storage, enforcer),
		stats:           NewStatsService(repos.UserRepository, repos.InstrumentRepository, enforcer),
	}

	mk := func(name string, userType models.UserType, staff bool) auth.Actor {
		u := &models.User{Username: name, UserType: userType, IsStaff: staff}
		require.NoError(t, repos.UserRepository.Create(ctx, u))
		return auth.ActorFromUser(u)
	}
	env.student = mk("student", models.UserTypeStudent, false)
	env.other = mk("other", models.UserTypeStudent, false)
	env.teacher = mk("teacher", models.UserTypeTeacher, false)
	env.admin = mk("admin", models.UserTypeStudent, true)

	env.violin = &models.Instrument{Name: "Violin", Family: "String"}
	require.NoError(t, repos.InstrumentRepository.Create(ctx, env.violin))
	return env
}

func fileHeader(t *testing.T, field, name string) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write([]byte("content of " + name))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File[field][0]
}

var firstPage = PageRequest{Page: 1, Size: 20}

func TestRegisterLoginAndResolve(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.auth.Register(ctx, auth.Anonymous(), &dto.RegisterRequest{
		Username: "newbie",
		Password: "correct-horse",
		UserType: models.UserTypeStudent,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token.AccessToken)
	assert.Equal(t, "Bearer", resp.Token.TokenType)
	assert.Equal(t, "newbie", resp.User.Username)

	actor, err := env.auth.ResolveActor(ctx, resp.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, actor.ID())
	assert.Equal(t, auth.RoleStudent, actor.Role())

	_, err = env.auth.Register(ctx, auth.Anonymous(), &dto.RegisterRequest{
		Username: "newbie", Password: "another-pass", UserType: models.UserTypeTeacher,
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = env.auth.Login(ctx, &dto.LoginRequest{Username: "newbie", Password: "wrong-password"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = env.auth.Login(ctx, &dto.LoginRequest{Username: "nobody", Password: "whatever"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	login, err := env.auth.Login(ctx, &dto.LoginRequest{Username: "newbie", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token.AccessToken)

	_, err = env.auth.ResolveActor(ctx, "garbage")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestResolveActorRejectsDeletedUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.auth.Register(ctx, auth.Anonymous(), &dto.RegisterRequest{
		Username: "ghost", Password: "boo-boo-boo", UserType: models.UserTypeStudent,
	})
	require.NoError(t, err)
	require.NoError(t, env.repos.UserRepository.Delete(ctx, resp.User.ID))

	_, err = env.auth.ResolveActor(ctx, resp.Token.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestRegisterRejectsBadDate(t *testing.T) {
	env := newTestEnv(t)
	bad := "17/05/2001"
	_, err := env.auth.Register(context.Background(), auth.Anonymous(), &dto.RegisterRequest{
		Username: "dated", Password: "long-enough", UserType: models.UserTypeStudent, DateOfBirth: &bad,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestInstrumentWritesNeedTeacherOrAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	req := &dto.InstrumentRequest{Name: "Cello", Family: "String"}

	_, err := env.instruments.CreateInstrument(ctx, env.student, req)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	_, err = env.instruments.CreateInstrument(ctx, auth.Anonymous(), req)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	created, err := env.instruments.CreateInstrument(ctx, env.teacher, req)
	require.NoError(t, err)
	assert.Equal(t, "Cello", created.Name)

	_, err = env.instruments.UpdateInstrument(ctx, env.student, created.ID, req)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.ErrorIs(t, env.instruments.DeleteInstrument(ctx, env.student, created.ID), apperrors.ErrPermissionDenied)

	desc := "bowed"
	patched, err := env.instruments.PatchInstrument(ctx, env.admin, created.ID, &dto.PatchInstrumentRequest{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "bowed", patched.Description)
	assert.Equal(t, "Cello", patched.Name)

	require.NoError(t, env.instruments.DeleteInstrument(ctx, env.teacher, created.ID))
	_, err = env.instruments.GetInstrument(ctx, env.student, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestListInstrumentsNeedsSignIn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.instruments.ListInstruments(ctx, auth.Anonymous(), filters.InstrumentFilter{}, firstPage)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	page, err := env.instruments.ListInstruments(ctx, env.student, filters.InstrumentFilter{}, firstPage)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Pagination.TotalItems)
}

func TestUserInstrumentDuplicateConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	req := &dto.UserInstrumentRequest{Instrument: env.violin.ID}

	created, err := env.userInstruments.CreateUserInstrument(ctx, env.student, nil, req)
	require.NoError(t, err)
	assert.Equal(t, env.student.ID(), created.User)
	assert.Equal(t, models.ProficiencyBeginner, created.Proficiency)
	assert.Equal(t, "Violin", created.InstrumentName)
	require.NotNil(t, created.InstrumentDetails)

	_, err = env.userInstruments.CreateUserInstrument(ctx, env.student, nil, req)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestUserInstrumentCreateOnBehalf(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	req := &dto.UserInstrumentRequest{Instrument: env.violin.ID, Proficiency: models.ProficiencyAdvanced}
	target := env.student.ID()

	_, err := env.userInstruments.CreateUserInstrument(ctx, env.other, &target, req)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	created, err := env.userInstruments.CreateUserInstrument(ctx, env.teacher, &target, req)
	require.NoError(t, err)
	assert.Equal(t, target, created.User)

	missing := int64(9999)
	_, err = env.userInstruments.CreateUserInstrument(ctx, env.admin, &missing, req)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	_, err = env.userInstruments.CreateUserInstrument(ctx, env.student, nil, &dto.UserInstrumentRequest{Instrument: 9999})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestUserInstrumentListScope(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	req := &dto.UserInstrumentRequest{Instrument: env.violin.ID}

	_, err := env.userInstruments.CreateUserInstrument(ctx, env.student, nil, req)
	require.NoError(t, err)
	_, err = env.userInstruments.CreateUserInstrument(ctx, env.other, nil, req)
	require.NoError(t, err)

	own, err := env.userInstruments.ListUserInstruments(ctx, env.student, filters.ScopeUserInstruments(env.student, nil), firstPage)
	require.NoError(t, err)
	items := own.Items.([]dto.UserInstrumentResponse)
	require.Len(t, items, 1)
	assert.Equal(t, env.student.ID(), items[0].User)

	_, err = env.userInstruments.ListUserInstruments(ctx, env.student, filters.ForUser(env.other.ID()), firstPage)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	_, err = env.userInstruments.ListUserInstruments(ctx, env.teacher, filters.ForUser(env.other.ID()), firstPage)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	scoped, err := env.userInstruments.ListUserInstruments(ctx, env.admin, filters.ForUser(env.other.ID()), firstPage)
	require.NoError(t, err)
	assert.EqualValues(t, 1, scoped.Pagination.TotalItems)

	all, err := env.userInstruments.ListUserInstruments(ctx, env.admin, filters.ScopeUserInstruments(env.admin, nil), firstPage)
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Pagination.TotalItems)

	_, err = env.userInstruments.ListUserInstruments(ctx, auth.Anonymous(), filters.ScopeUserInstruments(auth.Anonymous(), nil), firstPage)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestUserInstrumentSelfOrAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.userInstruments.CreateUserInstrument(ctx, env.student, nil, &dto.UserInstrumentRequest{Instrument: env.violin.ID})
	require.NoError(t, err)

	_, err = env.userInstruments.GetUserInstrument(ctx, env.other, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	years := 4
	patched, err := env.userInstruments.PatchUserInstrument(ctx, env.student, created.ID, &dto.PatchUserInstrumentRequest{YearsOfExperience: &years})
	require.NoError(t, err)
	assert.Equal(t, 4, patched.YearsOfExperience)

	assert.ErrorIs(t, env.userInstruments.DeleteUserInstrument(ctx, env.teacher, created.ID), apperrors.ErrPermissionDenied)
	require.NoError(t, env.userInstruments.DeleteUserInstrument(ctx, env.admin, created.ID))

	_, err = env.userInstruments.GetUserInstrument(ctx, env.admin, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestUserUpdateSelfOrAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := "Ada"

	_, err := env.users.PatchUser(ctx, env.other, env.student.ID(), &dto.PatchUserRequest{FirstName: &first})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	_, err = env.users.PatchUser(ctx, auth.Anonymous(), env.student.ID(), &dto.PatchUserRequest{FirstName: &first})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	updated, err := env.users.PatchUser(ctx, env.student, env.student.ID(), &dto.PatchUserRequest{FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.FirstName)
	assert.Equal(t, "student", updated.Username)

	dob := "2001-05-17"
	put, err := env.users.UpdateUser(ctx, env.admin, env.student.ID(), &dto.UpdateUserRequest{
		Username: "renamed", UserType: models.UserTypeStudent, DateOfBirth: &dob,
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", put.Username)
	require.NotNil(t, put.DateOfBirth)
	assert.Equal(t, dob, *put.DateOfBirth)

	taken := "teacher"
	_, err = env.users.PatchUser(ctx, env.student, env.student.ID(), &dto.PatchUserRequest{Username: &taken})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	assert.ErrorIs(t, env.users.DeleteUser(ctx, env.other, env.student.ID()), apperrors.ErrPermissionDenied)
	require.NoError(t, env.users.DeleteUser(ctx, env.student, env.student.ID()))
	_, err = env.users.GetUser(ctx, env.admin, env.student.ID())
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestUserDirectories(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.userInstruments.CreateUserInstrument(ctx, env.teacher, nil, &dto.UserInstrumentRequest{Instrument: env.violin.ID})
	require.NoError(t, err)

	teachers, err := env.users.ListTeachers(ctx, env.student, filters.UserFilter{}, firstPage)
	require.NoError(t, err)
	list := teachers.Items.([]dto.TeacherResponse)
	require.Len(t, list, 1)
	assert.Equal(t, "teacher", list[0].Username)
	require.Len(t, list[0].UserInstruments, 1)
	assert.Equal(t, "Violin", list[0].UserInstruments[0].InstrumentName)

	students, err := env.users.ListStudents(ctx, env.student, filters.UserFilter{}, firstPage)
	require.NoError(t, err)
	assert.EqualValues(t, 3, students.Pagination.TotalItems)

	me, err := env.users.GetMe(ctx, env.teacher)
	require.NoError(t, err)
	assert.Equal(t, env.teacher.ID(), me.ID)

	_, err = env.users.GetMe(ctx, auth.Anonymous())
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	links, err := env.users.GetUserInstruments(ctx, env.student, env.teacher.ID())
	require.NoError(t, err)
	assert.Len(t, links, 1)
}

func TestExerciseRequiresFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.exercises.CreateExercise(ctx, env.teacher, &dto.ExerciseUpload{})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = env.exercises.CreateExercise(ctx, env.student, &dto.ExerciseUpload{Midi: fileHeader(t, "midi", "a.mid")})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	created, err := env.exercises.CreateExercise(ctx, env.teacher, &dto.ExerciseUpload{Midi: fileHeader(t, "midi", "a.mid")})
	require.NoError(t, err)

	_, err = env.exercises.UpdateExercise(ctx, env.teacher, created.ID, &dto.ExerciseUpload{
		ExerciseForm: dto.ExerciseForm{ClearMidi: true},
	})
	assert.ErrorIs(t, err, apperrors.ErrExerciseFileRequired)
}

func TestExerciseUpdateMergesFiles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rhythm := "rhythm"
	created, err := env.exercises.CreateExercise(ctx, env.teacher, &dto.ExerciseUpload{
		ExerciseForm: dto.ExerciseForm{Category: &rhythm},
		Midi:         fileHeader(t, "midi", "a.mid"),
	})
	require.NoError(t, err)
	require.NotNil(t, created.Midi)
	assert.Nil(t, created.Svg)
	assert.Equal(t, models.CategoryRhythm, created.Category)

	stored, err := env.repos.ExerciseRepository.GetByID(ctx, created.ID)
	require.NoError(t, err)
	oldMidi := env.storage.GetFullPath(stored.Midi)
	_, err = os.Stat(oldMidi)
	require.NoError(t, err)

	updated, err := env.exercises.UpdateExercise(ctx, env.admin, created.ID, &dto.ExerciseUpload{
		ExerciseForm: dto.ExerciseForm{ClearMidi: true},
		Svg:          fileHeader(t, "svg", "score.svg"),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.Midi)
	require.NotNil(t, updated.Svg)
	assert.Equal(t, models.CategoryRhythm, updated.Category)

	_, err = os.Stat(oldMidi)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, env.exercises.DeleteExercise(ctx, env.teacher, created.ID))
	_, err = env.exercises.GetExercise(ctx, auth.Anonymous(), created.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestExerciseListAndStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, c := range []string{"pitch", "rhythm", "rhythm"} {
		_, err := env.exercises.CreateExercise(ctx, env.teacher, &dto.ExerciseUpload{
			ExerciseForm: dto.ExerciseForm{Category: &c},
			Svg:          fileHeader(t, "svg", "x.svg"),
		})
		require.NoError(t, err)
	}

	rhythm := models.CategoryRhythm
	page, err := env.exercises.ListExercises(ctx, auth.Anonymous(), filters.ExerciseFilter{Category: &rhythm}, firstPage)
	require.NoError(t, err)
	items := page.Items.([]dto.ExerciseResponse)
	require.Len(t, items, 2)
	assert.Greater(t, items[0].ID, items[1].ID)
	for _, e := range items {
		assert.Equal(t, models.CategoryRhythm, e.Category)
	}

	stats, err := env.exercises.GetStats(ctx, auth.Anonymous())
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 2, stats.ByCategory[models.CategoryRhythm])
}

func TestLandingStats(t *testing.T) {
	env := newTestEnv(t)

	stats, err := env.stats.GetStats(context.Background(), auth.Anonymous())
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.InstrumentsCount)
	assert.EqualValues(t, 1, stats.TeachersCount)
	assert.EqualValues(t, 3, stats.StudentsCount)
}

func TestWriteChecks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.userInstruments.CreateUserInstrument(ctx, env.student, nil, &dto.UserInstrumentRequest{Instrument: env.violin.ID})
	require.NoError(t, err)
	studentID := env.student.ID()

	tests := []struct {
		name  string
		check func() error
		want  error
	}{
		{"teacher writes instrument", func() error { return env.instruments.CheckWrite(env.teacher, auth.ActionCreate) }, nil},
		{"student writes instrument", func() error { return env.instruments.CheckWrite(env.student, auth.ActionUpdate) }, apperrors.ErrPermissionDenied},
		{"anonymous writes instrument", func() error { return env.instruments.CheckWrite(auth.Anonymous(), auth.ActionCreate) }, apperrors.ErrUnauthorized},
		{"teacher writes exercise", func() error { return env.exercises.CheckWrite(env.teacher, auth.ActionUpdate) }, nil},
		{"student writes exercise", func() error { return env.exercises.CheckWrite(env.student, auth.ActionCreate) }, apperrors.ErrPermissionDenied},
		{"anonymous writes exercise", func() error { return env.exercises.CheckWrite(auth.Anonymous(), auth.ActionCreate) }, apperrors.ErrUnauthorized},
		{"student creates own record", func() error { return env.userInstruments.CheckCreate(env.student, nil) }, nil},
		{"other creates for student", func() error { return env.userInstruments.CheckCreate(env.other, &studentID) }, apperrors.ErrPermissionDenied},
		{"teacher creates for student", func() error { return env.userInstruments.CheckCreate(env.teacher, &studentID) }, nil},
		{"anonymous creates record", func() error { return env.userInstruments.CheckCreate(auth.Anonymous(), nil) }, apperrors.ErrUnauthorized},
		{"owner updates record", func() error {
			return env.userInstruments.CheckWrite(ctx, env.student, created.ID, auth.ActionUpdate)
		}, nil},
		{"other updates record", func() error {
			return env.userInstruments.CheckWrite(ctx, env.other, created.ID, auth.ActionUpdate)
		}, apperrors.ErrPermissionDenied},
		{"missing record", func() error {
			return env.userInstruments.CheckWrite(ctx, env.admin, 9999, auth.ActionUpdate)
		}, apperrors.ErrResourceNotFound},
		{"user updates self", func() error {
			return env.users.CheckWrite(ctx, env.student, studentID, auth.ActionUpdate)
		}, nil},
		{"other updates user", func() error {
			return env.users.CheckWrite(ctx, env.other, studentID, auth.ActionUpdate)
		}, apperrors.ErrPermissionDenied},
		{"anonymous updates user", func() error {
			return env.users.CheckWrite(ctx, auth.Anonymous(), studentID, auth.ActionUpdate)
		}, apperrors.ErrUnauthorized},
		{"admin updates user", func() error {
			return env.users.CheckWrite(ctx, env.admin, studentID, auth.ActionUpdate)
		}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.check()
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

package usecase

import (
	"context"
	"testing"
	"time"

	"deptsite/internal/auth/adapter/security"
	"deptsite/internal/auth/config"
	"deptsite/internal/auth/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// mockAuthRepo implements repository.AuthRepository for usecase tests.
type mockAuthRepo struct {
	mock.Mock
}

func (m *mockAuthRepo) CreateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockAuthRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	var user *model.User
	if v := args.Get(0); v != nil {
		user = v.(*model.User)
	}
	return user, args.Error(1)
}

func (m *mockAuthRepo) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	var user *model.User
	if v := args.Get(0); v != nil {
		user = v.(*model.User)
	}
	return user, args.Error(1)
}

func (m *mockAuthRepo) UpdateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockAuthRepo) ListUsers(ctx context.Context) ([]*model.User, error) {
	args := m.Called(ctx)
	var users []*model.User
	if v := args.Get(0); v != nil {
		users = v.([]*model.User)
	}
	return users, args.Error(1)
}

func (m *mockAuthRepo) DeleteUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func newTestAuthUsecase(t *testing.T, repo *mockAuthRepo) *AuthUsecase {
	t.Helper()
	cfg := &config.Config{
		JWTSecretKey:   "test-secret-key-for-tests-only",
		JWTIssuer:      "deptsite-auth",
		AccessTokenTTL: time.Hour,
	}
	tokenSvc, err := security.NewJWTokenService(cfg)
	require.NoError(t, err)
	return NewAuthUsecase(repo, tokenSvc, cfg)
}

func TestRegister_CreatesUserWithToken(t *testing.T) {
	repo := &mockAuthRepo{}
	uc := newTestAuthUsecase(t, repo)

	var created *model.User
	repo.On("CreateUser", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*model.User)
		}).
		Return(nil)

	user, token, err := uc.Register(context.Background(), RegisterRequest{
		Email:    "  Maria@Dept.EDU ",
		Password: "correct horse battery",
		Name:     "Maria Quispe",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "maria@dept.edu", user.Email, "email is normalized")
	assert.Equal(t, model.RoleUser, user.Role, "role defaults to the lowest")
	assert.NotEqual(t, "correct horse battery", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("correct horse battery")))
}

func TestRegister_RejectsBadInput(t *testing.T) {
	uc := newTestAuthUsecase(t, &mockAuthRepo{})

	_, _, err := uc.Register(context.Background(), RegisterRequest{Email: "not-an-email", Password: "long enough pw"})
	assert.ErrorIs(t, err, ErrInvalidEmailFormat)

	_, _, err = uc.Register(context.Background(), RegisterRequest{Email: "a@dept.edu", Password: "short"})
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, _, err = uc.Register(context.Background(), RegisterRequest{Email: "a@dept.edu", Password: "long enough pw", Role: "superuser"})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestLogin_Success(t *testing.T) {
	repo := &mockAuthRepo{}
	uc := newTestAuthUsecase(t, repo)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse battery"), bcrypt.DefaultCost)
	require.NoError(t, err)
	repo.On("GetUserByEmail", mock.Anything, "maria@dept.edu").Return(&model.User{
		ID:           "u1",
		Email:        "maria@dept.edu",
		PasswordHash: string(hash),
		Role:         model.RoleFaculty,
	}, nil)

	user, token, err := uc.Login(context.Background(), LoginRequest{
		Email:    "maria@dept.edu",
		Password: "correct horse battery",
	})

	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	claims, err := uc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleFaculty, claims.Role)
}

func TestLogin_UniformErrorForBadCredentials(t *testing.T) {
	repo := &mockAuthRepo{}
	uc := newTestAuthUsecase(t, repo)

	hash, err := bcrypt.GenerateFromPassword([]byte("the real password"), bcrypt.DefaultCost)
	require.NoError(t, err)
	repo.On("GetUserByEmail", mock.Anything, "maria@dept.edu").Return(&model.User{
		Email:        "maria@dept.edu",
		PasswordHash: string(hash),
		Role:         model.RoleUser,
	}, nil)
	repo.On("GetUserByEmail", mock.Anything, "ghost@dept.edu").Return(nil, ErrUserNotFound)

	_, _, err = uc.Login(context.Background(), LoginRequest{Email: "maria@dept.edu", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = uc.Login(context.Background(), LoginRequest{Email: "ghost@dept.edu", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials, "unknown account and wrong password are indistinguishable")
}

func TestChangePassword(t *testing.T) {
	repo := &mockAuthRepo{}
	uc := newTestAuthUsecase(t, repo)

	hash, err := bcrypt.GenerateFromPassword([]byte("old password!"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &model.User{ID: "u1", Email: "maria@dept.edu", PasswordHash: string(hash)}

	repo.On("GetUserByID", mock.Anything, "u1").Return(user, nil)
	repo.On("UpdateUser", mock.Anything, user).Return(nil)

	err = uc.ChangePassword(context.Background(), "u1", "wrong", "new password!!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = uc.ChangePassword(context.Background(), "u1", "old password!", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	err = uc.ChangePassword(context.Background(), "u1", "old password!", "new password!!")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("new password!!")))
}

func TestValidateToken_RejectsGarbage(t *testing.T) {
	uc := newTestAuthUsecase(t, &mockAuthRepo{})

	_, err := uc.ValidateToken(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

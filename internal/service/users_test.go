package service

import (
	"context"
	"testing"
	"time"

	"wallet_booking/internal/domain"
	"wallet_booking/internal/store"
	"wallet_booking/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUsers(s *MockStore, m Mailer) *Users {
	return NewUsers(s, m, nil, UsersConfig{JWTSecret: "secret", JWTTTL: time.Hour, ReferralBonus: 5})
}

func TestUsers_RegisterValidation(t *testing.T) {
	svc := newUsers(&MockStore{}, &MockMailer{})
	ctx := context.Background()

	cases := []RegisterInput{
		{Username: "ab1", Email: "a@example.com", Password: "password1"},
		{Username: "alice", Email: "not-an-email", Password: "password1"},
		{Username: "alice", Email: "a@example.com", Password: "short"},
	}
	for _, in := range cases {
		_, err := svc.Register(ctx, in)
		assert.ErrorIs(t, err, ErrInvalidInput, in)
	}
}

func TestUsers_RegisterWithReferral(t *testing.T) {
	s, m := &MockStore{}, &MockMailer{}
	svc := newUsers(s, m)

	s.On("GetUserByReferralCode", mock.Anything, "ABCDEF").Return(&domain.User{ID: 7, ReferralCode: "ABCDEF"}, nil)
	s.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Username == "alice" && u.ReferredByID != nil && *u.ReferredByID == 7 && u.Password != "password1"
	}), 5.0).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.User).ID = 8
	}).Return(nil)
	m.On("Send", mock.Anything, mock.Anything).Return(nil)

	u, err := svc.Register(context.Background(), RegisterInput{
		Username:     "Alice",
		Email:        "Alice@Example.com",
		Password:     "password1",
		ReferralCode: "abcdef",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(8), u.ID)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Len(t, u.ReferralCode, 10)
	s.AssertExpectations(t)
	m.AssertNumberOfCalls(t, "Send", 1)
}

func TestUsers_RegisterUnknownReferral(t *testing.T) {
	s := &MockStore{}
	svc := newUsers(s, &MockMailer{})
	s.On("GetUserByReferralCode", mock.Anything, "NOPE").Return(nil, store.ErrNotFound)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "a@example.com", Password: "password1", ReferralCode: "nope",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
	s.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestUsers_RegisterDuplicate(t *testing.T) {
	s := &MockStore{}
	svc := newUsers(s, &MockMailer{})
	s.On("CreateUser", mock.Anything, mock.Anything, 5.0).Return(store.ErrDuplicate)

	_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Email: "a@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUsers_Login(t *testing.T) {
	s := &MockStore{}
	svc := newUsers(s, nil)
	hash, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
	require.NoError(t, err)
	s.On("GetUserByLogin", mock.Anything, "alice").Return(&domain.User{ID: 3, Role: domain.RoleUser, Password: string(hash)}, nil)
	s.On("GetUserByLogin", mock.Anything, "ghost").Return(nil, store.ErrNotFound)

	token, u, err := svc.Login(context.Background(), "alice", "password1")
	require.NoError(t, err)
	assert.Equal(t, uint(3), u.ID)
	claims, err := utils.ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(3), claims.UserID)

	_, _, err = svc.Login(context.Background(), "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.EqualError(t, err, "Invalid credentials")

	_, _, err = svc.Login(context.Background(), "ghost", "password1")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUsers_UpdateUserRequiresAdmin(t *testing.T) {
	s := &MockStore{}
	svc := newUsers(s, nil)
	s.On("GetUser", mock.Anything, uint(2)).Return(member(2, 0), nil)

	usdt := 100.0
	_, err := svc.UpdateUser(context.Background(), 2, 2, UpdateUserInput{USDT: &usdt})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.EqualError(t, err, "Admin access required")
	s.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestUsers_UpdateUser(t *testing.T) {
	s := &MockStore{}
	svc := newUsers(s, nil)
	ctx := context.Background()
	s.On("GetUser", mock.Anything, uint(1)).Return(admin(1), nil)

	t.Run("rejects negative balance", func(t *testing.T) {
		v := -1.0
		_, err := svc.UpdateUser(ctx, 1, 2, UpdateUserInput{BTC: &v})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		role := "owner"
		_, err := svc.UpdateUser(ctx, 1, 2, UpdateUserInput{Role: &role})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("admin cannot demote self", func(t *testing.T) {
		role := domain.RoleUser
		_, err := svc.UpdateUser(ctx, 1, 1, UpdateUserInput{Role: &role})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("applies fields", func(t *testing.T) {
		usdt, role := 50.0, domain.RoleAdmin
		s.On("UpdateUser", mock.Anything, uint(2), map[string]any{"usdt": 50.0, "role": "admin"}).Return(nil).Once()
		updated := member(2, 50)
		updated.Role = domain.RoleAdmin
		s.On("GetUser", mock.Anything, uint(2)).Return(updated, nil).Once()

		u, err := svc.UpdateUser(ctx, 1, 2, UpdateUserInput{USDT: &usdt, Role: &role})
		require.NoError(t, err)
		assert.Equal(t, 50.0, u.USDT)
		assert.True(t, u.IsAdmin())
	})

	t.Run("missing user", func(t *testing.T) {
		v := 1.0
		s.On("UpdateUser", mock.Anything, uint(9), mock.Anything).Return(store.ErrNotFound).Once()
		_, err := svc.UpdateUser(ctx, 1, 9, UpdateUserInput{ETH: &v})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUsers_DeleteUser(t *testing.T) {
	s := &MockStore{}
	svc := newUsers(s, nil)
	s.On("GetUser", mock.Anything, uint(1)).Return(admin(1), nil)
	s.On("DeleteUser", mock.Anything, uint(2)).Return(nil)

	assert.ErrorIs(t, svc.DeleteUser(context.Background(), 1, 1), ErrInvalidInput)
	assert.NoError(t, svc.DeleteUser(context.Background(), 1, 2))
	s.AssertNumberOfCalls(t, "DeleteUser", 1)
}

func TestUsers_ListReferrals(t *testing.T) {
	s := &MockStore{}
	svc := newUsers(s, nil)
	me := member(1, 0)
	me.ReferralCode = "ABCDEF"
	s.On("GetUser", mock.Anything, uint(1)).Return(me, nil)
	s.On("ListReferrals", mock.Anything, uint(1)).Return([]domain.User{{ID: 4, Username: "bob"}}, nil)

	r, err := svc.ListReferrals(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "ABCDEF", r.Code)
	require.Len(t, r.Users, 1)
	assert.Equal(t, "bob", r.Users[0].Username)
}

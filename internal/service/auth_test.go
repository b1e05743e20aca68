package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ticketeria/ticketeria/internal/domain"
	"github.com/ticketeria/ticketeria/internal/repository"
)

type fakeUserRepo struct {
	users  map[uint]domain.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  make(map[uint]domain.User),
		nextID: 1,
	}
}

func (f *fakeUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	for _, u := range f.users {
		if u.Email == user.Email {
			return domain.User{}, repository.ErrUserEmailExists
		}
	}

	// First user becomes admin, like the store does.
	if user.Role == "" {
		user.Role = domain.RoleUser
		if len(f.users) == 0 {
			user.Role = domain.RoleAdmin
		}
	}

	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = user

	return user, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uint) (domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}

	return u, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}

	return domain.User{}, repository.ErrUserNotFound
}

func (f *fakeUserRepo) FindAll(_ context.Context) ([]domain.User, error) {
	all := make([]domain.User, 0, len(f.users))
	for _, u := range f.users {
		all = append(all, u)
	}

	return all, nil
}

func (f *fakeUserRepo) Update(_ context.Context, id uint, user domain.User) (domain.User, error) {
	existing, ok := f.users[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}

	if user.Name != "" {
		existing.Name = user.Name
	}
	if user.Email != "" {
		existing.Email = user.Email
	}
	if user.Password != "" {
		existing.Password = user.Password
	}
	if user.Role != "" {
		existing.Role = user.Role
	}
	f.users[id] = existing

	return existing, nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id uint) error {
	if _, ok := f.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(f.users, id)

	return nil
}

func TestAuthService_Register(t *testing.T) {
	t.Run("hashes the password and ignores a submitted role", func(t *testing.T) {
		repo := newFakeUserRepo()
		repo.users[99] = domain.User{ID: 99, Email: "existing@example.com", Role: domain.RoleAdmin}
		svc := NewAuthService(repo)

		created, err := svc.Register(context.Background(), domain.User{
			Name:     "Alice",
			Email:    "alice@example.com",
			Password: "secret123",
			Role:     domain.RoleAdmin,
		})

		require.NoError(t, err)
		assert.Equal(t, domain.RoleUser, created.Role)
		assert.NotEqual(t, "secret123", created.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("secret123")))
	})

	t.Run("first user becomes admin", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo())

		created, err := svc.Register(context.Background(), domain.User{
			Name:     "Alice",
			Email:    "alice@example.com",
			Password: "secret123",
		})

		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, created.Role)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo())

		_, err := svc.Register(context.Background(), domain.User{
			Name: "Alice", Email: "alice@example.com", Password: "secret123",
		})
		require.NoError(t, err)

		_, err = svc.Register(context.Background(), domain.User{
			Name: "Impostor", Email: "alice@example.com", Password: "hunter22",
		})
		assert.ErrorIs(t, err, ErrUserEmailExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo)

	_, err := svc.Register(context.Background(), domain.User{
		Name: "Alice", Email: "alice@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	t.Run("correct credentials", func(t *testing.T) {
		user, err := svc.Login(context.Background(), "alice@example.com", "secret123")

		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "alice@example.com", "nope1234")

		assert.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "nobody@example.com", "secret123")

		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/carvalue/internal/domain/user"
)

type UsersRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[int64]user.User),
	}
}

func (r *UsersRepo) Create(_ context.Context, email, passwordHash string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	u := user.User{
		ID:       r.nextID,
		Email:    email,
		Password: passwordHash,
	}
	r.items[u.ID] = u

	return u, nil
}

func (r *UsersRepo) FindByID(_ context.Context, id int64) (*user.User, error) {
	if id == 0 {
		return nil, nil
	}

	r.mu.RLock()
	u, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return nil, user.ErrNotFound
	}

	return &u, nil
}

func (r *UsersRepo) FindByEmail(_ context.Context, email string) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0)
	for _, u := range r.items {
		if u.Email == email {
			out = append(out, u)
		}
	}

	// map order is random; keep id order like the SQL stores
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *UsersRepo) Update(_ context.Context, id int64, attrs user.Attrs) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	attrs.Apply(&u)
	r.items[id] = u

	return u, nil
}

func (r *UsersRepo) Remove(_ context.Context, id int64) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	delete(r.items, id)

	return u, nil
}

func (r *UsersRepo) Ping(context.Context) error { return nil }

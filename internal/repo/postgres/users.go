package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/carvalue/internal/domain/user"
	"github.com/geocoder89/carvalue/internal/repo"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ repo.UserStore = (*UsersRepo)(nil)

type UsersRepo struct {
	pool *pgxpool.Pool
	obs  repo.Observer
}

func NewUsersRepo(pool *pgxpool.Pool, obs repo.Observer) *UsersRepo {
	if obs == nil {
		obs = repo.NopObserver{}
	}
	return &UsersRepo{pool: pool, obs: obs}
}

const userColumns = `id, email, password, admin`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Admin)
	return u, err
}

func (r *UsersRepo) Create(ctx context.Context, email, passwordHash string) (user.User, error) {
	var u user.User

	err := r.obs.ObserveDB("users.create", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx,
			`INSERT INTO users (email, password) VALUES ($1, $2)
			RETURNING `+userColumns,
			email, passwordHash,
		))
		return err
	})

	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) FindByID(ctx context.Context, id int64) (*user.User, error) {
	if id == 0 {
		return nil, nil
	}

	var u user.User

	err := r.obs.ObserveDB("users.find_by_id", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}

	return &u, nil
}

func (r *UsersRepo) FindByEmail(ctx context.Context, email string) ([]user.User, error) {
	out := make([]user.User, 0)

	err := r.obs.ObserveDB("users.find_by_email", func() error {
		rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 ORDER BY id ASC`, email)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return err
			}
			out = append(out, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// Update uses COALESCE so that nil attributes keep their stored value.
func (r *UsersRepo) Update(ctx context.Context, id int64, attrs user.Attrs) (user.User, error) {
	var u user.User

	err := r.obs.ObserveDB("users.update", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx,
			`UPDATE users
			SET email = COALESCE($2, email),
				password = COALESCE($3, password),
				admin = COALESCE($4, admin)
			WHERE id = $1
			RETURNING `+userColumns,
			id, attrs.Email, attrs.Password, attrs.Admin,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Remove(ctx context.Context, id int64) (user.User, error) {
	var u user.User

	err := r.obs.ObserveDB("users.remove", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx, `DELETE FROM users WHERE id = $1 RETURNING `+userColumns, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/geocoder89/carvalue/internal/domain/user"
	"github.com/geocoder89/carvalue/internal/repo"
)

var _ repo.UserStore = (*UsersRepo)(nil)

type UsersRepo struct {
	db  *sql.DB
	obs repo.Observer
}

func NewUsersRepo(db *sql.DB, obs repo.Observer) *UsersRepo {
	if obs == nil {
		obs = repo.NopObserver{}
	}
	return &UsersRepo{db: db, obs: obs}
}

const userColumns = `id, email, password, admin`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Admin)
	return u, err
}

func (r *UsersRepo) Create(ctx context.Context, email, passwordHash string) (user.User, error) {
	var u user.User

	err := r.obs.ObserveDB("users.create", func() error {
		var err error
		u, err = scanUser(r.db.QueryRowContext(ctx,
			`INSERT INTO users (email, password) VALUES (?, ?) RETURNING `+userColumns,
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
		u, err = scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}

	return &u, nil
}

func (r *UsersRepo) FindByEmail(ctx context.Context, email string) ([]user.User, error) {
	out := make([]user.User, 0)

	err := r.obs.ObserveDB("users.find_by_email", func() error {
		rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ? ORDER BY id ASC`, email)
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

func (r *UsersRepo) Update(ctx context.Context, id int64, attrs user.Attrs) (user.User, error) {
	var u user.User

	err := r.obs.ObserveDB("users.update", func() error {
		var err error
		u, err = scanUser(r.db.QueryRowContext(ctx,
			`UPDATE users
			SET email = COALESCE(?, email),
				password = COALESCE(?, password),
				admin = COALESCE(?, admin)
			WHERE id = ?
			RETURNING `+userColumns,
			nullString(attrs.Email), nullString(attrs.Password), nullBool(attrs.Admin), id,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
		u, err = scanUser(r.db.QueryRowContext(ctx, `DELETE FROM users WHERE id = ? RETURNING `+userColumns, id))
		return err
	})

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullBool(p *bool) sql.NullBool {
	if p == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *p, Valid: true}
}

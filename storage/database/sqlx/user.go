package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/econspark/core/user"
)

const userColumns = `id, username, role, password_hash, created_at, last_login`

var userConstraints = map[string]error{
	"user_username_key": user.ErrUsernameExists,
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	const q = `
		INSERT INTO "user" (username, role, password_hash, created_at, last_login)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := repo.db.QueryRowxContext(ctx, q, usr.Username, usr.Role, usr.PasswordHash, usr.CreatedAt, usr.LastLogin).
		Scan(&usr.ID)
	if err != nil {
		return user.User{}, constraintError(err, userConstraints)
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(ctx, &usr, `SELECT `+userColumns+` FROM "user" WHERE id = $1`, id)
	if err != nil {
		return user.User{}, notFound(err, user.ErrNotFound)
	}
	return usr, nil
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(ctx, &usr, `SELECT `+userColumns+` FROM "user" WHERE username = $1`, username)
	if err != nil {
		return user.User{}, notFound(err, user.ErrNotFound)
	}
	return usr, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	const q = `
		UPDATE "user"
		SET password_hash = COALESCE($2, password_hash), last_login = $3
		WHERE id = $1
		RETURNING ` + userColumns

	var hash interface{}
	if usr.PasswordHash != nil {
		hash = usr.PasswordHash
	}
	var updated user.User
	if err := repo.db.GetContext(ctx, &updated, q, usr.ID, hash, usr.LastLogin); err != nil {
		return user.User{}, notFound(err, user.ErrNotFound)
	}
	return updated, nil
}

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/citygate/csrms/internal/domain/entity"
	"github.com/citygate/csrms/internal/domain/repository"
)

const userColumns = `id, user_id, email, password_hash, full_name, phone_number, address,
		role, is_verified, is_active, email_otp, email_otp_expires, registration_date`

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := resolve(ctx, r.db).QueryRow(ctx, `
		INSERT INTO users (user_id, email, password_hash, full_name, phone_number, address, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, registration_date
	`, u.UserCode, u.Email, u.PasswordHash, u.FullName, u.PhoneNumber, u.Address, u.Role)

	return row.Scan(&u.ID, &u.RegistrationDate)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1 AND is_active = TRUE
	`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1 AND is_active = TRUE
	`, email)
}

func (r *UserRepository) GetByEmailForUpdate(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1 AND is_active = TRUE
		FOR UPDATE
	`, email)
}

func (r *UserRepository) getOne(ctx context.Context, query string, args ...any) (*entity.User, error) {
	u := &entity.User{}
	row := resolve(ctx, r.db).QueryRow(ctx, query, args...)
	if err := row.Scan(&u.ID, &u.UserCode, &u.Email, &u.PasswordHash, &u.FullName,
		&u.PhoneNumber, &u.Address, &u.Role, &u.IsVerified, &u.IsActive,
		&u.OTPCode, &u.OTPExpires, &u.RegistrationDate); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, u *entity.User) error {
	res, err := resolve(ctx, r.db).Exec(ctx, `
		UPDATE users
		SET full_name = $1, phone_number = $2, address = $3
		WHERE id = $4 AND is_active = TRUE
	`, u.FullName, u.PhoneNumber, u.Address, u.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := resolve(ctx, r.db).Exec(ctx, `
		UPDATE users SET password_hash = $1 WHERE id = $2
	`, passwordHash, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *UserRepository) SetOTP(ctx context.Context, id, code string, expires time.Time) error {
	_, err := resolve(ctx, r.db).Exec(ctx, `
		UPDATE users SET email_otp = $1, email_otp_expires = $2 WHERE id = $3
	`, code, expires, id)
	return err
}

func (r *UserRepository) ClearOTP(ctx context.Context, id string) error {
	_, err := resolve(ctx, r.db).Exec(ctx, `
		UPDATE users SET email_otp = NULL, email_otp_expires = NULL WHERE id = $1
	`, id)
	return err
}

func (r *UserRepository) MarkVerified(ctx context.Context, id string) error {
	_, err := resolve(ctx, r.db).Exec(ctx, `
		UPDATE users
		SET is_verified = TRUE, email_otp = NULL, email_otp_expires = NULL
		WHERE id = $1
	`, id)
	return err
}

func (r *UserRepository) Deactivate(ctx context.Context, id string) error {
	res, err := resolve(ctx, r.db).Exec(ctx, `
		UPDATE users SET is_active = FALSE WHERE id = $1 AND is_active = TRUE
	`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)

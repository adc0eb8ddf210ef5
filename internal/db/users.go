package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type User struct {
	ID         int64     `db:"id"`
	TelegramID int64     `db:"telegram_id"`
	Username   *string   `db:"username"`
	FirstName  *string   `db:"first_name"`
	LastName   *string   `db:"last_name"`
	LastSeenAt time.Time `db:"last_seen_at"`
}

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// Upsert creates or refreshes the user row for a telegram identity and
// returns its internal id. Called on every interaction.
func (r *UserRepository) Upsert(telegramID int64, username, firstName, lastName *string) (int64, error) {
	var id int64

	err := r.db.Get(&id, `
	    INSERT INTO users (telegram_id, username, first_name, last_name, last_seen_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (telegram_id) DO UPDATE
		SET username = $2, first_name = $3, last_name = $4, last_seen_at = NOW()
		RETURNING id
	`, telegramID, username, firstName, lastName)

	if err != nil {
		return 0, fmt.Errorf("UserRepository.Upsert: %w", err)
	}

	return id, nil
}

func (r *UserRepository) GetByID(userID int64) (*User, error) {
	var user User

	err := r.db.Get(&user, `
	    SELECT * FROM users
		WHERE id = $1
	`, userID)

	if err != nil {
		return nil, fmt.Errorf("UserRepository.GetByID: %w", err)
	}

	return &user, nil
}

func (r *UserRepository) GetTelegramID(userID int64) (int64, error) {
	var telegramID int64

	err := r.db.Get(&telegramID, `
	    SELECT telegram_id FROM users
		WHERE id = $1
	`, userID)

	if err != nil {
		return 0, fmt.Errorf("UserRepository.GetTelegramID: %w", err)
	}

	return telegramID, nil
}

package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type RewardClaim struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Prize     string    `db:"prize"`
	Status    string    `db:"status"`
	Note      *string   `db:"note"`
	CreatedAt time.Time `db:"created_at"`
}

type RewardClaimRepository struct {
	db *sqlx.DB
}

func NewRewardClaimRepository(db *sqlx.DB) *RewardClaimRepository {
	return &RewardClaimRepository{
		db: db,
	}
}

func (r *RewardClaimRepository) Create(userID int64, prize string, note *string) error {
	_, err := r.db.Exec(`
	    INSERT INTO reward_claims (user_id, prize, status, note)
		VALUES ($1, $2, 'PENDING', $3)
	`, userID, prize, note)

	if err != nil {
		return fmt.Errorf("RewardClaimRepository.Create: %w", err)
	}

	return nil
}

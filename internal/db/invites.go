package db

import (
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// codeAlphabet excludes visually ambiguous characters (O/0/I/1).
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const (
	codeLength      = 8
	codePrefix      = "VIP-"
	codeMaxAttempts = 8
	redemptionUnit  = 4
)

type Invite struct {
	ID             int64     `db:"id"`
	UserID         int64     `db:"user_id"`
	Code           string    `db:"code"`
	ReferralsCount int       `db:"referrals_count"`
	CreatedAt      time.Time `db:"created_at"`
}

type InviteRepository struct {
	db *sqlx.DB
}

func NewInviteRepository(db *sqlx.DB) *InviteRepository {
	return &InviteRepository{
		db: db,
	}
}

// GenerateCode returns a fresh candidate invite code. Uniqueness is
// enforced by the database, not here.
func GenerateCode() (string, error) {
	out := make([]byte, codeLength)

	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", fmt.Errorf("db.GenerateCode: %w", err)
		}
		out[i] = codeAlphabet[n.Int64()]
	}

	return codePrefix + string(out), nil
}

// EnsureCode returns the user's invite code, creating it on first need.
// Collisions on the unique code column are retried with a new code.
func (r *InviteRepository) EnsureCode(userID int64) (string, error) {
	var code string

	err := r.db.Get(&code, `
	    SELECT code FROM user_invites
		WHERE user_id = $1
	`, userID)

	if err == nil {
		return code, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("InviteRepository.EnsureCode: %w", err)
	}

	for i := 0; i < codeMaxAttempts; i++ {
		code, err = GenerateCode()
		if err != nil {
			return "", fmt.Errorf("InviteRepository.EnsureCode: %w", err)
		}

		_, err = r.db.Exec(`
		    INSERT INTO user_invites (user_id, code) VALUES ($1, $2)
		`, userID, code)

		if err == nil {
			return code, nil
		}

		if !isUniqueViolation(err) {
			return "", fmt.Errorf("InviteRepository.EnsureCode: %w", err)
		}

		// Racing insert for the same user also lands here.
		var existing string
		if getErr := r.db.Get(&existing, `SELECT code FROM user_invites WHERE user_id = $1`, userID); getErr == nil {
			return existing, nil
		}
	}

	return "", fmt.Errorf("InviteRepository.EnsureCode: could not generate a unique code after %d attempts", codeMaxAttempts)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (r *InviteRepository) GetByUserID(userID int64) (*Invite, error) {
	var invite Invite

	err := r.db.Get(&invite, `
	    SELECT * FROM user_invites
		WHERE user_id = $1
	`, userID)

	if err != nil {
		return nil, fmt.Errorf("InviteRepository.GetByUserID: %w", err)
	}

	return &invite, nil
}

// GetByCode resolves a normalized code to its owning invite row.
// A missing code returns (nil, nil).
func (r *InviteRepository) GetByCode(code string) (*Invite, error) {
	var invite Invite

	err := r.db.Get(&invite, `
	    SELECT * FROM user_invites
		WHERE code = $1
	`, code)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("InviteRepository.GetByCode: %w", err)
	}

	return &invite, nil
}

func (r *InviteRepository) Increment(userID int64) (int, error) {
	var count int

	err := r.db.Get(&count, `
	    UPDATE user_invites
		SET referrals_count = referrals_count + 1
		WHERE user_id = $1
		RETURNING referrals_count
	`, userID)

	if err != nil {
		return 0, fmt.Errorf("InviteRepository.Increment: %w", err)
	}

	return count, nil
}

// RedeemUnit atomically consumes one redemption unit (4 referrals).
// The conditional update makes concurrent redemptions safe: at most
// one of two racing attempts on a counter of 4..7 succeeds.
func (r *InviteRepository) RedeemUnit(userID int64) (bool, int, error) {
	var remaining int

	err := r.db.Get(&remaining, `
	    UPDATE user_invites
		SET referrals_count = referrals_count - $2
		WHERE user_id = $1 AND referrals_count >= $2
		RETURNING referrals_count
	`, userID, redemptionUnit)

	if errors.Is(err, sql.ErrNoRows) {
		invite, getErr := r.GetByUserID(userID)
		if getErr != nil {
			return false, 0, getErr
		}
		return false, invite.ReferralsCount, nil
	}

	if err != nil {
		return false, 0, fmt.Errorf("InviteRepository.RedeemUnit: %w", err)
	}

	return true, remaining, nil
}

package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const (
	StatusDraft     = "DRAFT"
	StatusSubmitted = "SUBMITTED"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
)

type Request struct {
	ID                int64      `db:"id"`
	UserID            int64      `db:"user_id"`
	Campaign          string     `db:"campaign"`
	Status            string     `db:"status"`
	FullName          *string    `db:"full_name"`
	Email             *string    `db:"email"`
	Operator          *string    `db:"operator"`
	OperatorAccountID *string    `db:"operator_account_id"`
	InviteCode        *string    `db:"invite_code"`
	DepositAmount     *string    `db:"deposit_amount"`
	ScreenshotFileID  *string    `db:"screenshot_file_id"`
	ScreenshotPath    *string    `db:"screenshot_path"`
	AdminNote         *string    `db:"admin_note"`
	ReferralCredited  bool       `db:"referral_credited"`
	InfoRequestedAt   *time.Time `db:"info_requested_at"`
	CreatedAt         time.Time  `db:"created_at"`
	SubmittedAt       *time.Time `db:"submitted_at"`
	DecidedAt         *time.Time `db:"decided_at"`
}

// fieldColumns whitelists the columns the conversation engine may write.
var fieldColumns = map[string]string{
	"full_name":           "full_name",
	"email":               "email",
	"operator":            "operator",
	"operator_account_id": "operator_account_id",
	"invite_code":         "invite_code",
	"deposit_amount":      "deposit_amount",
}

type RequestRepository struct {
	db *sqlx.DB
}

func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{
		db: db,
	}
}

func (r *RequestRepository) CreateDraft(userID int64, campaign string) (int64, error) {
	var id int64

	err := r.db.Get(&id, `
	    INSERT INTO requests (user_id, campaign, status)
		VALUES ($1, $2, $3)
		RETURNING id
	`, userID, campaign, StatusDraft)

	if err != nil {
		return 0, fmt.Errorf("RequestRepository.CreateDraft: %w", err)
	}

	return id, nil
}

func (r *RequestRepository) GetByID(requestID int64) (*Request, error) {
	var req Request

	err := r.db.Get(&req, `
	    SELECT * FROM requests
		WHERE id = $1
	`, requestID)

	if err != nil {
		return nil, fmt.Errorf("RequestRepository.GetByID: %w", err)
	}

	return &req, nil
}

// SetField writes one collected questionnaire field. A nil value clears it
// (a skipped optional step).
func (r *RequestRepository) SetField(requestID int64, field string, value *string) error {
	column, ok := fieldColumns[field]
	if !ok {
		return fmt.Errorf("RequestRepository.SetField: unknown field %q", field)
	}

	_, err := r.db.Exec(fmt.Sprintf(`
	    UPDATE requests
		SET %s = $1
		WHERE id = $2
	`, column), value, requestID)

	if err != nil {
		return fmt.Errorf("RequestRepository.SetField: %w", err)
	}

	return nil
}

func (r *RequestRepository) SetScreenshot(requestID int64, fileID string, path *string) error {
	_, err := r.db.Exec(`
	    UPDATE requests
		SET screenshot_file_id = $1, screenshot_path = $2
		WHERE id = $3
	`, fileID, path, requestID)

	if err != nil {
		return fmt.Errorf("RequestRepository.SetScreenshot: %w", err)
	}

	return nil
}

// SetStatus transitions the request and stamps the matching timestamp.
func (r *RequestRepository) SetStatus(requestID int64, status string, adminNote *string) error {
	query := `
	    UPDATE requests
		SET status = $1,
		    admin_note = COALESCE($2, admin_note),
		    submitted_at = CASE WHEN $1 = 'SUBMITTED' THEN NOW() ELSE submitted_at END,
		    decided_at = CASE WHEN $1 IN ('APPROVED', 'REJECTED') THEN NOW() ELSE decided_at END
		WHERE id = $3
	`

	if _, err := r.db.Exec(query, status, adminNote, requestID); err != nil {
		return fmt.Errorf("RequestRepository.SetStatus: %w", err)
	}

	return nil
}

// Decide writes a terminal decision. The conditional update keeps decided
// requests immutable against stale decision keyboards: only a SUBMITTED
// row matches, plus a row already in the same terminal state so
// re-approving resends the access link. Returns false when the row was
// decided the other way or never submitted.
func (r *RequestRepository) Decide(requestID int64, status string, adminNote *string) (bool, error) {
	res, err := r.db.Exec(`
	    UPDATE requests
		SET status = $1,
		    admin_note = COALESCE($2, admin_note),
		    decided_at = NOW()
		WHERE id = $3 AND status IN ($4, $1)
	`, status, adminNote, requestID, StatusSubmitted)

	if err != nil {
		return false, fmt.Errorf("RequestRepository.Decide: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("RequestRepository.Decide: %w", err)
	}

	return rows > 0, nil
}

func (r *RequestRepository) MarkReferralCredited(requestID int64) error {
	_, err := r.db.Exec(`
	    UPDATE requests
		SET referral_credited = TRUE
		WHERE id = $1
	`, requestID)

	if err != nil {
		return fmt.Errorf("RequestRepository.MarkReferralCredited: %w", err)
	}

	return nil
}

func (r *RequestRepository) MarkInfoRequested(requestID int64, note string) error {
	_, err := r.db.Exec(`
	    UPDATE requests
		SET info_requested_at = NOW(), admin_note = $1
		WHERE id = $2
	`, note, requestID)

	if err != nil {
		return fmt.Errorf("RequestRepository.MarkInfoRequested: %w", err)
	}

	return nil
}

// HasApproved reports whether the user owns at least one approved request
// for the given campaign. Gates the reward-claim flow.
func (r *RequestRepository) HasApproved(userID int64, campaign string) (bool, error) {
	var count int

	err := r.db.Get(&count, `
	    SELECT COUNT(1) FROM requests
		WHERE user_id = $1 AND campaign = $2 AND status = $3
	`, userID, campaign, StatusApproved)

	if err != nil {
		return false, fmt.Errorf("RequestRepository.HasApproved: %w", err)
	}

	return count > 0, nil
}

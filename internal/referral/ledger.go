// Package referral attributes submissions to inviters and handles reward
// redemption: every 4 counted referrals earn one redeemable prize unit.
package referral

import (
	"fmt"
	"strings"

	"github.com/AlekSi/pointer"
	"go.uber.org/zap"

	"vip-access-bot/internal/db"
)

// UnitSize is the number of referrals one redemption consumes.
const UnitSize = 4

// PrizeValue is the face value of one redeemed unit, in EUR.
const PrizeValue = 40

// Prizes is the fixed catalog a redeeming user chooses from.
var Prizes = []string{"Amazon", "Zalando", "Airbnb", "Apple", "Spotify"}

func ValidPrize(prize string) bool {
	for _, p := range Prizes {
		if p == prize {
			return true
		}
	}

	return false
}

type InviteStore interface {
	EnsureCode(userID int64) (string, error)
	GetByUserID(userID int64) (*db.Invite, error)
	GetByCode(code string) (*db.Invite, error)
	Increment(userID int64) (int, error)
	RedeemUnit(userID int64) (bool, int, error)
}

type RequestStore interface {
	MarkReferralCredited(requestID int64) error
}

type ClaimStore interface {
	Create(userID int64, prize string, note *string) error
}

type Ledger struct {
	invites  InviteStore
	requests RequestStore
	claims   ClaimStore
	log      *zap.Logger
}

func NewLedger(invites InviteStore, requests RequestStore, claims ClaimStore, log *zap.Logger) *Ledger {
	return &Ledger{
		invites:  invites,
		requests: requests,
		claims:   claims,
		log:      log,
	}
}

// Credit attributes a submitted request to the owner of the invite code it
// carries. Idempotent per request: the referral_credited column is checked
// before incrementing, so replaying a submit event counts at most once.
// Unknown codes and self-referrals are silent no-ops.
func (l *Ledger) Credit(req *db.Request) error {
	if req.ReferralCredited {
		return nil
	}

	if req.InviteCode == nil {
		return nil
	}

	code := strings.ToUpper(strings.TrimSpace(*req.InviteCode))
	if code == "" {
		return nil
	}

	inviter, err := l.invites.GetByCode(code)
	if err != nil {
		return fmt.Errorf("referral.Credit: %w", err)
	}

	if inviter == nil {
		return nil
	}

	if inviter.UserID == req.UserID {
		l.log.Info("ignoring self-referral",
			zap.Int64("request_id", req.ID),
			zap.String("code", code))
		return nil
	}

	count, err := l.invites.Increment(inviter.UserID)
	if err != nil {
		return fmt.Errorf("referral.Credit: %w", err)
	}

	if err := l.requests.MarkReferralCredited(req.ID); err != nil {
		return fmt.Errorf("referral.Credit: %w", err)
	}

	l.log.Info("referral credited",
		zap.Int64("request_id", req.ID),
		zap.Int64("inviter_user_id", inviter.UserID),
		zap.Int("referrals_count", count))

	return nil
}

// Status is a user's referral standing.
type Status struct {
	Code  string
	Count int
	Units int
}

func (l *Ledger) Status(userID int64) (Status, error) {
	code, err := l.invites.EnsureCode(userID)
	if err != nil {
		return Status{}, fmt.Errorf("referral.Status: %w", err)
	}

	invite, err := l.invites.GetByUserID(userID)
	if err != nil {
		return Status{}, fmt.Errorf("referral.Status: %w", err)
	}

	return Status{
		Code:  code,
		Count: invite.ReferralsCount,
		Units: invite.ReferralsCount / UnitSize,
	}, nil
}

// Redemption reports the outcome of one redemption attempt.
type Redemption struct {
	OK bool
	// Count is the referral counter after a successful redemption, or the
	// unchanged counter when the precondition failed.
	Count int
	Code  string
}

// Redeem consumes exactly one unit of 4 referrals for the chosen prize.
// The decrement is a single conditional update at the storage boundary, so
// a lost race fails the precondition instead of over-redeeming, and no
// RewardClaim is created.
func (l *Ledger) Redeem(userID int64, prize string) (Redemption, error) {
	if !ValidPrize(prize) {
		return Redemption{}, fmt.Errorf("referral.Redeem: unknown prize %q", prize)
	}

	code, err := l.invites.EnsureCode(userID)
	if err != nil {
		return Redemption{}, fmt.Errorf("referral.Redeem: %w", err)
	}

	ok, count, err := l.invites.RedeemUnit(userID)
	if err != nil {
		return Redemption{}, fmt.Errorf("referral.Redeem: %w", err)
	}

	if !ok {
		return Redemption{OK: false, Count: count, Code: code}, nil
	}

	err = l.claims.Create(userID, prize, pointer.ToString("Prize claim from bot"))
	if err != nil {
		return Redemption{}, fmt.Errorf("referral.Redeem: %w", err)
	}

	l.log.Info("reward redeemed",
		zap.Int64("user_id", userID),
		zap.String("prize", prize),
		zap.Int("referrals_left", count))

	return Redemption{OK: true, Count: count, Code: code}, nil
}

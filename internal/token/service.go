// Package token implements the QR attendance token lifecycle: issuance of
// short-lived single-use tokens bound to a class session, and their
// exactly-once redemption into attendance records.
package token

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// Redemption failures the caller can act on.
var (
	// ErrInvalidToken covers never-issued, already-redeemed and malformed
	// tokens; the store cannot tell these apart and neither can we.
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
	// ErrAlreadyMarked means a present record for this (student, schedule,
	// date) already exists; the duplicate scan is rejected, never doubled.
	ErrAlreadyMarked = errors.New("attendance already marked")

	ErrTokenPersistence  = errors.New("token persistence failed")
	ErrRecordPersistence = errors.New("attendance record persistence failed")
)

// Token is one proof-of-presence opportunity for a class session.
type Token struct {
	Value      string
	ScheduleID string
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// TokenStore persists live tokens. Get must return ErrInvalidToken for a
// missing row.
type TokenStore interface {
	Insert(ctx context.Context, tok Token) error
	Get(ctx context.Context, value string) (Token, error)
	Delete(ctx context.Context, value string) error
}

// RecordStore creates attendance records. InsertRecord must return
// ErrAlreadyMarked when the store's (student, schedule, date) uniqueness
// constraint rejects the row; that constraint is the exactly-once gate for
// redemption.
type RecordStore interface {
	InsertRecord(ctx context.Context, studentID, scheduleID string, day time.Time) error
}

// Service issues and redeems attendance tokens.
type Service struct {
	tokens  TokenStore
	records RecordStore
	ttl     time.Duration
	qrSize  int
	now     func() time.Time
}

// NewService creates a token engine with the given token lifetime.
func NewService(tokens TokenStore, records RecordStore, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Service{
		tokens:  tokens,
		records: records,
		ttl:     ttl,
		qrSize:  qrImageSize,
		now:     time.Now,
	}
}

// Issue mints a fresh token for the schedule and returns it rendered as a
// QR PNG. The token value itself travels only inside the image.
func (s *Service) Issue(ctx context.Context, scheduleID string) ([]byte, error) {
	if scheduleID == "" {
		return nil, errors.New("schedule id required")
	}
	now := s.now().UTC()
	tok := Token{
		Value:      uuid.NewString(),
		ScheduleID: scheduleID,
		IssuedAt:   now,
		ExpiresAt:  now.Add(s.ttl),
	}
	if err := s.tokens.Insert(ctx, tok); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenPersistence, err)
	}
	img, err := renderQRPNG(tok.Value, s.qrSize)
	if err != nil {
		// Don't leave a live token nobody can scan.
		_ = s.tokens.Delete(ctx, tok.Value)
		return nil, fmt.Errorf("%w: render: %v", ErrTokenPersistence, err)
	}
	tokensIssued.Inc()
	return img, nil
}

// Redeem exchanges a scanned token for a present record dated today (UTC).
//
// The ordering matters: the record insert is the linearization point for
// concurrent redemptions, and the token row is deleted only after the insert
// succeeded. Two racing calls can both pass the lookup and expiry checks;
// the record constraint lets exactly one through.
func (s *Service) Redeem(ctx context.Context, value, studentID string) error {
	if value == "" || studentID == "" {
		return ErrInvalidToken
	}
	tok, err := s.tokens.Get(ctx, value)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			redeemFailures.WithLabelValues("invalid").Inc()
			return ErrInvalidToken
		}
		return fmt.Errorf("%w: %v", ErrTokenPersistence, err)
	}
	now := s.now().UTC()
	if now.After(tok.ExpiresAt) {
		// Row is left behind for the external sweep; it can never be
		// redeemed since expiry is re-checked on every attempt.
		redeemFailures.WithLabelValues("expired").Inc()
		return ErrExpiredToken
	}
	if err := s.records.InsertRecord(ctx, studentID, tok.ScheduleID, now); err != nil {
		if errors.Is(err, ErrAlreadyMarked) {
			redeemFailures.WithLabelValues("duplicate").Inc()
			return ErrAlreadyMarked
		}
		return fmt.Errorf("%w: %v", ErrRecordPersistence, err)
	}
	if err := s.tokens.Delete(ctx, value); err != nil {
		// The insert already decided the outcome; a surviving row is
		// rejected on rescan by the record constraint.
		log.Printf("token delete after redemption failed: %v", err)
	}
	tokensRedeemed.Inc()
	return nil
}

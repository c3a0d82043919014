// Package tokenstore owns the durable client-side session state: the access
// token with its acquisition timestamp, plus the last fetched profile
// snapshot. It is pure storage; the backend's 401 stays the authority on
// token validity.
package tokenstore

import (
	"log/slog"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Token struct {
	Value      string
	AcquiredAt time.Time
}

// sessionState is a single-row table, always id=1. Last write wins; two
// concurrent refreshes racing here is a tolerated race, the request holding
// the stale token will 401 and refresh again.
type sessionState struct {
	ID         uint   `gorm:"primaryKey"`
	Token      string `gorm:"not null"`
	AcquiredAt int64  `gorm:"not null"`
	Profile    []byte
}

type Store struct {
	db  *gorm.DB
	log *slog.Logger
	now func() time.Time
}

func Open(path string, log *slog.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&sessionState{}); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{db: db, log: log, now: time.Now}, nil
}

// Get returns the stored token, or nil when absent. Storage failures count
// as absent.
func (s *Store) Get() *Token {
	var row sessionState
	if err := s.db.First(&row, 1).Error; err != nil {
		return nil
	}
	if row.Token == "" {
		return nil
	}
	return &Token{Value: row.Token, AcquiredAt: time.Unix(row.AcquiredAt, 0)}
}

// Set overwrites the token wholesale and stamps the acquisition time.
func (s *Store) Set(value string) {
	row := sessionState{ID: 1, Token: value, AcquiredAt: s.now().Unix()}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var prev sessionState
		if tx.First(&prev, 1).Error == nil {
			row.Profile = prev.Profile
		}
		return tx.Save(&row).Error
	})
	if err != nil {
		s.log.Warn("token store write failed", "error", err)
	}
}

// Clear removes token and profile. Idempotent.
func (s *Store) Clear() {
	if err := s.db.Delete(&sessionState{}, 1).Error; err != nil {
		s.log.Warn("token store clear failed", "error", err)
	}
}

// SaveProfile caches the raw profile document next to the token so the next
// start can render immediately while revalidating.
func (s *Store) SaveProfile(raw []byte) {
	err := s.db.Model(&sessionState{}).Where("id = ?", 1).Update("profile", raw).Error
	if err != nil {
		s.log.Warn("profile cache write failed", "error", err)
	}
}

func (s *Store) CachedProfile() []byte {
	var row sessionState
	if err := s.db.First(&row, 1).Error; err != nil {
		return nil
	}
	return row.Profile
}

// Stale reports whether the token looks too old to bother sending. When the
// token parses as a JWT its exp claim decides; otherwise the acquisition
// timestamp against maxAge. A heuristic only, never a correctness gate.
func (s *Store) Stale(maxAge time.Duration) bool {
	tok := s.Get()
	if tok == nil {
		return true
	}
	if exp, ok := jwtExpiry(tok.Value); ok {
		return s.now().After(exp)
	}
	return s.now().Sub(tok.AcquiredAt) > maxAge
}

func jwtExpiry(value string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(value, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ikyriazi/elaute-api/pkg/session"
)

// SessionStore keeps sessions in PostgreSQL.
type SessionStore struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

func NewSessionStore(db *gorm.DB, ttl time.Duration) *SessionStore {
	return &SessionStore{db: db, ttl: ttl, now: time.Now}
}

func (s *SessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	var row Session
	err := s.db.WithContext(ctx).
		Where("id = ? AND expires_at > ?", id, s.now()).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return decodeSession(row)
}

func (s *SessionStore) Save(ctx context.Context, sess *session.Session) error {
	row, err := encodeSession(sess, s.now().Add(s.ttl))
	if err != nil {
		return err
	}

	// Upsert the session using ON CONFLICT
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "hidden", "terms", "expires_at", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Session{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return session.ErrNotFound
	}
	return nil
}

// PurgeExpired deletes the expired sessions and returns how many were removed.
func (s *SessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.now()).Delete(&Session{})
	return res.RowsAffected, res.Error
}

func encodeSession(sess *session.Session, expires time.Time) (Session, error) {
	state, err := json.Marshal(sess)
	if err != nil {
		return Session{}, fmt.Errorf("failed to encode session: %w", err)
	}
	// jsonb rejects escaped null characters as well
	state = []byte(strings.ReplaceAll(string(state), `\u0000`, ""))

	var hidden []string
	terms := ""
	if sess.View != nil {
		for _, id := range sess.View.Hidden() {
			hidden = append(hidden, sanitizeString(id))
		}
		terms = sanitizeString(sess.View.Terms)
	}

	return Session{
		Model:     Model{CreatedAt: sess.CreatedAt, UpdatedAt: sess.UpdatedAt},
		ID:        sanitizeString(sess.ID),
		State:     state,
		Hidden:    pq.StringArray(hidden),
		Terms:     terms,
		ExpiresAt: expires,
	}, nil
}

func decodeSession(row Session) (*session.Session, error) {
	var sess session.Session
	if err := json.Unmarshal(row.State, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	sess.ID = row.ID
	sess.Normalize()
	return &sess, nil
}

package session

import (
	"errors"
	"strings"
	"time"

	"github.com/embracingthegirlchild/site/internal/models"
	jwtpkg "github.com/embracingthegirlchild/site/internal/pkg/jwt"
	"gorm.io/gorm"
)

// DefaultTTL matches the two-week login lifetime of the old site.
const DefaultTTL = 14 * 24 * time.Hour

var ErrSessionInactive = errors.New("session expired or revoked")

// Manager issues DB-backed sessions and the signed tokens that reference
// them.
type Manager struct {
	db     *gorm.DB
	signer *jwtpkg.Signer
	ttl    time.Duration
}

func NewManager(db *gorm.DB, signer *jwtpkg.Signer, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{db: db, signer: signer, ttl: ttl}
}

func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue creates a session row for userID and signs a token bound to it.
func (m *Manager) Issue(userID, ip, ua string) (string, *models.UserSession, error) {
	s := &models.UserSession{
		UserID:    userID,
		IP:        strings.TrimSpace(ip),
		UA:        strings.TrimSpace(ua),
		ExpiresAt: time.Now().Add(m.ttl),
	}
	if err := m.db.Create(s).Error; err != nil {
		return "", nil, err
	}

	token, err := m.signer.Sign(userID, s.ID, m.ttl)
	if err != nil {
		_ = m.db.Delete(s).Error
		return "", nil, err
	}
	return token, s, nil
}

// Resolve verifies token and returns its claims if the session is active.
func (m *Manager) Resolve(token string) (*jwtpkg.Claims, error) {
	claims, err := m.signer.Parse(token)
	if err != nil {
		return nil, err
	}
	active, err := m.IsActive(claims.UserID, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrSessionInactive
	}
	return claims, nil
}

func (m *Manager) IsActive(userID, sessionID string) (bool, error) {
	if strings.TrimSpace(sessionID) == "" {
		return false, nil
	}
	var count int64
	err := m.db.Model(&models.UserSession{}).
		Where("id = ? AND user_id = ? AND revoked_at IS NULL AND expires_at > ?", sessionID, userID, time.Now()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Revoke ends one session. Revoking an unknown or already revoked session
// is not an error.
func (m *Manager) Revoke(userID, sessionID string) error {
	now := time.Now()
	return m.db.Model(&models.UserSession{}).
		Where("id = ? AND user_id = ? AND revoked_at IS NULL", sessionID, userID).
		Update("revoked_at", &now).Error
}

// PurgeExpired deletes sessions that can no longer be used.
func (m *Manager) PurgeExpired() (int64, error) {
	res := m.db.Where("expires_at <= ? OR revoked_at IS NOT NULL", time.Now()).Delete(&models.UserSession{})
	return res.RowsAffected, res.Error
}

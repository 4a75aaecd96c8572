package models

import "time"

// UserModel is a post author who can sign in to the dashboard.
type UserModel struct {
	Base
	Username      string     `json:"username"        gorm:"size:150;uniqueIndex;not null"`
	Name          string     `json:"name"            gorm:"size:150"`
	Email         string     `json:"email"           gorm:"size:254"`
	Password      string     `json:"-"               gorm:"not null"`
	LastLoginTime *time.Time `json:"last_login_time"`
	LastLoginIP   string     `json:"last_login_ip"   gorm:"size:64"`
}

func (UserModel) TableName() string { return "users" }

// DisplayName falls back to the username when no name is set.
func (u UserModel) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// UserSession backs a signed session cookie. A session stays valid until it
// expires or is revoked on logout.
type UserSession struct {
	Base
	UserID    string     `json:"user_id"    gorm:"type:char(36);index;not null"`
	IP        string     `json:"ip"         gorm:"size:64"`
	UA        string     `json:"ua"         gorm:"type:text"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"index;not null"`
	RevokedAt *time.Time `json:"revoked_at" gorm:"index"`
}

func (UserSession) TableName() string { return "user_sessions" }

package devauth

import (
	"time"

	"github.com/lib/pq"
)

// User is a dev-only account. GrantedRoles lists every role the account may
// log in under; the first entry is the role /authenticate reports.
type User struct {
	UserID         string         `gorm:"primaryKey" json:"user_id"`
	Username       string         `gorm:"uniqueIndex" json:"username"`
	Password       string         `json:"password" gorm:"-"`
	HashedPassword string         `json:"-"`
	FullName       string         `json:"full_name"`
	Email          string         `json:"email"`
	GrantedRoles   pq.StringArray `gorm:"type:text[]" json:"granted_roles"`
}

// TokenPair is an issued access/refresh pair. Tokens are opaque uuids; this
// service is a stand-in, not a real token authority.
type TokenPair struct {
	AccessToken  string    `gorm:"primaryKey" json:"-"`
	RefreshToken string    `gorm:"uniqueIndex;not null" json:"-"`
	UserID       string    `gorm:"not null" json:"-"`
	ExpiresAt    time.Time `gorm:"not null"`
}

func (User) TableName() string      { return "dev_auth.users" }
func (TokenPair) TableName() string { return "dev_auth.token_pairs" }

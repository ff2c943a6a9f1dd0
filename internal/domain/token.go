package domain

import "time"

// Token is an access/refresh pair. The two halves share one record so that
// revoking either one invalidates both. UserID is empty for tokens issued via
// the client_credentials grant. ClientID holds the public client identifier.
type Token struct {
	ID                    string `gorm:"primaryKey;type:uuid"`
	AccessToken           string `gorm:"uniqueIndex;not null"`
	RefreshToken          string `gorm:"uniqueIndex;not null"`
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time `gorm:"index"`
	Scopes                []string  `gorm:"serializer:json"`
	ClientID              string    `gorm:"not null;index"`
	UserID                string    `gorm:"index"`
	CreatedAt             time.Time
}

func (t *Token) AccessExpired() bool {
	return time.Now().After(t.AccessTokenExpiresAt)
}

func (t *Token) RefreshExpired() bool {
	return time.Now().After(t.RefreshTokenExpiresAt)
}

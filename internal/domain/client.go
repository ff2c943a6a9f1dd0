package domain

import "time"

// Client is a registered OAuth2 client application. The secret is stored as
// a digest and is only ever returned in plaintext at registration time.
type Client struct {
	ID                string `gorm:"primaryKey;type:uuid"`
	ClientID          string `gorm:"uniqueIndex;not null"`
	SecretDigest      string `gorm:"not null"`
	Name              string
	RedirectURIs      []string `gorm:"serializer:json"`
	AllowedGrantTypes []string `gorm:"serializer:json"`
	Scopes            []string `gorm:"serializer:json"`
	IsPublic          bool     `gorm:"default:false"`
	Active            bool     `gorm:"default:true"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (c *Client) AllowsGrant(grantType string) bool {
	for _, g := range c.AllowedGrantTypes {
		if g == grantType {
			return true
		}
	}
	return false
}

func (c *Client) AllowsRedirect(uri string) bool {
	for _, u := range c.RedirectURIs {
		if u == uri {
			return true
		}
	}
	return false
}

// AuthorizationCode is a single-use code issued by the authorize endpoint.
// ClientID holds the public client identifier, not the row id.
type AuthorizationCode struct {
	ID          string `gorm:"primaryKey;type:uuid"`
	Code        string `gorm:"uniqueIndex;not null"`
	ClientID    string `gorm:"not null;index"`
	UserID      string `gorm:"not null;index"`
	RedirectURI string
	Scopes      []string  `gorm:"serializer:json"`
	ExpiresAt   time.Time `gorm:"not null;index"`
	CreatedAt   time.Time
}

func (ac *AuthorizationCode) IsExpired() bool {
	return time.Now().After(ac.ExpiresAt)
}

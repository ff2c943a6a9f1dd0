package domain

import "time"

// User is a resource owner. Password holds the bcrypt digest, never the
// plaintext credential.
type User struct {
	ID        string `gorm:"primaryKey;type:uuid"`
	Username  string `gorm:"uniqueIndex;not null"`
	Email     string `gorm:"uniqueIndex;not null"`
	Password  string `gorm:"not null"`
	FirstName string
	LastName  string
	Active    bool `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

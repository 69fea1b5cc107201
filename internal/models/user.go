package models

import "time"

// User represents a registered account.
type User struct {
	ID                   string     `json:"id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	Name                 string     `json:"name" bson:"name" gorm:"type:varchar(100)"`
	Email                string     `json:"email" bson:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	PasswordHash         string     `json:"-" bson:"passwordHash" gorm:"type:varchar(255)"` // No json tag for security
	Hearts               []string   `json:"hearts" bson:"hearts" gorm:"-"`
	ResetPasswordToken   string     `json:"-" bson:"resetPasswordToken,omitempty" gorm:"type:varchar(64);index"`
	ResetPasswordExpires *time.Time `json:"-" bson:"resetPasswordExpires,omitempty"`
	CreatedAt            time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt" bson:"updatedAt"`

	HeartRows []Heart `json:"-" bson:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Heart is the relational row behind User.Hearts.
type Heart struct {
	UserID    string `gorm:"primaryKey;type:varchar(36)"`
	StoreID   string `gorm:"primaryKey;type:varchar(36);index"`
	CreatedAt time.Time
}

// TableName keeps the hearts table name explicit.
func (Heart) TableName() string { return "user_hearts" }

// HasHeart reports whether storeID is in the user's hearts.
func (u *User) HasHeart(storeID string) bool {
	for _, id := range u.Hearts {
		if id == storeID {
			return true
		}
	}
	return false
}

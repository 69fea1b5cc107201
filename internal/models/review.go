package models

import "time"

// Review is a user's rating of a store. Reviews reference their store, stores never embed them.
type Review struct {
	ID       string    `json:"id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	StoreID  string    `json:"store" bson:"store" gorm:"type:varchar(36);index;not null"`
	AuthorID string    `json:"author" bson:"author" gorm:"type:varchar(36);index;not null"`
	Text     string    `json:"text" bson:"text" validate:"required"`
	Rating   int       `json:"rating" bson:"rating" validate:"required,min=1,max=5"`
	Created  time.Time `json:"created" bson:"created"`

	Author *User `json:"-" bson:"-" gorm:"foreignKey:AuthorID"`
}

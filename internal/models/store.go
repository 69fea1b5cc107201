package models

import "time"

// PointType is the only GeoJSON geometry a store location uses.
const PointType = "Point"

// Location is a GeoJSON point plus the human readable address.
// Coordinates are stored as [lng, lat] so the document shape matches a 2dsphere index.
type Location struct {
	Type        string    `json:"type" bson:"type" gorm:"type:varchar(16);default:Point"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates" gorm:"serializer:json"`
	Address     string    `json:"address" bson:"address" validate:"required"`

	// Lng and Lat mirror Coordinates for relational bounding-box queries.
	Lng float64 `json:"-" bson:"-" gorm:"index"`
	Lat float64 `json:"-" bson:"-" gorm:"index"`
}

// Point returns the longitude and latitude, or false if the coordinates are incomplete.
func (l Location) Point() (lng, lat float64, ok bool) {
	if len(l.Coordinates) != 2 {
		return 0, 0, false
	}
	return l.Coordinates[0], l.Coordinates[1], true
}

// Store represents a store listing.
type Store struct {
	ID          string    `json:"id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" bson:"name" gorm:"type:varchar(255);not null" validate:"required"`
	Slug        string    `json:"slug" bson:"slug" gorm:"type:varchar(255);index"`
	Description string    `json:"description" bson:"description"`
	Tags        []string  `json:"tags" bson:"tags" gorm:"-"`
	Created     time.Time `json:"created" bson:"created"`
	Location    Location  `json:"location" bson:"location" gorm:"embedded;embeddedPrefix:location_"`
	Photo       string    `json:"photo,omitempty" bson:"photo,omitempty"`
	AuthorID    string    `json:"author" bson:"author" gorm:"type:varchar(36);index;not null" validate:"required"`

	Author  *User    `json:"-" bson:"-" gorm:"foreignKey:AuthorID"`
	Reviews []Review `json:"reviews,omitempty" bson:"-" gorm:"foreignKey:StoreID"`

	TagRows []StoreTag `json:"-" bson:"-" gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
}

// StoreTag is the relational row behind Store.Tags.
type StoreTag struct {
	StoreID string `gorm:"primaryKey;type:varchar(36)"`
	Tag     string `gorm:"primaryKey;type:varchar(100);index"`
}

// HasTag reports whether the store carries tag.
func (s *Store) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// TagCount is one bucket of the tag histogram.
type TagCount struct {
	Tag   string `json:"tag" bson:"_id"`
	Count int    `json:"count" bson:"count"`
}

// TopStore is a store ranked by its average review rating.
type TopStore struct {
	ID            string  `json:"id" bson:"_id"`
	Name          string  `json:"name" bson:"name"`
	Slug          string  `json:"slug" bson:"slug"`
	Photo         string  `json:"photo,omitempty" bson:"photo"`
	ReviewCount   int     `json:"reviewCount" bson:"reviewCount"`
	AverageRating float64 `json:"averageRating" bson:"averageRating"`
}

// SearchResult pairs a store with its text relevance score.
type SearchResult struct {
	Store `bson:",inline"`
	Score float64 `json:"score" bson:"score"`
}

// MapStore is the reduced projection returned by proximity queries.
type MapStore struct {
	Slug        string   `json:"slug" bson:"slug"`
	Name        string   `json:"name" bson:"name"`
	Description string   `json:"description" bson:"description"`
	Location    Location `json:"location" bson:"location"`
	Photo       string   `json:"photo,omitempty" bson:"photo,omitempty"`
}

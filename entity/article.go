package entity

import (
	"time"

	"gorm.io/datatypes"
)

type Article struct {
	ID               string         `json:"id" gorm:"type:varchar(36);primaryKey"`
	Title            string         `json:"title" gorm:"type:varchar(512);not null"`
	AuthorID         string         `json:"author_id" gorm:"type:varchar(64);not null;index"`
	ImageURL         string         `json:"image_url,omitempty" gorm:"type:varchar(1024)"`
	TravelCountry    string         `json:"travel_country" gorm:"type:varchar(128)"`
	TravelCity       string         `json:"travel_city" gorm:"type:varchar(128)"`
	ShareLink        string         `json:"share_link,omitempty" gorm:"type:varchar(1024)"`
	Price            *float64       `json:"price,omitempty"`
	Likes            int64          `json:"likes" gorm:"not null;default:0"`
	ModerationScores datatypes.JSON `json:"moderation_scores,omitempty"`
	CreatedAt        time.Time      `json:"created_at" gorm:"not null;autoCreateTime"`
	ModifiedAt       time.Time      `json:"modified_at" gorm:"autoUpdateTime"`

	Author *User `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}

// LikeState is the outcome of a like toggle.
type LikeState struct {
	Liked      bool  `json:"liked"`
	TotalLikes int64 `json:"total_likes"`
}

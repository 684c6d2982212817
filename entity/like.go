package entity

import "time"

// Like is a (user, article) membership record. The composite primary key
// allows at most one like per pair.
type Like struct {
	UserID    string    `json:"user_id" gorm:"type:varchar(64);primaryKey"`
	ArticleID string    `json:"article_id" gorm:"type:varchar(36);primaryKey;index"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;autoCreateTime"`

	User    *User    `json:"-" gorm:"foreignKey:UserID"`
	Article *Article `json:"-" gorm:"foreignKey:ArticleID"`
}

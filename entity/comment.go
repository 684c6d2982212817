package entity

import "time"

type Comment struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	ArticleID  string    `json:"article_id" gorm:"type:varchar(36);not null;index"`
	AuthorID   string    `json:"author_id" gorm:"type:varchar(64);not null;index"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
	ModifiedAt time.Time `json:"modified_at" gorm:"autoUpdateTime"`

	Article *Article `json:"-" gorm:"foreignKey:ArticleID"`
	Author  *User    `json:"-" gorm:"foreignKey:AuthorID"`
}

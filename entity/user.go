package entity

import "time"

type User struct {
	ID           string    `json:"id" gorm:"type:varchar(64);primaryKey"`
	Name         string    `json:"name" gorm:"type:varchar(255);not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	Email        string    `json:"email" gorm:"type:varchar(320);uniqueIndex;not null"`
	Country      *string   `json:"country,omitempty" gorm:"type:varchar(128)"`
	Language     *string   `json:"language,omitempty" gorm:"type:varchar(32)"`
	ProfileImage string    `json:"profile_image,omitempty" gorm:"type:varchar(1024)"`
	CreatedAt    time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

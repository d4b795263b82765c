package db

import "gorm.io/gorm"

// Article 定义了文章模型
type Article struct {
	gorm.Model
	Title     string `gorm:"not null"`
	Slug      string `gorm:"uniqueIndex;not null"`
	Content   string `gorm:"not null"`
	Summary   string
	ImageURL  string
	Published bool `gorm:"default:false;not null"`
	UserID    uint `gorm:"not null;index"`
	User      User
}

package models

import (
	"time"

	"gorm.io/gorm"
)

type LoginToken struct {
	gorm.Model
	JTI            string `gorm:"unique;not null"`
	UserID         uint
	ExpirationTime time.Time
}

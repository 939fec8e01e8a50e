package models

import "gorm.io/gorm"

type PaymentMethod struct {
	gorm.Model
	Name        string `gorm:"unique;not null"`
	Description string
	IsActive    bool `gorm:"not null"`
}

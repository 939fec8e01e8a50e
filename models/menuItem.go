package models

import "gorm.io/gorm"

type MenuItem struct {
	gorm.Model
	RestaurantID uint `gorm:"foreignKey:RestaurantID"`
	Restaurant   Restaurant
	Name         string  `gorm:"not null"`
	Description  string
	Price        float64 `gorm:"not null"`
}

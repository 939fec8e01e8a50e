package models

import "gorm.io/gorm"

type Restaurant struct {
	gorm.Model
	Name        string `gorm:"not null"`
	Description string
	Country     string `gorm:"not null"`
	Address     string
	Phone       string
	MenuItems   []MenuItem
	Orders      []Order
}

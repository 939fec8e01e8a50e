package models

import "gorm.io/gorm"

type OrderItem struct {
	gorm.Model
	OrderID    uint `gorm:"foreignKey:OrderID"`
	Order      Order
	MenuItemID uint `gorm:"foreignKey:MenuItemID"`
	MenuItem   MenuItem
	Quantity   uint    `gorm:"not null"`
	UnitPrice  float64 `gorm:"not null"`
	Subtotal   float64 `gorm:"not null"`
	Notes      string
}

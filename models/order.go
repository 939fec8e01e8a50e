package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	OrderStatusDraft     = "DRAFT"
	OrderStatusPlaced    = "PLACED"
	OrderStatusCancelled = "CANCELLED"
	OrderStatusCompleted = "COMPLETED"
)

type Order struct {
	gorm.Model
	UserID          uint `gorm:"foreignKey:UserID"`
	User            User
	RestaurantID    uint `gorm:"foreignKey:RestaurantID"`
	Restaurant      Restaurant
	OrderItems      []OrderItem `gorm:"constraint:OnDelete:CASCADE"`
	Status          string      `gorm:"not null;default:DRAFT"`
	TotalAmount     float64     `gorm:"not null;default:0"`
	Notes           string
	PlacedAt        *time.Time
	CancelledAt     *time.Time
	PaymentMethodID *uint
	PaymentMethod   *PaymentMethod
}

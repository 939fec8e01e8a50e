package models

import "gorm.io/gorm"

const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleMember  = "MEMBER"
)

const (
	CountryIndia   = "India"
	CountryAmerica = "America"
)

type User struct {
	gorm.Model
	Username string `gorm:"unique;not null"`
	Password string `gorm:"not null"`
	FullName string `gorm:"not null"`
	Role     string `gorm:"not null"`
	Country  string `gorm:"not null"`
	Orders   []Order
}

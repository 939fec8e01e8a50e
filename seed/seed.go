package seed

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"foodie/models"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserSeed struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	Country  string `json:"country"`
}

type MenuItemSeed struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

type RestaurantSeed struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Country     string         `json:"country"`
	Address     string         `json:"address"`
	Phone       string         `json:"phone"`
	MenuItems   []MenuItemSeed `json:"menuItems"`
}

type PaymentMethodSeed struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
}

type Data struct {
	Users          []UserSeed          `json:"users"`
	Restaurants    []RestaurantSeed    `json:"restaurants"`
	PaymentMethods []PaymentMethodSeed `json:"paymentMethods"`
}

// LoadFile parses a seed document from disk.
func LoadFile(path string) (Data, error) {
	var data Data

	raw, err := os.ReadFile(path)
	if err != nil {
		return data, err
	}

	if err := json.Unmarshal(raw, &data); err != nil {
		return data, err
	}

	return data, nil
}

// Apply inserts the seed records. Records that already exist are skipped, so
// re-running the seed is harmless. Failures are collected per record rather
// than aborting the whole run.
func Apply(db *gorm.DB, data Data) error {
	var result *multierror.Error

	for _, u := range data.Users {
		if err := applyUser(db, u); err != nil {
			result = multierror.Append(result, fmt.Errorf("user %q: %w", u.Username, err))
		}
	}

	for _, r := range data.Restaurants {
		if err := applyRestaurant(db, r); err != nil {
			result = multierror.Append(result, fmt.Errorf("restaurant %q: %w", r.Name, err))
		}
	}

	for _, pm := range data.PaymentMethods {
		if err := applyPaymentMethod(db, pm); err != nil {
			result = multierror.Append(result, fmt.Errorf("payment method %q: %w", pm.Name, err))
		}
	}

	return result.ErrorOrNil()
}

func applyUser(db *gorm.DB, u UserSeed) error {
	var existing models.User
	err := db.Where("username = ?", u.Username).First(&existing).Error
	if err == nil {
		logrus.WithField("username", u.Username).Debug("seed user already exists, skipping")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Create(&models.User{
		Username: u.Username,
		Password: string(hashed),
		FullName: u.FullName,
		Role:     u.Role,
		Country:  u.Country,
	}).Error
}

func applyRestaurant(db *gorm.DB, r RestaurantSeed) error {
	var existing models.Restaurant
	err := db.Where("name = ? AND country = ?", r.Name, r.Country).First(&existing).Error
	if err == nil {
		logrus.WithField("restaurant", r.Name).Debug("seed restaurant already exists, skipping")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	restaurant := models.Restaurant{
		Name:        r.Name,
		Description: r.Description,
		Country:     r.Country,
		Address:     r.Address,
		Phone:       r.Phone,
	}
	for _, mi := range r.MenuItems {
		restaurant.MenuItems = append(restaurant.MenuItems, models.MenuItem{
			Name:        mi.Name,
			Description: mi.Description,
			Price:       mi.Price,
		})
	}

	return db.Create(&restaurant).Error
}

func applyPaymentMethod(db *gorm.DB, pm PaymentMethodSeed) error {
	var existing models.PaymentMethod
	err := db.Where("name = ?", pm.Name).First(&existing).Error
	if err == nil {
		logrus.WithField("paymentMethod", pm.Name).Debug("seed payment method already exists, skipping")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return db.Create(&models.PaymentMethod{
		Name:        pm.Name,
		Description: pm.Description,
		IsActive:    pm.IsActive,
	}).Error
}

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"foodie/models"
	"foodie/utils"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	dashboardStatsKey = "admin:dashboard:stats"
	dashboardStatsTTL = time.Minute
)

type dashboardStats struct {
	TotalUsers       int64   `json:"totalUsers"`
	TotalRestaurants int64   `json:"totalRestaurants"`
	TotalOrders      int64   `json:"totalOrders"`
	PlacedOrders     int64   `json:"placedOrders"`
	TotalRevenue     float64 `json:"totalRevenue"`
}

type recentOrderRow struct {
	ID             uint
	FullName       string
	RestaurantName string
	TotalAmount    float64
	Status         string
	CreatedAt      time.Time
}

// getDashboardStats serves the aggregate counters, from Redis when the cached
// copy is still fresh. A missing or failing Redis falls back to the database.
func getDashboardStats(c *gin.Context, db *gorm.DB, rdb *redis.Client) (dashboardStats, error) {
	var stats dashboardStats

	if rdb != nil {
		cached, err := rdb.Get(c, dashboardStatsKey).Result()
		if err == nil {
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return stats, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			logrus.WithError(err).Warn("failed to read dashboard stats from redis")
		}
	}

	if err := db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.Restaurant{}).Count(&stats.TotalRestaurants).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return stats, err
	}
	err := db.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusPlaced).
		Count(&stats.PlacedOrders).
		Error
	if err != nil {
		return stats, err
	}
	err = db.Model(&models.Order{}).
		Where("status IN ?", []string{models.OrderStatusPlaced, models.OrderStatusCompleted}).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&stats.TotalRevenue).
		Error
	if err != nil {
		return stats, err
	}

	if rdb != nil {
		payload, err := json.Marshal(stats)
		if err == nil {
			if err := rdb.Set(c, dashboardStatsKey, payload, dashboardStatsTTL).Err(); err != nil {
				logrus.WithError(err).Warn("failed to cache dashboard stats")
			}
		}
	}

	return stats, nil
}

// invalidateDashboardCache drops the cached stats after any mutation that
// changes the counters.
func invalidateDashboardCache(c *gin.Context, rdb *redis.Client) {
	if rdb == nil {
		return
	}
	if err := rdb.Del(c, dashboardStatsKey).Err(); err != nil {
		logrus.WithError(err).Warn("failed to invalidate dashboard stats cache")
	}
}

func AdminDashboardHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	stats, err := getDashboardStats(c, db, rdb)
	if err != nil {
		logrus.WithError(err).Error("failed to compute dashboard stats")
		utils.Flash(c, "danger", "Something went wrong. Please try again.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	var recentOrders []recentOrderRow
	err = db.Model(&models.Order{}).
		Select("orders.id, users.full_name, restaurants.name AS restaurant_name, orders.total_amount, orders.status, orders.created_at").
		Joins("JOIN users ON users.id = orders.user_id").
		Joins("JOIN restaurants ON restaurants.id = orders.restaurant_id").
		Order("orders.created_at DESC").
		Limit(10).
		Scan(&recentOrders).
		Error
	if err != nil {
		logrus.WithError(err).Error("failed to list recent orders")
		utils.Flash(c, "danger", "Something went wrong. Please try again.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	render(c, http.StatusOK, "admin/dashboard.html", gin.H{
		"Stats":        stats,
		"RecentOrders": recentOrders,
	})
}

func GetPaymentMethodListHandler(c *gin.Context, db *gorm.DB) {
	var methods []models.PaymentMethod
	if err := db.Order("name").Find(&methods).Error; err != nil {
		logrus.WithError(err).Error("failed to list payment methods")
		utils.Flash(c, "danger", "Something went wrong. Please try again.")
		c.Redirect(http.StatusFound, "/admin/")
		return
	}

	render(c, http.StatusOK, "admin/payment_methods.html", gin.H{
		"PaymentMethods": methods,
	})
}

// isPaymentMethodNameTaken reports whether another payment method already
// uses name. excludeID skips the method being edited.
func isPaymentMethodNameTaken(db *gorm.DB, name string, excludeID uint) (bool, error) {
	var method models.PaymentMethod
	query := db.Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.First(&method).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func AddPaymentMethodHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	if c.Request.Method != http.MethodPost {
		render(c, http.StatusOK, "admin/add_payment_method.html", nil)
		return
	}

	name := c.PostForm("name")
	description := c.PostForm("description")
	isActive := c.PostForm("is_active") != ""

	if name == "" {
		utils.Flash(c, "danger", "Payment method name is required.")
		render(c, http.StatusOK, "admin/add_payment_method.html", nil)
		return
	}

	taken, err := isPaymentMethodNameTaken(db, name, 0)
	if err != nil {
		logrus.WithError(err).Error("failed to check payment method name")
		utils.Flash(c, "danger", "Something went wrong. Please try again.")
		render(c, http.StatusOK, "admin/add_payment_method.html", nil)
		return
	}
	if taken {
		utils.Flash(c, "danger", fmt.Sprintf("Payment method %q already exists.", name))
		render(c, http.StatusOK, "admin/add_payment_method.html", nil)
		return
	}

	method := models.PaymentMethod{
		Name:        name,
		Description: description,
		IsActive:    isActive,
	}
	if err := db.Create(&method).Error; err != nil {
		// The unique constraint can still fire under a concurrent insert.
		utils.Flash(c, "danger", fmt.Sprintf("Payment method %q already exists.", name))
		render(c, http.StatusOK, "admin/add_payment_method.html", nil)
		return
	}

	invalidateDashboardCache(c, rdb)

	utils.Flash(c, "success", fmt.Sprintf("Payment method %q added successfully.", name))
	c.Redirect(http.StatusFound, "/admin/payment-methods")
}

func EditPaymentMethodHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	methodID := c.Param("methodID")

	var method models.PaymentMethod
	if err := db.First(&method, methodID).Error; err != nil {
		utils.Flash(c, "danger", "Payment method not found.")
		c.Redirect(http.StatusFound, "/admin/payment-methods")
		return
	}

	if c.Request.Method != http.MethodPost {
		render(c, http.StatusOK, "admin/edit_payment_method.html", gin.H{
			"Method": method,
		})
		return
	}

	name := c.PostForm("name")
	description := c.PostForm("description")
	isActive := c.PostForm("is_active") != ""

	if name == "" {
		utils.Flash(c, "danger", "Payment method name is required.")
		render(c, http.StatusOK, "admin/edit_payment_method.html", gin.H{
			"Method": method,
		})
		return
	}

	taken, err := isPaymentMethodNameTaken(db, name, method.ID)
	if err != nil {
		logrus.WithError(err).Error("failed to check payment method name")
		utils.Flash(c, "danger", "Something went wrong. Please try again.")
		render(c, http.StatusOK, "admin/edit_payment_method.html", gin.H{
			"Method": method,
		})
		return
	}
	if taken {
		utils.Flash(c, "danger", fmt.Sprintf("Payment method %q already exists.", name))
		render(c, http.StatusOK, "admin/edit_payment_method.html", gin.H{
			"Method": method,
		})
		return
	}

	err = db.Model(&method).Updates(map[string]interface{}{
		"name":        name,
		"description": description,
		"is_active":   isActive,
	}).Error
	if err != nil {
		logrus.WithError(err).Error("failed to update payment method")
		utils.Flash(c, "danger", "Something went wrong. Please try again.")
		c.Redirect(http.StatusFound, "/admin/payment-methods")
		return
	}

	invalidateDashboardCache(c, rdb)

	utils.Flash(c, "success", fmt.Sprintf("Payment method %q updated successfully.", name))
	c.Redirect(http.StatusFound, "/admin/payment-methods")
}

// TogglePaymentMethodHandler flips the active flag. Two toggles restore the
// original state.
func TogglePaymentMethodHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	methodID := c.Param("methodID")

	var method models.PaymentMethod
	if err := db.First(&method, methodID).Error; err != nil {
		utils.Flash(c, "danger", "Payment method not found.")
		c.Redirect(http.StatusFound, "/admin/payment-methods")
		return
	}

	newActive := !method.IsActive
	if err := db.Model(&method).Update("is_active", newActive).Error; err != nil {
		logrus.WithError(err).Error("failed to toggle payment method")
		utils.Flash(c, "danger", "Something went wrong. Please try again.")
		c.Redirect(http.StatusFound, "/admin/payment-methods")
		return
	}

	invalidateDashboardCache(c, rdb)

	statusText := "deactivated"
	if newActive {
		statusText = "activated"
	}
	utils.Flash(c, "success", fmt.Sprintf("Payment method %q %s.", method.Name, statusText))
	c.Redirect(http.StatusFound, "/admin/payment-methods")
}

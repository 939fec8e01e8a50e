package handlers

import (
	"net/http"

	"foodie/middleware"
	"foodie/models"
	"foodie/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type restaurantListRow struct {
	ID          uint
	Name        string
	Description string
	Country     string
	Address     string
	Phone       string
	MenuCount   int64
}

// GetRestaurantListHandler lists restaurants visible to the user, each with a
// live menu item count. Admins see every country sorted by (country, name);
// everyone else sees their own country sorted by name.
func GetRestaurantListHandler(c *gin.Context, db *gorm.DB) {
	user, _ := middleware.GetCurrentUser(c)

	query := db.Model(&models.Restaurant{}).
		Select("restaurants.id, restaurants.name, restaurants.description, restaurants.country, restaurants.address, restaurants.phone, COUNT(menu_items.id) AS menu_count").
		Joins("LEFT JOIN menu_items ON menu_items.restaurant_id = restaurants.id AND menu_items.deleted_at IS NULL").
		Group("restaurants.id")

	if user.Role == models.RoleAdmin {
		query = query.Order("restaurants.country, restaurants.name")
	} else {
		query = query.Where("restaurants.country = ?", user.Country).Order("restaurants.name")
	}

	var restaurants []restaurantListRow
	if err := query.Scan(&restaurants).Error; err != nil {
		logrus.WithError(err).Error("failed to list restaurants")
		utils.Flash(c, "danger", "Something went wrong. Please try again.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	render(c, http.StatusOK, "restaurant/list.html", gin.H{
		"Restaurants": restaurants,
	})
}

// GetRestaurantDataHandler shows one restaurant and its menu. The country
// predicate is re-applied after lookup; denial redirects rather than 404s.
func GetRestaurantDataHandler(c *gin.Context, db *gorm.DB) {
	user, _ := middleware.GetCurrentUser(c)
	restaurantID := c.Param("restaurantID")

	var restaurant models.Restaurant
	if err := db.First(&restaurant, restaurantID).Error; err != nil {
		utils.Flash(c, "danger", "Restaurant not found.")
		c.Redirect(http.StatusFound, "/restaurants/")
		return
	}

	if !middleware.CheckCountryAccess(user, restaurant.Country) {
		utils.Flash(c, "danger", "You do not have permission to view this restaurant.")
		c.Redirect(http.StatusFound, "/restaurants/")
		return
	}

	var menuItems []models.MenuItem
	if err := db.Where("restaurant_id = ?", restaurant.ID).Order("name").Find(&menuItems).Error; err != nil {
		logrus.WithError(err).Error("failed to load menu items")
		utils.Flash(c, "danger", "Something went wrong. Please try again.")
		c.Redirect(http.StatusFound, "/restaurants/")
		return
	}

	render(c, http.StatusOK, "restaurant/view.html", gin.H{
		"Restaurant": restaurant,
		"Items":      menuItems,
	})
}

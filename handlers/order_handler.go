package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"foodie/middleware"
	"foodie/models"
	"foodie/utils"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type orderListRow struct {
	ID                uint
	Username          string
	FullName          string
	RestaurantName    string
	Country           string
	TotalAmount       float64
	Status            string
	PaymentMethodName *string
	CreatedAt         time.Time
}

// getExistingDraftOrder returns the open draft for (user, restaurant), or nil.
func getExistingDraftOrder(db *gorm.DB, userID, restaurantID uint) (*models.Order, error) {
	var order models.Order
	err := db.
		Where("user_id = ? AND restaurant_id = ? AND status = ?", userID, restaurantID, models.OrderStatusDraft).
		First(&order).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// updateOrderTotal recomputes the stored total from the line items by SQL
// aggregation. The cached total is never accumulated in application memory.
func updateOrderTotal(tx *gorm.DB, orderID uint) error {
	var total float64
	err := tx.Model(&models.OrderItem{}).
		Where("order_id = ?", orderID).
		Select("COALESCE(SUM(subtotal), 0)").
		Scan(&total).
		Error
	if err != nil {
		return err
	}

	return tx.Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("total_amount", total).
		Error
}

func getOrderItemCount(db *gorm.DB, orderID uint) (int64, error) {
	var count int64
	err := db.Model(&models.OrderItem{}).Where("order_id = ?", orderID).Count(&count).Error
	return count, err
}

// canUserEditOrder reports whether user may edit order: drafts only, by the
// owner or by an admin/manager.
func canUserEditOrder(order *models.Order, user *models.User) bool {
	if order.Status != models.OrderStatusDraft {
		return false
	}
	if order.UserID == user.ID {
		return true
	}
	return user.Role == models.RoleAdmin || user.Role == models.RoleManager
}

// getActivePaymentMethod returns the payment method only if it is active.
func getActivePaymentMethod(db *gorm.DB, paymentMethodID uint) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	err := db.
		Where("id = ? AND is_active = ?", paymentMethodID, true).
		First(&method).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &method, nil
}

func getActivePaymentMethods(db *gorm.DB) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	err := db.Where("is_active = ?", true).Order("name").Find(&methods).Error
	return methods, err
}

// GetOrderListHandler lists orders joined with their user, restaurant and
// payment method. Admins see everything; everyone else only orders placed at
// restaurants in their own country. Newest first.
func GetOrderListHandler(c *gin.Context, db *gorm.DB) {
	user, _ := middleware.GetCurrentUser(c)

	query := db.Model(&models.Order{}).
		Select("orders.id, users.username, users.full_name, restaurants.name AS restaurant_name, restaurants.country, orders.total_amount, orders.status, payment_methods.name AS payment_method_name, orders.created_at").
		Joins("JOIN users ON users.id = orders.user_id").
		Joins("JOIN restaurants ON restaurants.id = orders.restaurant_id").
		Joins("LEFT JOIN payment_methods ON payment_methods.id = orders.payment_method_id")

	if user.Role != models.RoleAdmin {
		query = query.Where("restaurants.country = ?", user.Country)
	}

	var orders []orderListRow
	if err := query.Order("orders.created_at DESC").Scan(&orders).Error; err != nil {
		logrus.WithError(err).Error("failed to list orders")
		utils.Flash(c, "danger", "Something went wrong. Please try again.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	render(c, http.StatusOK, "order/list.html", gin.H{
		"Orders": orders,
	})
}

// GetOrderDataHandler shows one order with its items. The country predicate is
// checked against the restaurant's country after lookup.
func GetOrderDataHandler(c *gin.Context, db *gorm.DB) {
	user, _ := middleware.GetCurrentUser(c)
	orderID := c.Param("orderID")

	var order models.Order
	err := db.
		Preload("User").
		Preload("Restaurant").
		Preload("PaymentMethod").
		First(&order, orderID).
		Error
	if err != nil {
		utils.Flash(c, "warning", "Order not found.")
		c.Redirect(http.StatusFound, "/orders/")
		return
	}

	if !middleware.CheckCountryAccess(user, order.Restaurant.Country) {
		utils.Flash(c, "danger", "You do not have permission to view this order.")
		c.Redirect(http.StatusFound, "/orders/")
		return
	}

	var items []models.OrderItem
	if err := db.Preload("MenuItem").Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
		logrus.WithError(err).Error("failed to load order items")
		utils.Flash(c, "danger", "Something went wrong. Please try again.")
		c.Redirect(http.StatusFound, "/orders/")
		return
	}

	// Admins may reassign the payment method on placed orders.
	var paymentMethods []models.PaymentMethod
	if user.Role == models.RoleAdmin && order.Status == models.OrderStatusPlaced {
		paymentMethods, err = getActivePaymentMethods(db)
		if err != nil {
			logrus.WithError(err).Error("failed to load payment methods")
		}
	}

	render(c, http.StatusOK, "order/view.html", gin.H{
		"Order":          order,
		"Items":          items,
		"PaymentMethods": paymentMethods,
	})
}

// CreateOrderHandler starts a draft order against a restaurant. Create is
// idempotent per (user, restaurant): an existing draft is reused.
func CreateOrderHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	user, _ := middleware.GetCurrentUser(c)
	restaurantID := c.Param("restaurantID")

	var restaurant models.Restaurant
	if err := db.First(&restaurant, restaurantID).Error; err != nil {
		utils.Flash(c, "danger", "Restaurant not found.")
		c.Redirect(http.StatusFound, "/restaurants/")
		return
	}

	if !middleware.CheckCountryAccess(user, restaurant.Country) {
		utils.Flash(c, "danger", "You do not have permission to order from this restaurant.")
		c.Redirect(http.StatusFound, "/restaurants/")
		return
	}

	existingDraft, err := getExistingDraftOrder(db, user.ID, restaurant.ID)
	if err != nil {
		logrus.WithError(err).Error("failed to look up draft order")
		utils.Flash(c, "danger", "Something went wrong. Please try again.")
		c.Redirect(http.StatusFound, "/restaurants/")
		return
	}

	if existingDraft != nil {
		c.Redirect(http.StatusFound, fmt.Sprintf("/orders/%d/edit", existingDraft.ID))
		return
	}

	newOrder := models.Order{
		UserID:       user.ID,
		RestaurantID: restaurant.ID,
		Status:       models.OrderStatusDraft,
		TotalAmount:  0,
	}
	if err := db.Create(&newOrder).Error; err != nil {
		logrus.WithError(err).Error("failed to create order")
		utils.Flash(c, "danger", "Something went wrong. Please try again.")
		c.Redirect(http.StatusFound, "/restaurants/")
		return
	}

	invalidateDashboardCache(c, rdb)

	utils.Flash(c, "success", "Order created! Add items to your cart.")
	c.Redirect(http.StatusFound, fmt.Sprintf("/orders/%d/edit", newOrder.ID))
}

// EditOrderHandler shows the cart page for a draft order, with the current
// menu prices next to the snapshotted line prices.
func EditOrderHandler(c *gin.Context, db *gorm.DB) {
	user, _ := middleware.GetCurrentUser(c)
	orderID := c.Param("orderID")

	var order models.Order
	if err := db.Preload("Restaurant").First(&order, orderID).Error; err != nil {
		utils.Flash(c, "danger", "Order not found.")
		c.Redirect(http.StatusFound, "/orders/")
		return
	}

	if !canUserEditOrder(&order, user) {
		utils.Flash(c, "danger", "You do not have permission to edit this order.")
		c.Redirect(http.StatusFound, "/orders/")
		return
	}

	var items []models.OrderItem
	if err := db.Preload("MenuItem").Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
		logrus.WithError(err).Error("failed to load order items")
		utils.Flash(c, "danger", "Something went wrong. Please try again.")
		c.Redirect(http.StatusFound, "/orders/")
		return
	}

	var menuItems []models.MenuItem
	if err := db.Where("restaurant_id = ?", order.RestaurantID).Order("name").Find(&menuItems).Error; err != nil {
		logrus.WithError(err).Error("failed to load menu items")
		utils.Flash(c, "danger", "Something went wrong. Please try again.")
		c.Redirect(http.StatusFound, "/orders/")
		return
	}

	render(c, http.StatusOK, "order/edit.html", gin.H{
		"Order":     order,
		"Items":     items,
		"MenuItems": menuItems,
	})
}

// AddOrderItemHandler adds a menu item to a draft order the requester owns.
// Adding the same menu item again increments the existing line and recomputes
// its subtotal from the unit price snapshotted when the line was created;
// later menu price changes never leak into existing lines.
func AddOrderItemHandler(c *gin.Context, db *gorm.DB) {
	user, _ := middleware.GetCurrentUser(c)
	orderID := c.Param("orderID")

	menuItemID, err := strconv.Atoi(c.PostForm("menu_item_id"))
	if err != nil {
		utils.Flash(c, "danger", "Menu item not found.")
		c.Redirect(http.StatusFound, "/orders/")
		return
	}

	quantity, err := strconv.Atoi(c.PostForm("quantity"))
	if err != nil || quantity < 1 {
		quantity = 1
	}

	var order models.Order
	err = db.
		Where("id = ? AND user_id = ? AND status = ?", orderID, user.ID, models.OrderStatusDraft).
		First(&order).
		Error
	if err != nil {
		utils.Flash(c, "danger", "Order not found or cannot be modified.")
		c.Redirect(http.StatusFound, "/orders/")
		return
	}

	// The menu item must belong to the order's restaurant.
	var menuItem models.MenuItem
	err = db.
		Where("id = ? AND restaurant_id = ?", menuItemID, order.RestaurantID).
		First(&menuItem).
		Error
	if err != nil {
		utils.Flash(c, "danger", "Menu item not found.")
		c.Redirect(http.StatusFound, fmt.Sprintf("/orders/%d/edit", order.ID))
		return
	}

	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var existingItem models.OrderItem
	err = tx.
		Where("order_id = ? AND menu_item_id = ?", order.ID, menuItem.ID).
		First(&existingItem).
		Error
	switch {
	case err == nil:
		existingItem.Quantity += uint(quantity)
		existingItem.Subtotal = float64(existingItem.Quantity) * existingItem.UnitPrice
		err = tx.Save(&existingItem).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		newItem := models.OrderItem{
			OrderID:    order.ID,
			MenuItemID: menuItem.ID,
			Quantity:   uint(quantity),
			UnitPrice:  menuItem.Price,
			Subtotal:   float64(quantity) * menuItem.Price,
		}
		err = tx.Create(&newItem).Error
	}
	if err != nil {
		tx.Rollback()
		logrus.WithError(err).Error("failed to add order item")
		utils.Flash(c, "danger", "Something went wrong. Please try again.")
		c.Redirect(http.StatusFound, fmt.Sprintf("/orders/%d/edit", order.ID))
		return
	}

	if err := updateOrderTotal(tx, order.ID); err != nil {
		tx.Rollback()
		logrus.WithError(err).Error("failed to update order total")
		utils.Flash(c, "danger", "Something went wrong. Please try again.")
		c.Redirect(http.StatusFound, fmt.Sprintf("/orders/%d/edit", order.ID))
		return
	}

	if err := tx.Commit().Error; err != nil {
		logrus.WithError(err).Error("failed to commit order item change")
		utils.Flash(c, "danger", "Something went wrong. Please try again.")
		c.Redirect(http.StatusFound, fmt.Sprintf("/orders/%d/edit", order.ID))
		return
	}

	utils.Flash(c, "success", fmt.Sprintf("Added %s to cart.", menuItem.Name))
	c.Redirect(http.StatusFound, fmt.Sprintf("/orders/%d/edit", order.ID))
}

// RemoveOrderItemHandler deletes a line from a draft order. Removing an item
// that is not on the order still runs the (no-op) total update; this mirrors
// the lenient behavior of remove on the web form.
func RemoveOrderItemHandler(c *gin.Context, db *gorm.DB) {
	orderID := c.Param("orderID")
	itemID := c.Param("itemID")

	var order models.Order
	err := db.
		Where("id = ? AND status = ?", orderID, models.OrderStatusDraft).
		First(&order).
		Error
	if err != nil {
		utils.Flash(c, "danger", "Order not found or cannot be modified.")
		c.Redirect(http.StatusFound, "/orders/")
		return
	}

	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	err = tx.
		Where("id = ? AND order_id = ?", itemID, order.ID).
		Delete(&models.OrderItem{}).
		Error
	if err != nil {
		tx.Rollback()
		logrus.WithError(err).Error("failed to remove order item")
		utils.Flash(c, "danger", "Something went wrong. Please try again.")
		c.Redirect(http.StatusFound, fmt.Sprintf("/orders/%d/edit", order.ID))
		return
	}

	if err := updateOrderTotal(tx, order.ID); err != nil {
		tx.Rollback()
		logrus.WithError(err).Error("failed to update order total")
		utils.Flash(c, "danger", "Something went wrong. Please try again.")
		c.Redirect(http.StatusFound, fmt.Sprintf("/orders/%d/edit", order.ID))
		return
	}

	if err := tx.Commit().Error; err != nil {
		logrus.WithError(err).Error("failed to commit order item removal")
		utils.Flash(c, "danger", "Something went wrong. Please try again.")
		c.Redirect(http.StatusFound, fmt.Sprintf("/orders/%d/edit", order.ID))
		return
	}

	utils.Flash(c, "success", "Item removed from cart.")
	c.Redirect(http.StatusFound, fmt.Sprintf("/orders/%d/edit", order.ID))
}

// PlaceOrderHandler handles checkout. GET shows the checkout page; POST moves
// the draft to PLACED, stamping the time and the chosen payment method. Only
// drafts with at least one item and an active payment method can be placed.
func PlaceOrderHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	orderID := c.Param("orderID")

	var order models.Order
	if err := db.Preload("Restaurant").First(&order, orderID).Error; err != nil {
		utils.Flash(c, "danger", "Order not found.")
		c.Redirect(http.StatusFound, "/orders/")
		return
	}

	if order.Status != models.OrderStatusDraft {
		utils.Flash(c, "info", "This order has already been placed.")
		c.Redirect(http.StatusFound, fmt.Sprintf("/orders/%d", order.ID))
		return
	}

	itemCount, err := getOrderItemCount(db, order.ID)
	if err != nil {
		logrus.WithError(err).Error("failed to count order items")
		utils.Flash(c, "danger", "Something went wrong. Please try again.")
		c.Redirect(http.StatusFound, "/orders/")
		return
	}

	if itemCount == 0 {
		utils.Flash(c, "danger", "Cannot place an empty order. Please add items first.")
		c.Redirect(http.StatusFound, fmt.Sprintf("/orders/%d/edit", order.ID))
		return
	}

	if c.Request.Method == http.MethodPost {
		paymentMethodID, err := strconv.Atoi(c.PostForm("payment_method_id"))
		if err != nil || paymentMethodID <= 0 {
			utils.Flash(c, "danger", "Please select a payment method.")
			c.Redirect(http.StatusFound, fmt.Sprintf("/orders/%d/place", order.ID))
			return
		}

		paymentMethod, err := getActivePaymentMethod(db, uint(paymentMethodID))
		if err != nil {
			logrus.WithError(err).Error("failed to look up payment method")
			utils.Flash(c, "danger", "Something went wrong. Please try again.")
			c.Redirect(http.StatusFound, fmt.Sprintf("/orders/%d/place", order.ID))
			return
		}
		if paymentMethod == nil {
			utils.Flash(c, "danger", "Invalid payment method.")
			c.Redirect(http.StatusFound, fmt.Sprintf("/orders/%d/place", order.ID))
			return
		}

		now := time.Now()
		err = db.Model(&order).Updates(map[string]interface{}{
			"status":            models.OrderStatusPlaced,
			"payment_method_id": paymentMethod.ID,
			"placed_at":         &now,
		}).Error
		if err != nil {
			logrus.WithError(err).Error("failed to place order")
			utils.Flash(c, "danger", "Something went wrong. Please try again.")
			c.Redirect(http.StatusFound, fmt.Sprintf("/orders/%d/place", order.ID))
			return
		}

		invalidateDashboardCache(c, rdb)

		utils.Flash(c, "success", "Order placed successfully!")
		c.Redirect(http.StatusFound, fmt.Sprintf("/orders/%d", order.ID))
		return
	}

	paymentMethods, err := getActivePaymentMethods(db)
	if err != nil {
		logrus.WithError(err).Error("failed to load payment methods")
		utils.Flash(c, "danger", "Something went wrong. Please try again.")
		c.Redirect(http.StatusFound, "/orders/")
		return
	}

	var items []models.OrderItem
	if err := db.Preload("MenuItem").Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
		logrus.WithError(err).Error("failed to load order items")
		utils.Flash(c, "danger", "Something went wrong. Please try again.")
		c.Redirect(http.StatusFound, "/orders/")
		return
	}

	render(c, http.StatusOK, "order/checkout.html", gin.H{
		"Order":          order,
		"Items":          items,
		"PaymentMethods": paymentMethods,
	})
}

// CancelOrderHandler cancels an order. The country predicate is applied
// against the order owner's country. Completed orders cannot be cancelled;
// cancelling an already-cancelled order is a no-op with a notice.
func CancelOrderHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	user, _ := middleware.GetCurrentUser(c)
	orderID := c.Param("orderID")

	var order models.Order
	if err := db.Preload("User").First(&order, orderID).Error; err != nil {
		utils.Flash(c, "danger", "Order not found.")
		c.Redirect(http.StatusFound, "/orders/")
		return
	}

	if !middleware.CheckCountryAccess(user, order.User.Country) {
		utils.Flash(c, "danger", "You do not have permission to cancel this order.")
		c.Redirect(http.StatusFound, "/orders/")
		return
	}

	if order.Status == models.OrderStatusCancelled {
		utils.Flash(c, "info", "This order is already cancelled.")
		c.Redirect(http.StatusFound, fmt.Sprintf("/orders/%d", order.ID))
		return
	}

	if order.Status == models.OrderStatusCompleted {
		utils.Flash(c, "danger", "Cannot cancel a completed order.")
		c.Redirect(http.StatusFound, fmt.Sprintf("/orders/%d", order.ID))
		return
	}

	now := time.Now()
	err := db.Model(&order).Updates(map[string]interface{}{
		"status":       models.OrderStatusCancelled,
		"cancelled_at": &now,
	}).Error
	if err != nil {
		logrus.WithError(err).Error("failed to cancel order")
		utils.Flash(c, "danger", "Something went wrong. Please try again.")
		c.Redirect(http.StatusFound, fmt.Sprintf("/orders/%d", order.ID))
		return
	}

	invalidateDashboardCache(c, rdb)

	utils.Flash(c, "success", "Order cancelled successfully.")
	c.Redirect(http.StatusFound, fmt.Sprintf("/orders/%d", order.ID))
}

// UpdateOrderPaymentHandler reassigns an order's payment method. Admin only;
// the order's lifecycle state is deliberately not re-checked here.
func UpdateOrderPaymentHandler(c *gin.Context, db *gorm.DB) {
	orderID := c.Param("orderID")

	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		utils.Flash(c, "danger", "Order not found.")
		c.Redirect(http.StatusFound, "/orders/")
		return
	}

	paymentMethodID, err := strconv.Atoi(c.PostForm("payment_method_id"))
	if err != nil || paymentMethodID <= 0 {
		utils.Flash(c, "danger", "Invalid payment method.")
		c.Redirect(http.StatusFound, fmt.Sprintf("/orders/%d", order.ID))
		return
	}

	paymentMethod, err := getActivePaymentMethod(db, uint(paymentMethodID))
	if err != nil {
		logrus.WithError(err).Error("failed to look up payment method")
		utils.Flash(c, "danger", "Something went wrong. Please try again.")
		c.Redirect(http.StatusFound, fmt.Sprintf("/orders/%d", order.ID))
		return
	}
	if paymentMethod == nil {
		utils.Flash(c, "danger", "Invalid payment method.")
		c.Redirect(http.StatusFound, fmt.Sprintf("/orders/%d", order.ID))
		return
	}

	if err := db.Model(&order).Update("payment_method_id", paymentMethod.ID).Error; err != nil {
		logrus.WithError(err).Error("failed to update payment method")
		utils.Flash(c, "danger", "Something went wrong. Please try again.")
		c.Redirect(http.StatusFound, fmt.Sprintf("/orders/%d", order.ID))
		return
	}

	utils.Flash(c, "success", "Payment method updated successfully.")
	c.Redirect(http.StatusFound, fmt.Sprintf("/orders/%d", order.ID))
}

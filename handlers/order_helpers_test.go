package handlers

import (
	"fmt"
	"sync/atomic"
	"testing"

	"foodie/config"
	"foodie/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var helperDBCounter int64

func setupHelperDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:order_helpers_test_%d?mode=memory&cache=shared", atomic.AddInt64(&helperDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.MigrateModels(db))
	return db
}

func TestUpdateOrderTotalSumsSubtotals(t *testing.T) {
	db := setupHelperDB(t)

	order := models.Order{UserID: 1, RestaurantID: 1, Status: models.OrderStatusDraft}
	require.NoError(t, db.Create(&order).Error)

	items := []models.OrderItem{
		{OrderID: order.ID, MenuItemID: 1, Quantity: 2, UnitPrice: 9.5, Subtotal: 19.0},
		{OrderID: order.ID, MenuItemID: 2, Quantity: 1, UnitPrice: 2.5, Subtotal: 2.5},
	}
	require.NoError(t, db.Create(&items).Error)

	require.NoError(t, updateOrderTotal(db, order.ID))

	require.NoError(t, db.First(&order, order.ID).Error)
	assert.InDelta(t, 21.5, order.TotalAmount, 0.001)
}

func TestUpdateOrderTotalZeroesEmptyOrder(t *testing.T) {
	db := setupHelperDB(t)

	order := models.Order{UserID: 1, RestaurantID: 1, Status: models.OrderStatusDraft, TotalAmount: 42}
	require.NoError(t, db.Create(&order).Error)

	require.NoError(t, updateOrderTotal(db, order.ID))

	require.NoError(t, db.First(&order, order.ID).Error)
	assert.Zero(t, order.TotalAmount)
}

func TestCanUserEditOrder(t *testing.T) {
	owner := &models.User{Role: models.RoleMember}
	owner.ID = 1
	stranger := &models.User{Role: models.RoleMember}
	stranger.ID = 2
	manager := &models.User{Role: models.RoleManager}
	manager.ID = 3
	admin := &models.User{Role: models.RoleAdmin}
	admin.ID = 4

	draft := &models.Order{UserID: 1, Status: models.OrderStatusDraft}
	placed := &models.Order{UserID: 1, Status: models.OrderStatusPlaced}

	assert.True(t, canUserEditOrder(draft, owner))
	assert.False(t, canUserEditOrder(draft, stranger))
	assert.True(t, canUserEditOrder(draft, manager))
	assert.True(t, canUserEditOrder(draft, admin))

	// Nothing but drafts can be edited, the owner included.
	assert.False(t, canUserEditOrder(placed, owner))
	assert.False(t, canUserEditOrder(placed, admin))
}

func TestGetExistingDraftOrder(t *testing.T) {
	db := setupHelperDB(t)

	draft := models.Order{UserID: 1, RestaurantID: 1, Status: models.OrderStatusDraft}
	require.NoError(t, db.Create(&draft).Error)
	require.NoError(t, db.Create(&models.Order{UserID: 1, RestaurantID: 2, Status: models.OrderStatusDraft}).Error)
	require.NoError(t, db.Create(&models.Order{UserID: 1, RestaurantID: 3, Status: models.OrderStatusPlaced}).Error)

	found, err := getExistingDraftOrder(db, 1, 1)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, draft.ID, found.ID)

	// Placed orders never count as open drafts.
	found, err = getExistingDraftOrder(db, 1, 3)
	require.NoError(t, err)
	assert.Nil(t, found)

	found, err = getExistingDraftOrder(db, 2, 1)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestGetActivePaymentMethod(t *testing.T) {
	db := setupHelperDB(t)

	active := models.PaymentMethod{Name: "Cash", IsActive: true}
	require.NoError(t, db.Create(&active).Error)
	inactive := models.PaymentMethod{Name: "Gift Voucher", IsActive: false}
	require.NoError(t, db.Create(&inactive).Error)

	method, err := getActivePaymentMethod(db, active.ID)
	require.NoError(t, err)
	require.NotNil(t, method)
	assert.Equal(t, "Cash", method.Name)

	method, err = getActivePaymentMethod(db, inactive.ID)
	require.NoError(t, err)
	assert.Nil(t, method)

	method, err = getActivePaymentMethod(db, 9999)
	require.NoError(t, err)
	assert.Nil(t, method)
}

func TestIsPaymentMethodNameTaken(t *testing.T) {
	db := setupHelperDB(t)

	cash := models.PaymentMethod{Name: "Cash", IsActive: true}
	require.NoError(t, db.Create(&cash).Error)

	taken, err := isPaymentMethodNameTaken(db, "Cash", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = isPaymentMethodNameTaken(db, "Cash", cash.ID)
	require.NoError(t, err)
	assert.False(t, taken, "a method never conflicts with itself")

	taken, err = isPaymentMethodNameTaken(db, "UPI", 0)
	require.NoError(t, err)
	assert.False(t, taken)
}

package routers

import (
	"io"
	"net/http"

	"foodie/config"
	"foodie/handlers"
	"foodie/middleware"
	"foodie/models"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const SessionName = "foodie_session"

func SetupRouters(db *gorm.DB, rdb *redis.Client, conf config.Config) *gin.Engine {
	router := gin.Default()
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil
	}

	router.LoadHTMLGlob("templates/**/*.html")

	store := cookie.NewStore([]byte(conf.Server.SessionSecret))
	router.Use(sessions.Sessions(SessionName, store))
	router.Use(middleware.AuthMiddleware(db))

	RegisterRoutes(router, db, rdb)

	return router
}

// RegisterRoutes mounts every handler on router. Split from SetupRouters so
// the handler tests can mount the same routes on their own engine.
func RegisterRoutes(router *gin.Engine, db *gorm.DB, rdb *redis.Client) {
	router.GET("/health", func(c *gin.Context) {
		c.Header("Content-Type", "application/json")
		c.Status(http.StatusOK)
		io.WriteString(c.Writer, `{"alive": true}`)
	})

	router.GET("/", func(c *gin.Context) {
		handlers.HomeHandler(c)
	})

	auth := router.Group("/auth")
	{
		auth.GET("/login", func(c *gin.Context) {
			handlers.ShowLoginHandler(c)
		})
		auth.POST("/login", func(c *gin.Context) {
			handlers.LoginHandler(c, db)
		})
		auth.GET("/logout", func(c *gin.Context) {
			handlers.LogoutHandler(c, db)
		})
	}

	// everything below requires a resolved session user
	restaurants := router.Group("/restaurants")
	restaurants.Use(middleware.CheckLoginMiddleware())
	{
		restaurants.GET("/", func(c *gin.Context) {
			handlers.GetRestaurantListHandler(c, db)
		})
		restaurants.GET("/:restaurantID", func(c *gin.Context) {
			handlers.GetRestaurantDataHandler(c, db)
		})
	}

	orders := router.Group("/orders")
	orders.Use(middleware.CheckLoginMiddleware())
	{
		orders.GET("/", func(c *gin.Context) {
			handlers.GetOrderListHandler(c, db)
		})
		orders.GET("/:orderID", func(c *gin.Context) {
			handlers.GetOrderDataHandler(c, db)
		})
		orders.GET("/create/:restaurantID", func(c *gin.Context) {
			handlers.CreateOrderHandler(c, db, rdb)
		})
		orders.POST("/create/:restaurantID", func(c *gin.Context) {
			handlers.CreateOrderHandler(c, db, rdb)
		})
		orders.GET("/:orderID/edit", func(c *gin.Context) {
			handlers.EditOrderHandler(c, db)
		})
		orders.POST("/:orderID/add-item", func(c *gin.Context) {
			handlers.AddOrderItemHandler(c, db)
		})
		orders.POST("/:orderID/remove-item/:itemID", func(c *gin.Context) {
			handlers.RemoveOrderItemHandler(c, db)
		})

		// checkout and cancellation are manager territory
		managerOnly := orders.Group("")
		managerOnly.Use(middleware.CheckRolePermissionMiddleware(models.RoleAdmin, models.RoleManager))
		{
			managerOnly.GET("/:orderID/place", func(c *gin.Context) {
				handlers.PlaceOrderHandler(c, db, rdb)
			})
			managerOnly.POST("/:orderID/place", func(c *gin.Context) {
				handlers.PlaceOrderHandler(c, db, rdb)
			})
			managerOnly.POST("/:orderID/cancel", func(c *gin.Context) {
				handlers.CancelOrderHandler(c, db, rdb)
			})
		}

		adminOnly := orders.Group("")
		adminOnly.Use(middleware.CheckRolePermissionMiddleware(models.RoleAdmin))
		{
			adminOnly.POST("/:orderID/update-payment", func(c *gin.Context) {
				handlers.UpdateOrderPaymentHandler(c, db)
			})
		}
	}

	admin := router.Group("/admin")
	admin.Use(middleware.CheckLoginMiddleware(), middleware.CheckRolePermissionMiddleware(models.RoleAdmin))
	{
		admin.GET("/", func(c *gin.Context) {
			handlers.AdminDashboardHandler(c, db, rdb)
		})
		admin.GET("/payment-methods", func(c *gin.Context) {
			handlers.GetPaymentMethodListHandler(c, db)
		})
		admin.GET("/payment-methods/add", func(c *gin.Context) {
			handlers.AddPaymentMethodHandler(c, db, rdb)
		})
		admin.POST("/payment-methods/add", func(c *gin.Context) {
			handlers.AddPaymentMethodHandler(c, db, rdb)
		})
		admin.GET("/payment-methods/:methodID/edit", func(c *gin.Context) {
			handlers.EditPaymentMethodHandler(c, db, rdb)
		})
		admin.POST("/payment-methods/:methodID/edit", func(c *gin.Context) {
			handlers.EditPaymentMethodHandler(c, db, rdb)
		})
		admin.POST("/payment-methods/:methodID/toggle", func(c *gin.Context) {
			handlers.TogglePaymentMethodHandler(c, db, rdb)
		})
	}
}

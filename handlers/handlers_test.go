package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"foodie/config"
	"foodie/jwt"
	"foodie/middleware"
	"foodie/models"
	"foodie/routers"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDBCounter int64

func init() {
	jwt.Init("test-secret")
}

// setupTestRouter builds a router with the production routes mounted on an
// isolated in-memory SQLite database.
func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handlers_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := config.MigrateModels(testDB); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.LoadHTMLGlob("../templates/**/*.html")

	store := cookie.NewStore([]byte("test-session-secret"))
	router.Use(sessions.Sessions(routers.SessionName, store))
	router.Use(middleware.AuthMiddleware(testDB))

	routers.RegisterRoutes(router, testDB, nil)

	return router, testDB
}

func createUser(t *testing.T, db *gorm.DB, username, role, country string) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := models.User{
		Username: username,
		Password: string(hashed),
		FullName: strings.ReplaceAll(username, "-", " "),
		Role:     role,
		Country:  country,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %q: %v", username, err)
	}
	return &user
}

func createRestaurant(t *testing.T, db *gorm.DB, name, country string) *models.Restaurant {
	t.Helper()

	restaurant := models.Restaurant{Name: name, Country: country}
	if err := db.Create(&restaurant).Error; err != nil {
		t.Fatalf("failed to create restaurant %q: %v", name, err)
	}
	return &restaurant
}

func createMenuItem(t *testing.T, db *gorm.DB, restaurantID uint, name string, price float64) *models.MenuItem {
	t.Helper()

	item := models.MenuItem{RestaurantID: restaurantID, Name: name, Price: price}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("failed to create menu item %q: %v", name, err)
	}
	return &item
}

func createPaymentMethod(t *testing.T, db *gorm.DB, name string, active bool) *models.PaymentMethod {
	t.Helper()

	method := models.PaymentMethod{Name: name, IsActive: active}
	if err := db.Create(&method).Error; err != nil {
		t.Fatalf("failed to create payment method %q: %v", name, err)
	}
	return &method
}

// sessionCookie issues a session token for user, bypassing the login form.
func sessionCookie(t *testing.T, db *gorm.DB, user *models.User) string {
	t.Helper()

	token, err := jwt.GenerateToken(db, user.ID, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("failed to issue session token: %v", err)
	}
	return middleware.SessionCookieName + "=" + token
}

func doGet(router *gin.Engine, path, cookieHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookieHeader != "" {
		req.Header.Set("Cookie", cookieHeader)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func doPostForm(router *gin.Engine, path, cookieHeader string, form url.Values) *httptest.ResponseRecorder {
	var body string
	if form != nil {
		body = form.Encode()
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookieHeader != "" {
		req.Header.Set("Cookie", cookieHeader)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

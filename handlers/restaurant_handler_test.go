package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"foodie/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestaurantListIsCountryScoped(t *testing.T) {
	router, db := setupTestRouter(t)

	createRestaurant(t, db, "Bombay Spice House", models.CountryIndia)
	createRestaurant(t, db, "Liberty Diner", models.CountryAmerica)

	member := createUser(t, db, "thor", models.RoleMember, models.CountryIndia)
	cookie := sessionCookie(t, db, member)

	recorder := doGet(router, "/restaurants/", cookie)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Bombay Spice House")
	assert.NotContains(t, recorder.Body.String(), "Liberty Diner")
}

func TestRestaurantListShowsEveryCountryToAdmins(t *testing.T) {
	router, db := setupTestRouter(t)

	createRestaurant(t, db, "Bombay Spice House", models.CountryIndia)
	createRestaurant(t, db, "Liberty Diner", models.CountryAmerica)

	admin := createUser(t, db, "nick-fury", models.RoleAdmin, models.CountryAmerica)
	cookie := sessionCookie(t, db, admin)

	recorder := doGet(router, "/restaurants/", cookie)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Bombay Spice House")
	assert.Contains(t, recorder.Body.String(), "Liberty Diner")
}

func TestRestaurantListRequiresLogin(t *testing.T) {
	router, _ := setupTestRouter(t)

	recorder := doGet(router, "/restaurants/", "")
	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, "/auth/login", recorder.Header().Get("Location"))
}

func TestViewRestaurantShowsMenu(t *testing.T) {
	router, db := setupTestRouter(t)

	restaurant := createRestaurant(t, db, "Bombay Spice House", models.CountryIndia)
	createMenuItem(t, db, restaurant.ID, "Butter Chicken", 9.5)
	createMenuItem(t, db, restaurant.ID, "Garlic Naan", 2.5)

	member := createUser(t, db, "thor", models.RoleMember, models.CountryIndia)
	cookie := sessionCookie(t, db, member)

	recorder := doGet(router, fmt.Sprintf("/restaurants/%d", restaurant.ID), cookie)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Butter Chicken")
	assert.Contains(t, recorder.Body.String(), "Garlic Naan")
	assert.Contains(t, recorder.Body.String(), "9.50")
}

func TestViewRestaurantDeniedAcrossCountries(t *testing.T) {
	router, db := setupTestRouter(t)

	restaurant := createRestaurant(t, db, "Liberty Diner", models.CountryAmerica)
	member := createUser(t, db, "thor", models.RoleMember, models.CountryIndia)
	cookie := sessionCookie(t, db, member)

	recorder := doGet(router, fmt.Sprintf("/restaurants/%d", restaurant.ID), cookie)
	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, "/restaurants/", recorder.Header().Get("Location"))
}

func TestViewMissingRestaurantRedirects(t *testing.T) {
	router, db := setupTestRouter(t)

	member := createUser(t, db, "thor", models.RoleMember, models.CountryIndia)
	cookie := sessionCookie(t, db, member)

	recorder := doGet(router, "/restaurants/9999", cookie)
	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, "/restaurants/", recorder.Header().Get("Location"))
}

func TestRestaurantListCountsOnlyLiveMenuItems(t *testing.T) {
	router, db := setupTestRouter(t)

	restaurant := createRestaurant(t, db, "Bombay Spice House", models.CountryIndia)
	createMenuItem(t, db, restaurant.ID, "Butter Chicken", 9.5)
	retired := createMenuItem(t, db, restaurant.ID, "Old Special", 5.0)
	require.NoError(t, db.Delete(&models.MenuItem{}, retired.ID).Error)

	member := createUser(t, db, "thor", models.RoleMember, models.CountryIndia)
	cookie := sessionCookie(t, db, member)

	recorder := doGet(router, "/restaurants/", cookie)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "Old Special")
}

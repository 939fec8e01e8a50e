package middleware

import (
	"testing"

	"foodie/models"
	"github.com/stretchr/testify/assert"
)

func TestCheckCountryAccess(t *testing.T) {
	admin := &models.User{Role: models.RoleAdmin, Country: models.CountryAmerica}
	manager := &models.User{Role: models.RoleManager, Country: models.CountryIndia}
	member := &models.User{Role: models.RoleMember, Country: models.CountryIndia}

	assert.True(t, CheckCountryAccess(admin, models.CountryIndia))
	assert.True(t, CheckCountryAccess(admin, models.CountryAmerica))

	assert.True(t, CheckCountryAccess(manager, models.CountryIndia))
	assert.False(t, CheckCountryAccess(manager, models.CountryAmerica))

	assert.True(t, CheckCountryAccess(member, models.CountryIndia))
	assert.False(t, CheckCountryAccess(member, models.CountryAmerica))

	assert.False(t, CheckCountryAccess(nil, models.CountryIndia))
}

package jwt

import (
	"errors"
	"time"

	"foodie/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var secretKey []byte

var ErrTokenRevoked = errors.New("session token has been revoked")

// Init sets the signing secret. Must be called before any token is issued.
func Init(secret string) {
	secretKey = []byte(secret)
}

// GenerateToken issues a signed session token and records its JTI so that
// logout can revoke it server-side.
func GenerateToken(db *gorm.DB, userID uint, expTime time.Time) (string, error) {
	jti := uuid.NewString()

	loginToken := models.LoginToken{
		JTI:            jti,
		UserID:         userID,
		ExpirationTime: expTime,
	}
	if err := db.Create(&loginToken).Error; err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userID": userID,
		"jti":    jti,
		"exp":    expTime.Unix(),
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// VerifyToken validates a session token and returns the user ID it was issued
// for. Tokens whose JTI is no longer in the login token table are revoked.
func VerifyToken(tokenString string, db *gorm.DB) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return 0, err
	}

	if !token.Valid {
		return 0, jwt.ErrTokenSignatureInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, jwt.ErrTokenInvalidClaims
	}

	jti, ok := claims["jti"].(string)
	if !ok {
		return 0, jwt.ErrTokenInvalidClaims
	}

	var loginToken models.LoginToken
	err = db.Where("jti = ?", jti).First(&loginToken).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrTokenRevoked
		}
		return 0, err
	}

	if time.Now().After(loginToken.ExpirationTime) {
		return 0, jwt.ErrTokenExpired
	}

	return loginToken.UserID, nil
}

// RevokeToken deletes the login token row behind a session token.
func RevokeToken(tokenString string, db *gorm.DB) error {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return jwt.ErrTokenInvalidClaims
	}

	jti, ok := claims["jti"].(string)
	if !ok {
		return jwt.ErrTokenInvalidClaims
	}

	return db.Unscoped().Where("jti = ?", jti).Delete(&models.LoginToken{}).Error
}

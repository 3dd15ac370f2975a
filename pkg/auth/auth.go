package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/arnavshah/crew-planner-api/pkg/database"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var jwtAlgorithm = jwt.SigningMethodHS256

// bcryptCost is lowered in tests
var bcryptCost = 14

var (
	mu           sync.RWMutex
	jwtSecret    []byte
	masterSecret []byte
)

// SetSecrets installs the JWT signing secret and the API key master secret
func SetSecrets(jwtKey, apiMaster string) {
	mu.Lock()
	defer mu.Unlock()
	jwtSecret = []byte(jwtKey)
	masterSecret = []byte(apiMaster)
}

func secrets() ([]byte, []byte) {
	mu.RLock()
	defer mu.RUnlock()
	return jwtSecret, masterSecret
}

// Claims represents the JWT claims
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CreateToken creates a new JWT token for an admin
func CreateToken(username string) (string, error) {
	key, _ := secrets()
	if len(key) == 0 {
		return "", errors.New("JWT secret not configured")
	}
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwtAlgorithm, claims)
	return token.SignedString(key)
}

// VerifyToken verifies a JWT token
func VerifyToken(tokenString string) (*Claims, error) {
	key, _ := secrets()
	if len(key) == 0 {
		return nil, errors.New("JWT secret not configured")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwtAlgorithm {
			return nil, errors.New("unexpected signing method")
		}
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// EnsureAdminExists creates the first admin when the table is empty
func EnsureAdminExists(db *gorm.DB, username, password string, log *zap.Logger) error {
	var count int64
	if err := db.Model(&database.MasterUser{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	user := database.MasterUser{
		Username:     username,
		PasswordHash: hash,
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}
	if log != nil {
		log.Info("default admin user created", zap.String("username", username))
	}
	return nil
}

func sign(userID string) string {
	_, master := secrets()
	h := hmac.New(sha256.New, master)
	h.Write([]byte(userID))
	return hex.EncodeToString(h.Sum(nil))
}

// GenerateHMACKey creates a signed API key using HMAC-SHA256
func GenerateHMACKey(userID string) string {
	return userID + "." + sign(userID)
}

// VerifyHMACKey validates an HMAC-signed API key and returns its user id
func VerifyHMACKey(key string) (string, error) {
	_, master := secrets()
	if len(master) == 0 {
		return "", errors.New("API master secret not configured")
	}

	idx := strings.LastIndex(key, ".")
	if idx <= 0 || idx == len(key)-1 {
		return "", errors.New("invalid key format")
	}
	userID, provided := key[:idx], key[idx+1:]

	// Constant-time comparison
	if !hmac.Equal([]byte(provided), []byte(sign(userID))) {
		return "", errors.New("invalid signature")
	}
	return userID, nil
}

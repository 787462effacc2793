package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const secretKeyFilename = ".hwmonitor-secret-key"

// AuthService manages JWT token generation and validation
type AuthService struct {
	secretKey   string
	tokenExpiry time.Duration
}

// CustomClaims represents the JWT claims structure
type CustomClaims struct {
	ClientName string `json:"client_name"`
	jwt.RegisteredClaims
}

// NewAuthService creates the token service. An empty secretKey is loaded from
// dataDir, or generated and persisted there on first run.
func NewAuthService(secretKey, dataDir string, tokenExpiry time.Duration) *AuthService {
	if secretKey == "" {
		secretKey = loadOrCreateSecret(filepath.Join(dataDir, secretKeyFilename))
	}

	if tokenExpiry == 0 {
		tokenExpiry = 90 * 24 * time.Hour // 90 days default
	}

	secretKey = strings.TrimSpace(secretKey)

	// HMAC-SHA256 wants at least 32 bytes
	if len(secretKey) < 32 {
		log.Printf("[AUTH] Warning: secret key is only %d bytes, padding to 32", len(secretKey))
		padding := make([]byte, (32-len(secretKey)+1)/2)
		_, _ = rand.Read(padding)
		secretKey = secretKey + hex.EncodeToString(padding)
	}

	return &AuthService{
		secretKey:   secretKey,
		tokenExpiry: tokenExpiry,
	}
}

func loadOrCreateSecret(keyFile string) string {
	if data, err := os.ReadFile(keyFile); err == nil && len(data) > 0 {
		secret := strings.TrimSpace(string(data))
		log.Printf("[AUTH] Loaded persisted secret key from %s (length: %d bytes)", keyFile, len(secret))
		return secret
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "hwmonitor"
	}

	randomBytes := make([]byte, 16)
	var secret string
	if _, err := rand.Read(randomBytes); err != nil {
		secret = fmt.Sprintf("hwmonitor-%s-%d-backup", hostname, time.Now().UnixNano())
		log.Printf("[AUTH] Warning: random generation failed, using fallback key")
	} else {
		secret = fmt.Sprintf("hwmonitor-%s-%s", hostname, hex.EncodeToString(randomBytes))
	}

	if err := os.MkdirAll(filepath.Dir(keyFile), 0o700); err == nil {
		err = os.WriteFile(keyFile, []byte(secret), 0o600)
		if err != nil {
			log.Printf("[AUTH] Warning: could not persist secret key to %s: %v", keyFile, err)
		} else {
			log.Printf("[AUTH] Generated and persisted secret key to %s", keyFile)
		}
	}

	return secret
}

// GenerateToken creates a new JWT token for a named client
func (a *AuthService) GenerateToken(clientName string) (string, error) {
	now := time.Now()

	claims := CustomClaims{
		ClientName: clientName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "hwmonitor-server",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.secretKey))
}

// ValidateToken verifies and parses a JWT token
func (a *AuthService) ValidateToken(tokenString string) (*CustomClaims, error) {
	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(a.secretKey), nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// TokenExpiry returns how long issued tokens stay valid
func (a *AuthService) TokenExpiry() time.Duration {
	return a.tokenExpiry
}

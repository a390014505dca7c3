package middleware

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	apierrors "github.com/jinjernot/wg-sub000/internal/api/shared/errors"
	"github.com/jinjernot/wg-sub000/internal/logger"
)

const (
	AUTH_TYPE_KEY    = "auth_type"
	AUTH_SUBJECT_KEY = "auth_subject"
)

// AuthConfig holds authentication configuration for operator endpoints
type AuthConfig struct {
	JWTPublicKey string // RSA public key in PEM format
	APIKeys      []string
}

// AuthResult holds the result of authentication
type AuthResult struct {
	AuthType    string // "jwt" or "apikey"
	AuthSubject string
}

// Authenticate validates an Authorization header of the form
// "Bearer <jwt>" or "ApiKey <key>"
func Authenticate(authHeader string, cfg AuthConfig) (AuthResult, error) {
	if authHeader == "" {
		return AuthResult{}, errors.New("missing Authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[1] == "" {
		return AuthResult{}, errors.New("invalid Authorization header format")
	}

	switch strings.ToLower(parts[0]) {
	case "bearer":
		claims, err := validateJWT(parts[1], cfg.JWTPublicKey, time.Now())
		if err != nil {
			return AuthResult{}, err
		}
		return AuthResult{AuthType: "jwt", AuthSubject: claims.Subject}, nil
	case "apikey":
		if err := validateAPIKey(parts[1], cfg.APIKeys); err != nil {
			return AuthResult{}, err
		}
		return AuthResult{AuthType: "apikey"}, nil
	default:
		return AuthResult{}, fmt.Errorf("unsupported authorization type: %s", parts[0])
	}
}

// Auth returns a gin middleware guarding operator actions
func Auth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := Authenticate(c.GetHeader("Authorization"), cfg)
		if err != nil {
			logger.Warn("Authentication failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierrors.NewUnauthorizedError("Authentication failed", err.Error()))
			return
		}

		c.Set(AUTH_TYPE_KEY, result.AuthType)
		if result.AuthSubject != "" {
			c.Set(AUTH_SUBJECT_KEY, result.AuthSubject)
		}
		c.Next()
	}
}

// validateJWT validates an RS256 token and its time claims
func validateJWT(tokenString string, publicKeyPEM string, now time.Time) (*jwt.RegisteredClaims, error) {
	if publicKeyPEM == "" {
		return nil, errors.New("JWT public key not configured")
	}

	publicKey, err := parseRSAPublicKey(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSA public key: %w", err)
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return publicKey, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// parseRSAPublicKey parses a PKIX or PKCS1 RSA public key
func parseRSAPublicKey(publicKeyPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, errors.New("failed to parse PEM block containing public key")
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return x509.ParsePKCS1PublicKey(block.Bytes)
	}

	rsaKey, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not an RSA key")
	}
	return rsaKey, nil
}

func validateAPIKey(apiKey string, validKeys []string) error {
	configured := false
	for _, key := range validKeys {
		if key == "" {
			continue
		}
		configured = true
		if key == apiKey {
			return nil
		}
	}
	if !configured {
		return errors.New("no API keys configured")
	}
	return errors.New("invalid API key")
}

package utils

import (
	"strings"
	"time"

	"academy/backend/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// WalletLocal is the fiber.Ctx locals key holding the authenticated wallet.
const WalletLocal = "wallet"

func GenerateJWTToken(wallet string, cfg *config.Config) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"wallet": wallet,
		"iat":    now.Unix(),
		"exp":    now.Add(cfg.JWTTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

func ExtractWalletFromToken(c *fiber.Ctx, cfg *config.Config) (string, error) {
	tokenString := strings.TrimSpace(strings.TrimPrefix(c.Get("Authorization"), "Bearer "))
	if tokenString == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Missing authorization token")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})

	if err != nil {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	wallet, ok := claims["wallet"].(string)
	if !ok || wallet == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid wallet in token")
	}

	return wallet, nil
}

// CurrentWallet returns the wallet stored by the auth middleware.
func CurrentWallet(c *fiber.Ctx) string {
	wallet, _ := c.Locals(WalletLocal).(string)
	return wallet
}

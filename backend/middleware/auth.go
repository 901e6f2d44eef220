package middleware

import (
	"academy/backend/config"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// SignerKeyHeader carries the backend signer key on signer routes.
const SignerKeyHeader = "X-Signer-Key"

// AuthMiddleware requires a learner session token and stores the wallet in
// the request locals.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		wallet, err := utils.ExtractWalletFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, err.Error())
		}
		c.Locals(utils.WalletLocal, wallet)
		return c.Next()
	}
}

// SignerMiddleware admits requests presenting the backend signer key. With
// no SIGNER_KEY_HASH configured the signer routes are closed.
func SignerMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(SignerKeyHeader)
		if cfg.SignerKeyHash == "" || key == "" {
			return utils.Unauthorized(c, "Missing signer key")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(cfg.SignerKeyHash), []byte(key)); err != nil {
			return utils.Forbidden(c, "Backend signer required")
		}

		return c.Next()
	}
}

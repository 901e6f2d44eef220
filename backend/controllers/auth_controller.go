package controllers

import (
	"errors"
	"time"

	"academy/backend/config"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// loginMaxSkew is how far a signed login timestamp may drift from now.
const loginMaxSkew = 5 * time.Minute

type AuthController struct {
	Cfg    *config.Config
	Logger *zap.Logger
}

func NewAuthController(cfg *config.Config, logger *zap.Logger) *AuthController {
	return &AuthController{Cfg: cfg, Logger: logger}
}

type LoginRequest struct {
	Wallet    string `json:"wallet" validate:"required,wallet"`
	Message   string `json:"message" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

// Login godoc
// @Summary Wallet login
// @Description Verifies a wallet signature over "Sign in to Academy: <unix>" and returns a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Signed login message"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input LoginRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	now := time.Now()
	if err := utils.CheckLoginMessage(input.Message, now, loginMaxSkew); err != nil {
		return utils.Unauthorized(c, err.Error())
	}
	if err := utils.VerifyWalletSignature(input.Wallet, input.Message, input.Signature); err != nil {
		if errors.Is(err, utils.ErrInvalidWallet) {
			return utils.BadRequest(c, err.Error())
		}
		return utils.Unauthorized(c, "Invalid credentials")
	}

	token, err := utils.GenerateJWTToken(input.Wallet, ac.Cfg)
	if err != nil {
		ac.Logger.Error("sign session token", zap.Error(err))
		return utils.InternalServerError(c, "Could not generate token")
	}

	ac.Logger.Info("wallet login", zap.String("wallet", input.Wallet))
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"token":      token,
		"wallet":     input.Wallet,
		"expires_at": now.Add(ac.Cfg.JWTTTL).Unix(),
	})
}

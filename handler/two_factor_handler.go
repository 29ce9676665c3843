package handler

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image/png"

	"atomichabits/dto"
	"atomichabits/middleware"
	"atomichabits/usecase"
	"atomichabits/utils"

	"github.com/gin-gonic/gin"
)

// Setup2FA generates a pending secret and returns it with a QR code.
func (h *AuthHandler) Setup2FA(c *gin.Context) {
	key, err := h.users.SetupTwoFactor(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	img, err := key.Image(200, 200)
	if err != nil {
		utils.InternalError(c, "Failed to generate QR code")
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		utils.InternalError(c, "Failed to encode QR code")
		return
	}

	utils.Success(c, dto.TwoFactorSetupResponse{
		Secret: key.Secret(),
		URL:    key.URL(),
		QRCode: "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	})
}

// Verify2FA enables 2FA once the first code checks out.
func (h *AuthHandler) Verify2FA(c *gin.Context) {
	var req dto.TwoFactorCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request")
		return
	}

	codes, err := h.users.EnableTwoFactor(c.Request.Context(), middleware.UserID(c), req.Code)
	if err != nil {
		twoFactorError(c, err)
		return
	}

	utils.Success(c, gin.H{
		"message":        "2FA enabled successfully",
		"recovery_codes": codes,
		"warning":        "Save these recovery codes securely. They will not be shown again.",
	})
}

func (h *AuthHandler) Disable2FA(c *gin.Context) {
	var req dto.TwoFactorCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request")
		return
	}

	if err := h.users.DisableTwoFactor(c.Request.Context(), middleware.UserID(c), req.Code); err != nil {
		twoFactorError(c, err)
		return
	}
	utils.Success(c, gin.H{"message": "2FA disabled successfully"})
}

func twoFactorError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidTwoFactorCode):
		utils.TrackAuthAttempt("failure", "invalid_2fa")
		utils.Unauthorized(c, "Invalid 2FA code")
	case errors.Is(err, usecase.ErrTwoFactorNotSetUp):
		utils.BadRequest(c, err.Error())
	default:
		utils.HandleError(c, err)
	}
}

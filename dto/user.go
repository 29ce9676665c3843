package dto

import (
	"time"

	"atomichabits/model"
)

type UserProfileResponse struct {
	UserID           string          `json:"user_id"`
	Email            string          `json:"email"`
	FullName         string          `json:"full_name"`
	TwoFactorEnabled bool            `json:"two_factor_enabled"`
	CreatedAt        time.Time       `json:"created_at"`
	Links            map[string]Link `json:"_links,omitempty"`
}

func ToUserProfileResponse(user *model.User, links map[string]Link) UserProfileResponse {
	return UserProfileResponse{
		UserID:           user.UserID,
		Email:            user.Email,
		FullName:         user.FullName,
		TwoFactorEnabled: user.TwoFactorEnabled,
		CreatedAt:        user.CreatedAt,
		Links:            links,
	}
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TwoFactorCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

type TwoFactorSetupResponse struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
	QRCode string `json:"qr_code"` // base64 PNG
}

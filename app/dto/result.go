package dto

const TokenTypeBearer = "bearer"

// TokenBundle is returned by register, login and refresh.
type TokenBundle struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

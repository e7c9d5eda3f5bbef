package dto

// LoginResponse carries the freshly issued token in canonical hyphenated
// form plus its lifetime in seconds.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// ValidateTokenResponse carries the principal a token resolves to and the
// authorization scopes attached to it.
type ValidateTokenResponse struct {
	Username string   `json:"username"`
	Scopes   []string `json:"scopes"`
}

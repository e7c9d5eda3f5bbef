// Package domain defines the core authentication types and domain errors.
package domain

// Credential carries a username/password pair for the duration of a login
// request. It is never persisted and must never be logged.
type Credential struct {
	Username string
	Password string
}

// IssueTokenInput contains the parameters for issuing a token.
type IssueTokenInput struct {
	Username string
	Password string
}

// IssueTokenOutput contains the result of a successful token issuance.
type IssueTokenOutput struct {
	// Token is the canonical hyphenated form of the opaque identifier.
	Token string
}

// ValidateTokenOutput contains the result of a successful token validation.
type ValidateTokenOutput struct {
	Username string
	// Scopes is the authorization scope list attached to the token. It is
	// empty by default; a real scope resolver can be substituted without
	// changing this contract.
	Scopes []string
}

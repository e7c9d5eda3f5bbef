package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/go-ldap/ldap/v3"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
	"github.com/allisson/authgate/internal/config"
)

// UserPlaceholder is the token replaced by the login username in the
// configured bind DN template.
const UserPlaceholder = "%USER%"

// ldapVerifier verifies credentials with a simple bind against an LDAP
// directory. Each call opens a fresh connection and performs a single bind
// attempt; no retry, no connection reuse across distinct user credentials.
type ldapVerifier struct {
	directory config.DirectoryConfig
}

// NewLDAPVerifier creates a CredentialVerifier backed by the configured
// LDAP directory.
func NewLDAPVerifier(directory config.DirectoryConfig) CredentialVerifier {
	return &ldapVerifier{directory: directory}
}

// Verify binds to the directory with the templated DN and the supplied
// password. The library speaks LDAPv3; the protocol version is not left to a
// server default.
func (v *ldapVerifier) Verify(ctx context.Context, username, password string) error {
	bindDN := BindDN(v.directory.UserPattern, username)

	dialer := &net.Dialer{Timeout: v.directory.BindTimeout}
	conn, err := ldap.DialURL(v.directory.URI, ldap.DialWithDialer(dialer))
	if err != nil {
		return fmt.Errorf("%w: dial failed: %v", authDomain.ErrDirectoryUnavailable, err)
	}
	defer func() { _ = conn.Close() }()

	conn.SetTimeout(v.directory.BindTimeout)

	if err := conn.Bind(bindDN, password); err != nil {
		return classifyBindError(err)
	}

	return nil
}

// classifyBindError maps an LDAP bind failure into exactly one of the two
// domain error kinds. Result code 49 (invalid credentials) is a credential
// failure; everything else is an availability failure carrying the result
// code for the logs.
func classifyBindError(err error) error {
	if ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials) {
		return authDomain.ErrInvalidCredentials
	}

	var ldapErr *ldap.Error
	if errors.As(err, &ldapErr) {
		return fmt.Errorf(
			"%w: bind failed with result code %d: %v",
			authDomain.ErrDirectoryUnavailable, ldapErr.ResultCode, err,
		)
	}

	return fmt.Errorf("%w: bind failed: %v", authDomain.ErrDirectoryUnavailable, err)
}

// BindDN substitutes the username into the configured DN template. The
// template is trusted configuration, not user input, so no DN escaping is
// applied to the username.
func BindDN(pattern, username string) string {
	return strings.ReplaceAll(pattern, UserPlaceholder, username)
}

package domain

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

const redacted = "********"

// Credentials identify one brokerage login. Password never appears in
// formatted output or logs.
type Credentials struct {
	Username string
	Password string
	Account  string
}

func (c Credentials) Complete() bool {
	return strings.TrimSpace(c.Username) != "" &&
		c.Password != "" &&
		strings.TrimSpace(c.Account) != ""
}

func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{Username:%s Password:%s Account:%s}", c.Username, redacted, c.Account)
}

func (c Credentials) GoString() string {
	return c.String()
}

func (c Credentials) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("username", c.Username)
	enc.AddString("account", c.Account)
	return nil
}

// PasswordSecretRef is the secret-store key holding the password for username.
func PasswordSecretRef(username string) string {
	return fmt.Sprintf("apx/%s/password", strings.TrimSpace(username))
}

// CredentialProfile is the persisted, non-secret half of Credentials.
type CredentialProfile struct {
	Username    string
	Account     string
	PasswordRef string
}

// Package auth provides a high-level API for persisting and retrieving user credentials from the system keyring.
package auth

import (
	"github.com/zalando/go-keyring"
)

const (
	service = "duocast-cli"
	user    = "connector-token"
)

// SetToken persists the remote connector access token to the system keyring.
func SetToken(token string) error {
	return keyring.Set(service, user, token)
}

// GetToken retrieves the remote connector access token from the system keyring.
func GetToken() (string, error) {
	return keyring.Get(service, user)
}

// DeleteToken removes the remote connector access token from the system keyring.
func DeleteToken() error {
	return keyring.Delete(service, user)
}

package secrets

import (
	"errors"
	"strings"

	"github.com/zalando/go-keyring"

	"jobhunt-scout/internal/config"
)

const (
	// “Service” groups the app's secrets in the OS keychain.
	KeyringService = "jobhunt-scout"
)

var ErrNoPassword = errors.New("site password not found (set it with `scout secrets set-password` or in config credentials.password)")

func keyringAccount(user string) string {
	return "site:" + strings.ToLower(strings.TrimSpace(user))
}

// GetPassword reads the site password for user from the keyring.
func GetPassword(user string) (string, error) {
	if strings.TrimSpace(user) == "" {
		return "", errors.New("credentials.user is empty")
	}
	pw, err := keyring.Get(KeyringService, keyringAccount(user))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNoPassword
		}
		return "", err
	}
	if strings.TrimSpace(pw) == "" {
		return "", ErrNoPassword
	}
	return pw, nil
}

func SetPassword(user, password string) error {
	if strings.TrimSpace(user) == "" {
		return errors.New("credentials.user is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, keyringAccount(user), password)
}

func DeletePassword(user string) error {
	if strings.TrimSpace(user) == "" {
		return errors.New("credentials.user is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount(user))
}

// ResolvePassword prefers the keyring and falls back to the config file.
func ResolvePassword(cfg config.Config) (string, error) {
	pw, err := GetPassword(cfg.Credentials.User)
	if err == nil {
		return pw, nil
	}
	if cfg.Credentials.Password != "" {
		return cfg.Credentials.Password, nil
	}
	return "", err
}

//go:build !windows

package config

import "errors"

func revealSecrets(*Config) {}

func EncryptSecret(string) (string, error) {
	return "", errors.New("secret encryption is only supported on windows")
}

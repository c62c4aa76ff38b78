//go:build windows

package config

import (
	"strings"

	"github.com/billgraziano/dpapi"
)

const secretPrefix = "dpapi:"

// revealSecrets decrypts tokens stored with the dpapi: prefix, values that fail to decrypt are left empty.
func revealSecrets(cfg *Config) {
	cfg.Discord.Token = decryptSecret(cfg.Discord.Token)
	cfg.Telegram.Token = decryptSecret(cfg.Telegram.Token)
	cfg.Ngrok.Authtoken = decryptSecret(cfg.Ngrok.Authtoken)
}

func decryptSecret(value string) string {
	if !strings.HasPrefix(value, secretPrefix) {
		return value
	}
	plain, err := dpapi.Decrypt(strings.TrimPrefix(value, secretPrefix))
	if err != nil {
		return ""
	}

	return plain
}

// EncryptSecret protects value for the current Windows user so it can be stored in the config file.
func EncryptSecret(value string) (string, error) {
	enc, err := dpapi.Encrypt(value)
	if err != nil {
		return "", err
	}

	return secretPrefix + enc, nil
}

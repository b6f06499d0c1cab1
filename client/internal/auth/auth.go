package auth

import "github.com/zalando/go-keyring"

const (
	appName = "warden"
	keyName = "trigger-token"
)

func Save(token string) error {
	return keyring.Set(appName, keyName, token)
}

func Get() (string, error) {
	return keyring.Get(appName, keyName)
}

package config

import (
	"fmt"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
)

// ValKeyCredentials resolves the address and credentials of the ValKey
// instance backing the revocation denylist.
func ValKeyCredentials(conf ValKey) (host, user, password string, _ error) {
	hostValue, err := commoncfg.LoadValueFromSourceRef(conf.Host)
	if err != nil {
		return "", "", "", fmt.Errorf("loading valkey host: %w", err)
	}

	userValue, err := loadOptional(conf.User)
	if err != nil {
		return "", "", "", fmt.Errorf("loading valkey user: %w", err)
	}

	passwordValue, err := loadOptional(conf.Password)
	if err != nil {
		return "", "", "", fmt.Errorf("loading valkey password: %w", err)
	}

	return string(hostValue), userValue, passwordValue, nil
}

func loadOptional(ref commoncfg.SourceRef) (string, error) {
	if ref.Source == "" {
		return "", nil
	}

	value, err := commoncfg.LoadValueFromSourceRef(ref)
	if err != nil {
		return "", err
	}

	return string(value), nil
}

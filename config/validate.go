package config

import (
	"errors"
	"fmt"
	"time"
)

// Validate checks that the credentials for the selected storage provider and the car list
// are present.
func (c *Config) Validate() error {
	switch c.Storage.Provider {
	case ProviderBox:
		if err := c.Box.validate("box"); err != nil {
			return err
		}
	case ProviderGoogleDrive:
		if c.Google.Credentials == "" {
			return errors.New("google.credentials is required")
		}
	default:
		return fmt.Errorf("storage.provider must be %q or %q, got %q", ProviderBox, ProviderGoogleDrive, c.Storage.Provider)
	}

	if c.Storage.Timeout < 0 {
		return fmt.Errorf("storage.timeout must be >= 0, got %v", c.Storage.Timeout)
	}
	if c.Storage.Timeout > 0 && c.Storage.Timeout < time.Second {
		return fmt.Errorf("storage.timeout must be at least 1s, got %v", c.Storage.Timeout)
	}

	if c.Workbook.Sheet == "" {
		return errors.New("workbook.sheet is required")
	}
	if c.Workbook.KeyColumn == "" || c.Workbook.ValueColumn == "" {
		return errors.New("workbook.key_column and workbook.value_column are required")
	}

	if len(c.Cars) == 0 {
		return errors.New("cars section must list at least one file")
	}
	for _, car := range c.Cars {
		if car.FileId == "" {
			return fmt.Errorf("cars.%s has no file id", car.Name)
		}
	}

	return nil
}

func (b *Box) validate(prefix string) error {
	if b.ClientId == "" {
		return fmt.Errorf("%s.client_id is required", prefix)
	}
	if b.ClientSecret == "" {
		return fmt.Errorf("%s.client_secret is required", prefix)
	}
	if b.EnterpriseId == "" {
		return fmt.Errorf("%s.enterprise_id is required", prefix)
	}
	if b.Urls.TokenUrl == "" {
		return fmt.Errorf("%s.token_url is required", prefix)
	}
	if b.Urls.ApiUrl == "" {
		return fmt.Errorf("%s.api_url is required", prefix)
	}
	return nil
}

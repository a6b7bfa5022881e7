package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ProviderBox         = "box"
	ProviderGoogleDrive = "gdrive"

	DefaultPath = "car_sensor.conf"

	envPrefix = "CAR_SENSOR"
)

var ErrConfigNotFound = errors.New("config file not found")

// Read loads the INI config at path. Any key can be overridden from the environment as
// CAR_SENSOR_<SECTION>_<KEY>, e.g. CAR_SENSOR_BOX_CLIENT_SECRET.
func Read(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("could not open config file %s: %w: %w", path, ErrConfigNotFound, err)
		}
		return Config{}, fmt.Errorf("could not open config file %s: %w", path, err)
	}

	v, err := newViper()
	if err != nil {
		return Config{}, err
	}

	if err := v.ReadConfig(bytes.NewReader(b)); err != nil {
		return Config{}, fmt.Errorf("could not parse config file %s: %w", path, err)
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

func newViper() (*viper.Viper, error) {
	codecs := viper.NewCodecRegistry()
	if err := codecs.RegisterCodec("ini", iniCodec{}); err != nil {
		return nil, fmt.Errorf("unable to register ini codec: %w", err)
	}

	v := viper.NewWithOptions(viper.WithCodecRegistry(codecs))
	v.SetConfigType("ini")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("storage.provider", ProviderBox)
	v.SetDefault("storage.timeout", 60*time.Second)
	v.SetDefault("box.token_url", "https://api.box.com/oauth2/token")
	v.SetDefault("box.api_url", "https://api.box.com/2.0")
	v.SetDefault("workbook.sheet", "Properties")
	v.SetDefault("workbook.key_column", "Key")
	v.SetDefault("workbook.value_column", "Value")

	return v, nil
}

// timeout reads storage.timeout as a duration ("90s", "2m") or a bare number of seconds.
func timeout(v *viper.Viper) time.Duration {
	if secs, err := strconv.ParseFloat(strings.TrimSpace(v.GetString("storage.timeout")), 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return v.GetDuration("storage.timeout")
}

func fromViper(v *viper.Viper) Config {
	cfg := Config{
		Storage: Storage{
			Provider: strings.ToLower(strings.TrimSpace(v.GetString("storage.provider"))),
			Timeout:  timeout(v),
		},
		Box: Box{
			ClientId:     strings.TrimSpace(v.GetString("box.client_id")),
			ClientSecret: strings.TrimSpace(v.GetString("box.client_secret")),
			EnterpriseId: strings.TrimSpace(v.GetString("box.enterprise_id")),
			Urls: Url{
				TokenUrl: strings.TrimSpace(v.GetString("box.token_url")),
				ApiUrl:   strings.TrimRight(strings.TrimSpace(v.GetString("box.api_url")), "/"),
			},
		},
		Google: Google{
			Credentials: strings.TrimSpace(v.GetString("google.credentials")),
		},
		Workbook: Workbook{
			Sheet:       v.GetString("workbook.sheet"),
			KeyColumn:   v.GetString("workbook.key_column"),
			ValueColumn: v.GetString("workbook.value_column"),
		},
	}

	cars := v.GetStringMapString("cars")
	names := make([]string, 0, len(cars))
	for name := range cars {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cfg.Cars = append(cfg.Cars, Car{
			Name:   name,
			FileId: strings.TrimSpace(cars[name]),
		})
	}

	return cfg
}

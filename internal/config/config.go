package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/liyaqa/membership/internal/types"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig   `validate:"required"`
	Membership MembershipConfig `validate:"required"`
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// MembershipConfig holds the club's membership policy defaults. The cooling-off
// days value is fixed by regulation and should not be overridden casually.
type MembershipConfig struct {
	ContractNumberPrefix    string `validate:"required"`
	CoolingOffDays          int    `validate:"required,min=1"`
	DefaultNoticePeriodDays int    `validate:"required,min=0"`
	OfferExpiryHours        int    `validate:"required,min=1"`
	FreeFreezeDays          int    `validate:"required,min=1"`
	LoyaltyTenureDays       int    `validate:"required,min=1"`
	LoyaltyDiscountPercent  int    `validate:"required,min=1,max=100"`
	LoyaltyDiscountMonths   int    `validate:"required,min=1"`
	ReactivationWindowDays  int    `validate:"required,min=1"`
	BatchSize               int    `validate:"required,min=1"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	// Load .env for local development; deployed environments use real env vars
	_ = godotenv.Load()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/liyaqa")

	v.SetEnvPrefix("LIYAQA")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeAPI))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("membership.contractnumberprefix", "LYQ")
	v.SetDefault("membership.coolingoffdays", 7)
	v.SetDefault("membership.defaultnoticeperioddays", 30)
	v.SetDefault("membership.offerexpiryhours", 72)
	v.SetDefault("membership.freefreezedays", 30)
	v.SetDefault("membership.loyaltytenuredays", 90)
	v.SetDefault("membership.loyaltydiscountpercent", 25)
	v.SetDefault("membership.loyaltydiscountmonths", 3)
	v.SetDefault("membership.reactivationwindowdays", 90)
	v.SetDefault("membership.batchsize", 100)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development and tests
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelInfo},
		Membership: MembershipConfig{
			ContractNumberPrefix:    "LYQ",
			CoolingOffDays:          7,
			DefaultNoticePeriodDays: 30,
			OfferExpiryHours:        72,
			FreeFreezeDays:          30,
			LoyaltyTenureDays:       90,
			LoyaltyDiscountPercent:  25,
			LoyaltyDiscountMonths:   3,
			ReactivationWindowDays:  90,
			BatchSize:               100,
		},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User, c.Password, c.DBName, c.Host, c.Port, c.SSLMode,
	)
}

package config

import (
	"fmt"

	env "github.com/caarlos0/env/v11"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	JWTExpiryH  int    `env:"JWT_EXPIRY_HOURS" envDefault:"24"`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv      string `env:"APP_ENV" envDefault:"production"`

	// Policy knobs. Amounts are paise.
	SavingsWithdrawalLimit int64 `env:"SAVINGS_WITHDRAWAL_LIMIT" envDefault:"2500000"`
	InstallmentGraceDays   int   `env:"INSTALLMENT_GRACE_DAYS" envDefault:"7"`
	LatePenaltyPerPeriod   int64 `env:"LATE_PENALTY_PER_PERIOD" envDefault:"1000"`

	MaturitySweepIntervalS int `env:"MATURITY_SWEEP_INTERVAL_S" envDefault:"3600"`

	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

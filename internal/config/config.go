package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Spok95/fitclub-bot/internal/venue"
)

type Config struct {
	App struct {
		Env string
	} `mapstructure:"app"`

	Venue struct {
		UTCOffsetHours int `mapstructure:"utc_offset_hours"`
	} `mapstructure:"venue"`

	Telegram struct {
		Token       string
		PollTimeout int `mapstructure:"poll_timeout"`
	} `mapstructure:"telegram"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Postgres struct {
		DSN string
	} `mapstructure:"postgres"`

	Redis struct {
		Addr     string
		Password string
		DB       int
	} `mapstructure:"redis"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Attendance struct {
		LockTTL  time.Duration `mapstructure:"lock_ttl"`
		LockWait time.Duration `mapstructure:"lock_wait"`
	} `mapstructure:"attendance"`

	Notify struct {
		Timeout time.Duration
	} `mapstructure:"notify"`
}

func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	// APP_POSTGRES_DSN, APP_TELEGRAM_TOKEN и т.д.
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.env", "prod")
	v.SetDefault("venue.utc_offset_hours", venue.DefaultUTCOffsetHours)
	v.SetDefault("telegram.poll_timeout", 30)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("attendance.lock_ttl", 5*time.Second)
	v.SetDefault("attendance.lock_wait", 2*time.Second)
	v.SetDefault("notify.timeout", 10*time.Second)

	var c Config
	if err := v.ReadInConfig(); err != nil {
		return c, err
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}

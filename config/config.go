package config

import "github.com/spf13/viper"

type Config struct {
	Addr            string
	DSN             string
	JWTSecret       string
	WarmUnreadCache bool
}

// Load reads configuration from the environment with sensible defaults.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ADDR", ":8000")
	v.SetDefault("DB_DSN", "admin:12345678@tcp(127.0.0.1:3306)/taskdbgo?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("JWT_SECRET", "supersecretkey")
	v.SetDefault("WARM_UNREAD_CACHE", true)

	return &Config{
		Addr:            v.GetString("ADDR"),
		DSN:             v.GetString("DB_DSN"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		WarmUnreadCache: v.GetBool("WARM_UNREAD_CACHE"),
	}
}

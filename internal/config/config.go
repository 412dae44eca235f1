package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	DBMaxConns  int    `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns  int    `env:"DB_MIN_CONNS" envDefault:"1"`

	MigrateOnStart bool `env:"MIGRATE_ON_START" envDefault:"true"`

	JWTSecret             string `env:"JWT_SECRET"`
	AnonSessionTTLMinutes int    `env:"ANON_SESSION_TTL_MINUTES" envDefault:"1440"`
	CookieSecure          bool   `env:"COOKIE_SECURE" envDefault:"false"`

	// Proxies cuyo X-Forwarded-For se acepta; vacio usa la IP de la conexion.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Limite de sesiones anonimas por IP.
	SessionRateLimitWindowSeconds int `env:"SESSION_RATE_LIMIT_WINDOW_SECONDS" envDefault:"600"`
	SessionRateLimitMax           int `env:"SESSION_RATE_LIMIT_MAX" envDefault:"20"`

	// Comportamiento heredado del calculo de puntajes; ambos apagados por defecto.
	ScoringRejectZero         bool `env:"SCORING_REJECT_ZERO" envDefault:"false"`
	ScoringRejectExtraAnswers bool `env:"SCORING_REJECT_EXTRA_ANSWERS" envDefault:"false"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	DatabaseURL string `env:"DATABASE_URL"`

	Omise     Omise     `envPrefix:"OMISE_"`
	CORS      CORS      `envPrefix:"CORS_"`
	RateLimit RateLimit `envPrefix:"RATE_LIMIT_"`
}

type Omise struct {
	BaseApiURL string `env:"BASE_API_URL" envDefault:"https://api.omise.co"`
	PublicKey  string `env:"PUBLIC_KEY"`
	SecretKey  string `env:"SECRET_KEY"`
	// TrustWebhookPayload reconciles against the webhook's embedded charge
	// instead of re-fetching it from the processor. Off by default: only
	// the re-fetch is guaranteed fresh.
	TrustWebhookPayload bool `env:"TRUST_WEBHOOK_PAYLOAD" envDefault:"false"`
}

type CORS struct {
	AllowOrigin string `env:"ALLOW_ORIGIN" envDefault:"https://order.smobu.cloud"`
}

type RateLimit struct {
	Requests      int `env:"REQUESTS" envDefault:"100"`
	WindowMinutes int `env:"WINDOW_MINUTES" envDefault:"15"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"5000"`
}

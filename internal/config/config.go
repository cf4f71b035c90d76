package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	Currency    string `env:"CURRENCY" envDefault:"USD"`

	Database  Database  `envPrefix:"DB_"`
	Auth      Auth      `envPrefix:"AUTH_"`
	Loyalty   Loyalty   `envPrefix:"LOYALTY_"`
	Paypal    Paypal    `envPrefix:"PAYPAL_"`
	BrainTree Braintree `envPrefix:"BRAINTREE_"`
}

type Database struct {
	Driver string `env:"DRIVER" envDefault:"sqlite"` // sqlite | mysql | postgres
	URL    string `env:"URL" envDefault:"dryclean.db"`
}

type Auth struct {
	JWTSecret string        `env:"JWT_SECRET" envDefault:"dryclean_pos_secret"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`
}

type Loyalty struct {
	ExpirySweepInterval time.Duration `env:"EXPIRY_SWEEP_INTERVAL" envDefault:"1h"`
}

type Paypal struct {
	BaseApiURL   string `env:"BASE_API_URL" envDefault:"https://api-m.sandbox.paypal.com"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	WebhookID    string `env:"WEBHOOK_ID"`
}

type Braintree struct {
	Environment string `env:"ENVIRONMENT" envDefault:"sandbox"`
	MerchantID  string `env:"MERCHANT_ID"`
	PublicKey   string `env:"PUBLIC_KEY"`
	PrivateKey  string `env:"PRIVATE_KEY"`
}

// Enabled reports whether tokenized card charges can be sent to Braintree.
func (b Braintree) Enabled() bool {
	return b.MerchantID != "" && b.PublicKey != "" && b.PrivateKey != ""
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
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

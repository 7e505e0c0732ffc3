package main

import "fmt"

type Settings struct {
	Port     int    `env:"PORT,default=3001"`
	BasePath string `env:"BASE_PATH,default="`

	ClientURL   string `env:"CLIENT_URL,default=http://localhost:3000"`
	LogEncoding string `env:"LOG_ENCODING,default=console"`

	SendBufferSize      int `env:"SEND_BUFFER_SIZE,default=64"`
	PingIntervalSeconds int `env:"PING_INTERVAL_SECONDS,default=25"`

	// JWTSecret enables token checking on the authenticate event when set.
	JWTSecret string `env:"JWT_SECRET"`

	DatabaseURL      string `env:"DATABASE_URL"`
	DatabaseMaxConns int    `env:"DATABASE_MAX_CONNS,default=10"`

	MongoURI      string `env:"MONGODB_URI"`
	MongoDatabase string `env:"MONGODB_DATABASE,default=gathr"`

	RazorpayKeySecret string `env:"RAZORPAY_KEY_SECRET"`
}

func (s Settings) Validate() error {
	if s.SendBufferSize <= 0 {
		return fmt.Errorf("SEND_BUFFER_SIZE must be positive, got %d", s.SendBufferSize)
	}

	if s.PingIntervalSeconds <= 0 {
		return fmt.Errorf("PING_INTERVAL_SECONDS must be positive, got %d", s.PingIntervalSeconds)
	}

	return nil
}

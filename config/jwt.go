package config

import "time"

const defaultJWTSecret = "your-secret-key-change-this-in-production"

var JWTSecret []byte
var JWTExpiration time.Duration

func init() {
	loadJWT()
}

// loadJWT reads the signing settings. Load calls it again after .env is read.
func loadJWT() {
	JWTSecret = []byte(envString("JWT_SECRET", defaultJWTSecret))
	expiration, err := envDuration("JWT_EXPIRATION", 24*time.Hour)
	if err != nil || expiration <= 0 {
		expiration = 24 * time.Hour
	}
	JWTExpiration = expiration
}

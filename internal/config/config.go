package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Secrets for the access and refresh tokens are
// kept separate so that a leaked refresh secret cannot forge access tokens.
type Config struct {
	Env              string // application environment (e.g. "dev", "prod")
	Port             string // HTTP port to listen on
	MongoURI         string // MongoDB connection string
	MongoDB          string // MongoDB database name
	ClientURL        string // origin allowed for CORS / checkout redirects
	JWTAccessSecret  string // secret used to sign access tokens
	JWTRefreshSecret string // secret used to sign refresh tokens
	AccessTTLMin     int    // access token time-to-live in minutes
	RefreshTTLDays   int    // refresh token time-to-live in days
	BcryptCost       int    // bcrypt cost for password hashing
	AWSRegion        string // S3 bucket region
	AWSAccessKey     string // S3 access key id
	AWSSecretKey     string // S3 secret access key
	AWSBucket        string // S3 bucket holding product images
	StripeKey        string // Stripe secret API key
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message. Token lifetimes
// default to 1 day for access and 30 days for refresh.
func Load() Config {
	return Config{
		Env:              getenv("APP_ENV", "dev"),
		Port:             must("APP_PORT"),
		MongoURI:         must("MONGO_URI"),
		MongoDB:          getenv("MONGO_DB", "audioshop"),
		ClientURL:        getenv("CLIENT_URL", "http://localhost:5173"),
		JWTAccessSecret:  must("JWT_ACCESS_SECRET"),
		JWTRefreshSecret: must("JWT_REFRESH_SECRET"),
		AccessTTLMin:     getenvInt("ACCESS_TOKEN_TTL_MIN", 24*60),
		RefreshTTLDays:   getenvInt("REFRESH_TOKEN_TTL_DAYS", 30),
		BcryptCost:       getenvInt("BCRYPT_COST", 10),
		AWSRegion:        must("AWS_S3_REGION"),
		AWSAccessKey:     must("AWS_S3_ACCESS_KEY"),
		AWSSecretKey:     must("AWS_S3_SECRET_KEY"),
		AWSBucket:        must("AWS_S3_BUCKET_NAME"),
		StripeKey:        must("STRIPE_KEY"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// getenv returns the variable's value or a default when unset.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getenvInt is like getenv but converts the value into an integer. Invalid
// integers are fatal since silently falling back would mask typos.
func getenvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

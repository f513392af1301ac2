package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	AIAPIKey    string
	GenModel    string
	BraveAPIKey string
	SecretKey   string
	MaxUploadMB int
	WebDir      string
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		AIAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GenModel:    getEnv("GEN_MODEL", "gemini-1.5-flash"),
		BraveAPIKey: getEnv("BRAVE_API_KEY", ""),
		SecretKey:   getEnv("SECRET_KEY", ""),
		MaxUploadMB: getEnvInt("MAX_UPLOAD_MB", 16),
		WebDir:      getEnv("WEB_DIR", "./web"),
	}

	if cfg.SecretKey == "" {
		cfg.SecretKey = randomSecret()
		log.Println("WARN: SECRET_KEY not set, generated a random one; sessions won't survive restarts")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("could not generate session secret: %v", err)
	}
	return hex.EncodeToString(buf)
}

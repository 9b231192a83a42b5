package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config 구조체 - 모든 환경변수를 담음
type Config struct {
	// Server
	Port            string
	CORSAllowOrigin string
	MaxRequestBytes int64

	// Prompt
	LogPrompts bool
}

const defaultMaxRequestBytes = 10 << 20

// LoadConfig - 환경변수 로드
func LoadConfig() (*Config, error) {
	// .env 파일 로드 (있으면)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env file not found, using environment variables")
	}

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	log.Println("✅ Configuration loaded successfully")
	log.Printf("   Port: %s", cfg.Port)
	log.Printf("   CORS origin: %s", cfg.CORSAllowOrigin)
	log.Printf("   Max request: %d bytes (log prompts: %v)", cfg.MaxRequestBytes, cfg.LogPrompts)

	return cfg, nil
}

// FromEnv builds a Config from the current process environment without touching .env files.
func FromEnv() (*Config, error) {
	maxBytes := int64(defaultMaxRequestBytes)
	if raw := os.Getenv("MAX_REQUEST_BYTES"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("MAX_REQUEST_BYTES: %w", err)
		}
		maxBytes = parsed
	}

	logPrompts := false
	if raw := os.Getenv("LOG_PROMPTS"); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			logPrompts = parsed
		}
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: getEnv("CORS_ALLOW_ORIGIN", "*"),
		MaxRequestBytes: maxBytes,
		LogPrompts:      logPrompts,
	}

	// 필수 환경변수 검증
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate - 필수 환경변수 검증
func (c *Config) validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}
	if c.MaxRequestBytes <= 0 {
		return fmt.Errorf("MAX_REQUEST_BYTES must be positive")
	}
	if strings.TrimSpace(c.CORSAllowOrigin) == "" {
		return fmt.Errorf("CORS_ALLOW_ORIGIN must not be blank")
	}
	return nil
}

// getEnv - 환경변수 가져오기 (기본값 지원)
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Addr - 서버 listen 주소
func (c *Config) Addr() string {
	return ":" + c.Port
}

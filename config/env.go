package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Redis      RedisConfig
	DB         DBConfig
	Auth       AuthConfig
	Restaurant RestaurantConfig
	POS        POSConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

type AuthConfig struct {
	SharedPassword string
	TokenTTLHours  int
}

type RestaurantConfig struct {
	Name         string
	RestaurantID string
}

type POSConfig struct {
	TableCount        int
	MaxMenuPrice      float64
	PrintDelaySeconds int
	ListenAddr        string
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	tableCount, _ := strconv.Atoi(getEnv("POS_TABLE_COUNT", "14"))
	maxMenuPrice, _ := strconv.ParseFloat(getEnv("POS_MAX_MENU_PRICE", "10000"), 64)
	printDelay, _ := strconv.Atoi(getEnv("POS_PRINT_DELAY_SECONDS", "1"))
	tokenTTL, _ := strconv.Atoi(getEnv("AUTH_TOKEN_TTL_HOURS", "24"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	return Config{
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "annapurna"),
		},
		Auth: AuthConfig{
			SharedPassword: getEnv("AUTH_SHARED_PASSWORD", "annapurna123"),
			TokenTTLHours:  tokenTTL,
		},
		Restaurant: RestaurantConfig{
			Name:         getEnv("RESTAURANT_NAME", "Annapurna Restaurant"),
			RestaurantID: getEnv("RESTAURANT_ID", "annapurna-main"),
		},
		POS: POSConfig{
			TableCount:        tableCount,
			MaxMenuPrice:      maxMenuPrice,
			PrintDelaySeconds: printDelay,
			ListenAddr:        getEnv("LISTEN_ADDR", ":8080"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

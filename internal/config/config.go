// Package config предоставляет структуры и функцию для парсинга и загрузки конфига.
//
// Конфиг читается из yaml-файла по пути CONFIG_PATH, значения могут быть
// переопределены переменными окружения — секреты (ключ провайдера, секреты
// вебхуков, JWT) никогда не хранятся в коде.
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек.
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQConnection      `yaml:"rabbitmq_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Freemium                `yaml:"freemium"`
	Billing                 `yaml:"billing"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP    string        `yaml:"addresshttp" env:"ADDRESS_HTTP" env-default:":8080"`
	TimeoutHTTP    time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env-default:"60s"`
	FrontendOrigin string        `yaml:"frontend_origin" env:"FRONTEND_ORIGIN" env-default:"http://localhost:5173"`
}

// RedisConnection структура для настройки подключения к redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"ADDRESS_REDIS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env-default:"0"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// RabbitMQConnection структура для настройки подключения к RabbitMQ.
type RabbitMQConnection struct {
	ConnectionString string        `yaml:"connection_string" env:"RABBITMQ_CONNECTION_STRING"`
	ConnectRetries   int           `yaml:"connect_retries" env-default:"5"`
	ConnectDelay     time.Duration `yaml:"connect_delay" env-default:"3s"`
}

// JWTToken структура для работы с jwt-токеном.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"1h"`
}

// Freemium структура с лимитами бесплатного тарифа.
type Freemium struct {
	FreeAssetLimit int `yaml:"free_asset_limit" env:"FREE_ASSET_LIMIT" env-default:"10"`
	FreeUserLimit  int `yaml:"free_user_limit" env:"FREE_USER_LIMIT" env-default:"100"`
}

// Billing структура с настройками платёжного провайдера.
// Два разных секрета вебхуков: по одному на каждую конечную точку.
type Billing struct {
	APIKey                    string        `yaml:"api_key" env:"BILLING_API_KEY"`
	APIURL                    string        `yaml:"api_url" env:"BILLING_API_URL"`
	PriceID                   string        `yaml:"price_id" env:"BILLING_PRICE_ID"`
	CheckoutWebhookSecret     string        `yaml:"checkout_webhook_secret" env:"BILLING_CHECKOUT_WEBHOOK_SECRET"`
	SubscriptionWebhookSecret string        `yaml:"subscription_webhook_secret" env:"BILLING_SUBSCRIPTION_WEBHOOK_SECRET"`
	PendingSignupTTL          time.Duration `yaml:"pending_signup_ttl" env-default:"24h"`
}

// MustLoad функция для загрузки конфига, завершает процесс при ошибке.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

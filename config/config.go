package config

import (
	"encoding/json"
	"log"
	"os"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Redis    RedisConfig    `json:"redis"`
	Kafka    KafkaConfig    `json:"kafka"`
	Auth     AuthConfig     `json:"auth"`
	SMTP     SMTPConfig     `json:"smtp"`
	Routing  RoutingConfig  `json:"routing"`
}

type ServerConfig struct {
	Addr string `json:"addr"`
}

type DatabaseConfig struct {
	DSN string `json:"dsn"`
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
}

type KafkaConfig struct {
	Brokers   []string `json:"brokers"`
	Topic     string   `json:"topic"`
	GroupID   string   `json:"group_id"`
	Username  string   `json:"username"`
	Password  string   `json:"password"`
	Mechanism string   `json:"mechanism"` // SCRAM-SHA-256, SCRAM-SHA-512 or empty for PLAIN
	UseTLS    bool     `json:"use_tls"`
	CertFile  string   `json:"cert_file"`
	KeyFile   string   `json:"key_file"`
	CAFile    string   `json:"ca_file"`
}

type AuthConfig struct {
	JWTSecret     string `json:"jwt_secret"`
	TokenExpiry   int    `json:"token_expiry"`   // in hours
	RefreshExpiry int    `json:"refresh_expiry"` // in hours
}

type SMTPConfig struct {
	Host        string `json:"host"`
	Port        string `json:"port"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	FromName    string `json:"from_name"`
	FromAddress string `json:"from_address"`
}

type RoutingConfig struct {
	Policy string `json:"policy"` // least_busy or round_robin
}

func LoadConfig() (Config, error) {
	path := os.Getenv("HELPDESK_CONFIG")
	if path == "" {
		path = "config/config.json"
	}
	return LoadConfigFrom(path)
}

func LoadConfigFrom(path string) (config Config, err error) {
	file, err := os.Open(path)
	if err != nil {
		return config, err
	}
	defer func(file *os.File) {
		closeErr := file.Close()
		if closeErr != nil {
			log.Printf("Error closing config file: %v", closeErr)
		}
	}(file)

	decoder := json.NewDecoder(file)
	if err = decoder.Decode(&config); err != nil {
		return config, err
	}

	if config.Server.Addr == "" {
		config.Server.Addr = ":8080"
	}
	if config.Routing.Policy == "" {
		config.Routing.Policy = "least_busy"
	}
	if config.Kafka.Topic == "" {
		config.Kafka.Topic = "helpdesk.events"
	}
	if config.Kafka.GroupID == "" {
		config.Kafka.GroupID = "helpdesk"
	}
	return config, nil
}

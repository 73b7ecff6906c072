package configuration

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type MongoConfig struct {
	Uri                string `json:"uri"`
	Database           string `json:"database"`
	UsersCollection    string `json:"usersCollection"`
	ChatsCollection    string `json:"chatsCollection"`
	MessagesCollection string `json:"messagesCollection"`
	SocketRoute        string `json:"socketRoute"`
}

type ServerConfig struct {
	AppPort    int `json:"app_port"`
	SocketPort int `json:"socket_port"`
}

type AuthConfig struct {
	JwtSecret string `json:"jwt_secret"`
}

type Config struct {
	Mongo  MongoConfig  `json:"mongo"`
	Server ServerConfig `json:"server"`
	Auth   AuthConfig   `json:"auth"`
}

func LoadConfig(config_path string) (*Config, error) {
	// A missing .env is fine in deployed environments where the process
	// environment is populated by the platform.
	_ = godotenv.Load()

	file, err := os.ReadFile(config_path)
	if err != nil {
		return nil, err
	}

	var config Config
	err = json.Unmarshal(file, &config)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(&config)

	return &config, nil
}

// applyEnvOverrides lets deployment secrets trump the checked-in config file.
func applyEnvOverrides(config *Config) {
	if uri := os.Getenv("CHATTR_MONGO_URI"); uri != "" {
		config.Mongo.Uri = uri
	}
	if database := os.Getenv("CHATTR_MONGO_DATABASE"); database != "" {
		config.Mongo.Database = database
	}
	if secret := os.Getenv("CHATTR_JWT_SECRET"); secret != "" {
		config.Auth.JwtSecret = secret
	}
	if port := os.Getenv("CHATTR_APP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.AppPort = p
		}
	}
	if port := os.Getenv("CHATTR_SOCKET_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.SocketPort = p
		}
	}
}

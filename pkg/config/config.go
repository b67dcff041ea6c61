package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	VK       VKConfig       `mapstructure:"vk" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	OpenAI   OpenAIConfig   `mapstructure:"openai" validate:"required"`
	Bot      BotConfig      `mapstructure:"bot" validate:"required"`
}

type VKConfig struct {
	GroupToken   string `mapstructure:"group_token" validate:"required"`
	ServiceToken string `mapstructure:"service_token" validate:"required"`
	GroupID      int    `mapstructure:"group_id" validate:"required,gt=0"`
}

type DatabaseConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	SSLMode     string `mapstructure:"sslmode"`
	UseInMemory bool   `mapstructure:"use_in_memory"`
}

type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key" validate:"required"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens" validate:"gt=0"`
	Temperature float64 `mapstructure:"temperature" validate:"gte=0"`
}

type BotConfig struct {
	AdminPassphrase    string `mapstructure:"admin_passphrase" validate:"required"`
	SubscriptionSample int    `mapstructure:"subscription_sample" validate:"gt=0"`
	PostsPerGroup      int    `mapstructure:"posts_per_group" validate:"gt=0"`
	PageSize           int    `mapstructure:"page_size" validate:"gt=0"`
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		fmt.Sscanf(u.Port(), "%d", &port)
	}

	// Remove leading slash from path to get database name
	dbName := strings.TrimPrefix(u.Path, "/")

	return DatabaseConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   dbName,
		SSLMode:  "disable",
	}, nil
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.use_in_memory", false)
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 300)
	v.SetDefault("openai.temperature", 0.0)
	v.SetDefault("bot.subscription_sample", 100)
	v.SetDefault("bot.posts_per_group", 10)
	v.SetDefault("bot.page_size", 10)

	// Enable environment variable support
	v.AutomaticEnv()

	// Read the config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Check for DATABASE_URL environment variable
	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %v", err)
		}
		config.Database = dbConfig
	}

	// Get other environment variables
	if token := v.GetString("VK_GROUP_TOKEN"); token != "" {
		config.VK.GroupToken = token
	}

	if token := v.GetString("VK_SERVICE_TOKEN"); token != "" {
		config.VK.ServiceToken = token
	}

	if apiKey := v.GetString("OPENAI_API_KEY"); apiKey != "" {
		config.OpenAI.APIKey = apiKey
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

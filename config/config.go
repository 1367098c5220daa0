package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 参考后端的运行配置，来自环境变量（可选 .env）
type Config struct {
	Addr string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	UploadDir       string
	UploadURLPrefix string

	LogLevel    string
	Debug       bool
	AutoMigrate bool
	// Swagger 为 true 时挂载 /swagger/*any
	Swagger bool

	// DemoUserID 非空时 devserver 额外启动一个客户端会话打印推送，便于联调
	DemoUserID   uint64
	PollInterval time.Duration
}

// Load 读取 .env（不存在时忽略）并从环境变量构建配置
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Addr:            getEnv("SN_ADDR", ":6789"),
		DBHost:          getEnv("DB_HOST", "127.0.0.1"),
		DBPort:          getEnvAsInt("DB_PORT", 3306),
		DBUser:          getEnv("DB_USER", "root"),
		DBPassword:      getEnv("DB_PASSWORD", ""),
		DBName:          getEnv("DB_NAME", "social_db"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvAsInt("REDIS_DB", 0),
		UploadDir:       getEnv("UPLOAD_DIR", "./uploads/comment"),
		UploadURLPrefix: getEnv("UPLOAD_URL_PREFIX", "/uploads/comment"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Debug:           getEnvAsBool("DEBUG", false),
		AutoMigrate:     getEnvAsBool("AUTO_MIGRATE", true),
		Swagger:         getEnvAsBool("SWAGGER", true),
		DemoUserID:      uint64(getEnvAsInt("DEMO_USER_ID", 0)),
		PollInterval:    getEnvAsDuration("POLL_INTERVAL", 30*time.Second),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DSN mysql 连接串
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func (c *Config) validate() error {
	if c.DBHost == "" || c.DBUser == "" || c.DBName == "" {
		return errors.New("数据库配置不完整")
	}
	if c.DBPort <= 0 {
		return fmt.Errorf("DB_PORT 非法: %d", c.DBPort)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultVal int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	valStr := getEnv(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	valStr := getEnv(key, "")
	if val, err := time.ParseDuration(valStr); err == nil {
		return val
	}
	return defaultVal
}

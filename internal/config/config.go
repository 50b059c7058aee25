package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	ServerPort string
	Debug      bool

	// Simulation
	TickInterval time.Duration
	AutoStart    bool
	VehicleIDs   []string
	PackID       string
	ModelName    string
	RandomSeed   int64 // 0 表示按时间取种子

	// Export archive (空则不启用)
	DatabaseURL string

	// MQTT (空则不启用)
	MQTTURL       string
	MQTTBaseTopic string
}

func Load() (*Config, error) {
	// 尝试加载 .env 文件（可选）
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:    getEnv("PORT", "4000"),
		Debug:         getEnvBool("DEBUG", false),
		TickInterval:  time.Duration(getEnvInt("TICK_INTERVAL_MS", 2000)) * time.Millisecond,
		AutoStart:     getEnvBool("AUTO_START", true),
		VehicleIDs:    getEnvList("VEHICLE_IDS", []string{"BMW-IX-2024-001"}),
		PackID:        getEnv("BATTERY_PACK_ID", "HVB-GEN5-096S"),
		ModelName:     getEnv("MODEL_NAME", "BMW iX xDrive50"),
		RandomSeed:    int64(getEnvInt("RANDOM_SEED", 0)),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		MQTTURL:       getEnv("MQTT_URL", ""),
		MQTTBaseTopic: getEnv("MQTT_BASE_TOPIC", "voltgazer"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.TickInterval <= 0 {
		return errors.New("TICK_INTERVAL_MS must be > 0")
	}
	if len(c.VehicleIDs) == 0 {
		return errors.New("VEHICLE_IDS must name at least one vehicle")
	}
	if strings.ContainsAny(c.MQTTBaseTopic, "#+") {
		return errors.New("MQTT_BASE_TOPIC must not contain wildcards")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Baselinker BaselinkerConfig
	Sync       SyncConfig
	Kafka      KafkaConfig
	Observ     ObservabilityConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type BaselinkerConfig struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
}

type SyncConfig struct {
	Interval        time.Duration
	SummaryInterval time.Duration
	RateDelay       time.Duration
	OrderPageSize   int
	ListPageSize    int
	DetailBatchSize int
	SweepDepth      int
}

type KafkaConfig struct {
	Brokers     []string
	TopicOrders string
}

type ObservabilityConfig struct {
	JaegerEndpoint string
}

func Load() *Config {
	_ = godotenv.Load()

	syncInterval, _ := strconv.Atoi(getEnv("SYNC_INTERVAL_SECONDS", "30"))
	summaryInterval, _ := strconv.Atoi(getEnv("SUMMARY_INTERVAL_SECONDS", "300"))
	rateDelayMs, _ := strconv.Atoi(getEnv("API_RATE_DELAY_MS", "500"))
	apiTimeout, _ := strconv.Atoi(getEnv("API_TIMEOUT_SECONDS", "30"))
	orderPageSize, _ := strconv.Atoi(getEnv("ORDER_PAGE_SIZE", "100"))
	listPageSize, _ := strconv.Atoi(getEnv("PRODUCT_LIST_PAGE_SIZE", "1000"))
	detailBatchSize, _ := strconv.Atoi(getEnv("PRODUCT_DETAIL_BATCH_SIZE", "600"))
	sweepDepth, _ := strconv.Atoi(getEnv("DELETE_SWEEP_DEPTH", "100"))

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Baselinker: BaselinkerConfig{
			Endpoint: getEnv("BASELINKER_ENDPOINT", "https://api.baselinker.com/connector.php"),
			Token:    getEnv("BASELINKER_TOKEN", ""),
			Timeout:  time.Duration(apiTimeout) * time.Second,
		},
		Sync: SyncConfig{
			Interval:        time.Duration(syncInterval) * time.Second,
			SummaryInterval: time.Duration(summaryInterval) * time.Second,
			RateDelay:       time.Duration(rateDelayMs) * time.Millisecond,
			OrderPageSize:   orderPageSize,
			ListPageSize:    listPageSize,
			DetailBatchSize: detailBatchSize,
			SweepDepth:      sweepDepth,
		},
		Kafka: KafkaConfig{
			Brokers:     strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			TopicOrders: getEnv("KAFKA_TOPIC_ORDER_EVENTS", "order-events"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		},
	}

	log.Printf("Config loaded: env=%s, port=%s, sync_interval=%s", cfg.Server.Env, cfg.Server.Port, cfg.Sync.Interval)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

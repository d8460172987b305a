package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	AppEnv       string
	IsProduction bool

	Port       string
	DBPath     string
	UploadsDir string

	// SeedDemoData controls whether an empty store is populated with the
	// demo conversations on startup.
	SeedDemoData bool

	// Agent tunables. Defaults are the shipped behavior: 500ms debounce,
	// 2s think delay, reply threshold drawn from [4,5], 70% text replies.
	AgentDebounceMS      int
	AgentThinkMS         int
	AgentThresholdMin    int
	AgentThresholdMax    int
	AgentTextProbability float64

	RateLimitWindowSeconds int
	RateLimitCapacity      int

	ChatCacheTTLSeconds int
	ChatCacheMaxItems   int
)

func loadAppEnv() {
	AppEnv = os.Getenv("APP_ENV")

	// do not load .env file in production
	if AppEnv == "production" {
		return
	}

	// .env is optional for local runs and absent under go test
	_ = godotenv.Load()
}

func init() {
	loadAppEnv()

	AppEnv = os.Getenv("APP_ENV")
	if AppEnv == "" {
		AppEnv = "development"
	}
	IsProduction = AppEnv == "production"

	Port = os.Getenv("PORT")
	if Port == "" {
		Port = "8080"
	}
	DBPath = os.Getenv("DB_PATH")
	if DBPath == "" {
		DBPath = "banter.db"
	}
	UploadsDir = os.Getenv("UPLOADS_DIR")
	if UploadsDir == "" {
		UploadsDir = "./uploads"
	}

	SeedDemoData = os.Getenv("SEED_DEMO_DATA") != "0"

	AgentDebounceMS = atoiOr(os.Getenv("AGENT_DEBOUNCE_MS"), 500)
	AgentThinkMS = atoiOr(os.Getenv("AGENT_THINK_MS"), 2000)
	AgentThresholdMin = atoiOr(os.Getenv("AGENT_THRESHOLD_MIN"), 4)
	AgentThresholdMax = atoiOr(os.Getenv("AGENT_THRESHOLD_MAX"), 5)
	AgentTextProbability = atofOr(os.Getenv("AGENT_TEXT_PROBABILITY"), 0.7)

	RateLimitWindowSeconds = atoiOr(os.Getenv("RATE_LIMIT_WINDOW_SECONDS"), 10)
	RateLimitCapacity = atoiOr(os.Getenv("RATE_LIMIT_CAPACITY"), 5)

	ChatCacheTTLSeconds = atoiOr(os.Getenv("CHAT_CACHE_TTL_SECONDS"), 600)
	ChatCacheMaxItems = atoiOr(os.Getenv("CHAT_CACHE_MAX_ITEMS"), 500)

	log.Printf("[config] AppEnv=%s Port=%s DBPath=%s seed=%v", AppEnv, Port, DBPath, SeedDemoData)
	log.Printf("[config] agent debounce=%dms think=%dms threshold=[%d,%d] textProb=%.2f",
		AgentDebounceMS, AgentThinkMS, AgentThresholdMin, AgentThresholdMax, AgentTextProbability)
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func atofOr(s string, def float64) float64 {
	if s == "" {
		return def
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return def
}

package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Search   SearchConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	ConsumerLogPath    string
	CorsAllowedOrigins string
	NatsURL            string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider string // "openai" or "ollama"
	LLMProvider       string // "openai" or "ollama"
	OpenAIAPIKey      string
	OpenAIEmbedModel  string // e.g. "text-embedding-ada-002"
	OpenAIChatModel   string // e.g. "gpt-4o"
	OllamaBaseURL     string
	OllamaEmbedModel  string // e.g. "nomic-embed-text"
	OllamaChatModel   string // e.g. "llama3"
}

type SearchConfig struct {
	SimilarityThreshold float64 // minimum cosine similarity for semantic hits
	ExternalTimeoutSec  int     // bound on embedding/generation calls
	EmbedTopicName      string  // pub/sub topic for the embedding pipeline
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			ConsumerLogPath:    getEnv("CONSUMER_LOG_FILE_PATH", "logs/consumer.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "openai"),
			LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
			OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
			OpenAIEmbedModel:  getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-ada-002"),
			OpenAIChatModel:   getEnv("OPENAI_CHAT_MODEL", "gpt-4o"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbedModel:  getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			OllamaChatModel:   getEnv("OLLAMA_CHAT_MODEL", "llama3"),
		},
		Search: SearchConfig{
			SimilarityThreshold: getEnvAsFloat("SEARCH_SIMILARITY_THRESHOLD", 0.2),
			ExternalTimeoutSec:  getEnvAsInt("SEARCH_EXTERNAL_TIMEOUT_SEC", 30),
			EmbedTopicName:      getEnv("EMBED_DOCUMENT_TOPIC_NAME", "EMBED_DOCUMENT_CONTENT"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

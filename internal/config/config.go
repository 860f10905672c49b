package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App   AppConfig
	Store StoreConfig
	Ai    AIConfig
	Match MatchConfig
	Keys  APIKeys
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type StoreConfig struct {
	// Provider selects the vector index driver: "pinecone" or "pgvector"
	Provider          string
	PineconeIndexHost string
	DBConnection      string
}

type AIConfig struct {
	EmbeddingProvider string // "huggingface" or "ollama"
	HuggingFaceURL    string
	OllamaBaseURL     string
	OllamaModel       string
	EmbedDimension    int
	EmbedMaxAttempts  int
	EmbedCacheTTLMin  int
}

type MatchConfig struct {
	// TopK is the over-fetch size for similarity queries. It must
	// materially exceed the expected result count because offline
	// candidates are filtered out after retrieval.
	TopK int
}

type APIKeys struct {
	HuggingFace string
	Pinecone    string
	JwtSecret   string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "4000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Store: StoreConfig{
			Provider:          getEnv("VECTOR_STORE", "pinecone"),
			PineconeIndexHost: getEnv("PINECONE_INDEX_HOST", ""),
			DBConnection:      getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "huggingface"),
			HuggingFaceURL:    getEnv("HUGGINGFACE_API_URL", "https://api-inference.huggingface.co/pipeline/feature-extraction/sentence-transformers/all-MiniLM-L6-v2"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			EmbedDimension:    getEnvAsInt("EMBED_DIMENSION", 384),
			EmbedMaxAttempts:  getEnvAsInt("EMBED_MAX_ATTEMPTS", 3),
			EmbedCacheTTLMin:  getEnvAsInt("EMBED_CACHE_TTL_MIN", 10),
		},
		Match: MatchConfig{
			TopK: getEnvAsInt("MATCH_TOP_K", 20),
		},
		Keys: APIKeys{
			HuggingFace: getEnv("HUGGINGFACE_API_KEY", ""),
			Pinecone:    getEnv("PINECONE_API_KEY", ""),
			JwtSecret:   getEnv("JWT_SECRET", ""),
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

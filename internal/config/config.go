package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config содержит конфигурацию приложения
type Config struct {
	RunAddress   string        // Адрес и порт запуска сервиса
	DatabaseURI  string        // URI подключения к БД состояния (черновики, счетчики)
	BackendURL   string        // Базовый URL backend-as-a-service
	APIURL       string        // Базовый URL REST API ресурсов
	BackendKey   string        // Анонимный ключ backend
	RealtimeURL  string        // URL websocket потока изменений
	JWTSecret    string        // Секретный ключ для JWT сессий
	SessionTTL   time.Duration // Время жизни сессии
	LogLevel     string        // Уровень логирования
	HTTPTimeout  time.Duration // Таймаут исходящих запросов к backend
	AllowedHosts []string      // Разрешенные CORS origins

	// Метаданные сайта
	SiteName  string
	SitePhone string
	SiteEmail string

	// Worker Pool конфигурация
	WorkerPoolSize  int // Количество воркеров realtime
	WorkerQueueSize int // Размер очереди каждого воркера

	// Расписание закрытия периода (cron); пусто - отключено
	ClosingSchedule string
}

// Load загружает конфигурацию из .env, переменных окружения и флагов
// Приоритет: env переменные > флаги > дефолтные значения
func Load() (*Config, error) {
	// .env опционален
	_ = godotenv.Load()

	cfg := &Config{
		SessionTTL:      12 * time.Hour,
		LogLevel:        "info",
		HTTPTimeout:     120 * time.Second,
		AllowedHosts:    []string{"*"},
		SiteName:        "Frete Console",
		WorkerPoolSize:  2,
		WorkerQueueSize: 64,
	}

	// Определяем флаги
	flag.StringVar(&cfg.RunAddress, "a", ":8080", "address and port to run server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "state database URI")
	flag.StringVar(&cfg.BackendURL, "b", "", "backend base URL")
	flag.Parse()

	applyEnv(cfg)

	// Валидация обязательных параметров
	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI is required (use -d flag or DATABASE_URI env)")
	}

	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("backend URL is required (use -b flag or BACKEND_URL env)")
	}

	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")
	if cfg.APIURL == "" {
		cfg.APIURL = cfg.BackendURL + "/api"
	}
	if cfg.RealtimeURL == "" {
		cfg.RealtimeURL = realtimeURLFromBackend(cfg.BackendURL)
	}

	return cfg, nil
}

// applyEnv переносит переменные окружения в конфигурацию
func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("RUN_ADDRESS"); ok {
		cfg.RunAddress = v
	}

	if v, ok := os.LookupEnv("DATABASE_URI"); ok {
		cfg.DatabaseURI = v
	}

	if v, ok := os.LookupEnv("BACKEND_URL"); ok {
		cfg.BackendURL = strings.TrimRight(v, "/")
	}

	if v, ok := os.LookupEnv("API_URL"); ok {
		cfg.APIURL = strings.TrimRight(v, "/")
	}

	if v, ok := os.LookupEnv("BACKEND_ANON_KEY"); ok {
		cfg.BackendKey = v
	}

	if v, ok := os.LookupEnv("BACKEND_REALTIME_URL"); ok {
		cfg.RealtimeURL = v
	}

	// JWT секрет (только из env, не из флагов для безопасности)
	if v, ok := os.LookupEnv("JWT_SECRET"); ok {
		cfg.JWTSecret = v
	} else {
		cfg.JWTSecret = "default-secret-key-change-in-production"
	}

	if v, ok := os.LookupEnv("SESSION_TTL"); ok {
		if ttl, err := time.ParseDuration(v); err == nil && ttl > 0 {
			cfg.SessionTTL = ttl
		}
	}

	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}

	if v, ok := os.LookupEnv("HTTP_TIMEOUT"); ok {
		if timeout, err := time.ParseDuration(v); err == nil && timeout > 0 {
			cfg.HTTPTimeout = timeout
		}
	}

	if v, ok := os.LookupEnv("ALLOWED_ORIGINS"); ok && v != "" {
		cfg.AllowedHosts = strings.Split(v, ",")
	}

	if v, ok := os.LookupEnv("SITE_NAME"); ok {
		cfg.SiteName = v
	}
	if v, ok := os.LookupEnv("SITE_PHONE"); ok {
		cfg.SitePhone = v
	}
	if v, ok := os.LookupEnv("SITE_EMAIL"); ok {
		cfg.SiteEmail = v
	}

	if v, ok := os.LookupEnv("WORKER_POOL_SIZE"); ok {
		if size, err := strconv.Atoi(v); err == nil && size > 0 {
			cfg.WorkerPoolSize = size
		}
	}

	if v, ok := os.LookupEnv("WORKER_QUEUE_SIZE"); ok {
		if size, err := strconv.Atoi(v); err == nil && size > 0 {
			cfg.WorkerQueueSize = size
		}
	}

	if v, ok := os.LookupEnv("CLOSING_SCHEDULE"); ok {
		cfg.ClosingSchedule = v
	}
}

// realtimeURLFromBackend строит websocket URL из базового URL backend
func realtimeURLFromBackend(backendURL string) string {
	u := strings.TrimRight(backendURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/realtime/v1/websocket"
}

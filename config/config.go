package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"pawphysio/version"
)

// Config holds PawPhysio runtime configuration.
type Config struct {
	LogLevel             string
	LogFilePath          string
	Port                 int
	DatabaseURL          string
	SQLitePragmasEnabled bool
	SQLiteBusyTimeoutMS  int
	SQLiteJournalMode    string
	SQLiteSynchronous    string
	SQLiteForeignKeys    bool
	SQLiteMaxOpenConns   int
	SQLiteMaxIdleConns   int
	SQLiteConnMaxIdleSec int
	SQLiteConnMaxLifeSec int

	// Auth
	JWTSecret       string
	TokenTTLHours   int
	BcryptCost      int
	AdminEmail      string
	AdminPassword   string
	DefaultLanguage string

	// SMTP / transactional email
	SMTPHost          string
	SMTPPort          int
	SMTPUser          string
	SMTPPassword      string
	MailFrom          string
	MailFromName      string
	SMTPTimeoutSec    int
	EmailStatsDays    int
	EmailSendDisabled bool

	// User-error capture pipeline
	CaptureEnabled   bool
	CaptureQueueSize int

	// Tunable limits
	GoroutineMonitorIntervalSeconds int
	GoroutineWarnThreshold          int
	MaxPageSize                     int

	CLIMode   bool
	CLIServer string // Server URL for CLI mode
}

// Settings is the global configuration instance populated from environment variables and flags.
var Settings *Config

func init() {
	// Optional .env file; a missing file is not an error.
	_ = godotenv.Load()

	Settings = &Config{
		LogLevel:             getEnv("LOG_LEVEL", "INFO"),
		LogFilePath:          getEnv("LOG_FILE", "./pawphysio.log"),
		Port:                 getEnvInt("PORT", 8088),
		DatabaseURL:          getEnv("DATABASE_URL", "pawphysio.db"),
		SQLitePragmasEnabled: getEnvBool("SQLITE_PRAGMAS_ENABLED", true),
		SQLiteBusyTimeoutMS:  getEnvInt("SQLITE_BUSY_TIMEOUT_MS", 5000),
		SQLiteJournalMode:    getEnv("SQLITE_JOURNAL_MODE", "WAL"),
		SQLiteSynchronous:    getEnv("SQLITE_SYNCHRONOUS", "NORMAL"),
		SQLiteForeignKeys:    getEnvBool("SQLITE_FOREIGN_KEYS", true),
		SQLiteMaxOpenConns:   getEnvInt("SQLITE_MAX_OPEN_CONNS", 1),
		SQLiteMaxIdleConns:   getEnvInt("SQLITE_MAX_IDLE_CONNS", 1),
		SQLiteConnMaxIdleSec: getEnvInt("SQLITE_CONN_MAX_IDLE_SECONDS", 300),
		SQLiteConnMaxLifeSec: getEnvInt("SQLITE_CONN_MAX_LIFETIME_SECONDS", 0),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		TokenTTLHours:   getEnvInt("TOKEN_TTL_HOURS", 72),
		BcryptCost:      getEnvInt("BCRYPT_COST", 10),
		AdminEmail:      getEnv("ADMIN_EMAIL", ""),
		AdminPassword:   getEnv("ADMIN_PASSWORD", ""),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "es"),

		SMTPHost:          getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:          getEnvInt("SMTP_PORT", 587),
		SMTPUser:          getEnv("SMTP_USER", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		MailFrom:          getEnv("MAIL_FROM", ""),
		MailFromName:      getEnv("MAIL_FROM_NAME", "PawPhysio"),
		SMTPTimeoutSec:    getEnvInt("SMTP_TIMEOUT_SECONDS", 15),
		EmailStatsDays:    getEnvInt("EMAIL_STATS_DAYS", 30),
		EmailSendDisabled: getEnvBool("EMAIL_SEND_DISABLED", false),

		CaptureEnabled:   getEnvBool("CAPTURE_ENABLED", true),
		CaptureQueueSize: getEnvInt("CAPTURE_QUEUE_SIZE", 1000),

		GoroutineMonitorIntervalSeconds: getEnvInt("GOROUTINE_MONITOR_INTERVAL_SECONDS", 30),
		GoroutineWarnThreshold:          getEnvInt("GOROUTINE_WARN_THRESHOLD", 1000),
		MaxPageSize:                     getEnvInt("MAX_PAGE_SIZE", 200),

		CLIMode: getEnvBool("CLI_MODE", false),
	}
}

// ParseFlags parses command-line flags, applies any overrides to the package-level Settings, and updates configuration accordingly.
// It also provides a custom usage message and handles --help (prints usage and exits) and --version (prints build info and exits).
func ParseFlags() {
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "PawPhysio - booking management service\n\n")
		fmt.Fprintf(out, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintln(out, "Options:")
		flag.PrintDefaults()
		fmt.Fprintln(out, "\nEnvironment variables:")
		fmt.Fprintln(out, "  LOG_LEVEL                         Log level (DEBUG, INFO, WARN, ERROR)")
		fmt.Fprintln(out, "  LOG_FILE                          Log file path (default ./pawphysio.log)")
		fmt.Fprintln(out, "  PORT                              HTTP server port (default 8088)")
		fmt.Fprintln(out, "  DATABASE_URL                      SQLite database path (default pawphysio.db)")
		fmt.Fprintln(out, "  SQLITE_PRAGMAS_ENABLED            Enable SQLite PRAGMAs (true/false, default true)")
		fmt.Fprintln(out, "  SQLITE_BUSY_TIMEOUT_MS            SQLite busy_timeout in milliseconds (default 5000)")
		fmt.Fprintln(out, "  SQLITE_JOURNAL_MODE               SQLite journal_mode (default WAL)")
		fmt.Fprintln(out, "  SQLITE_SYNCHRONOUS                SQLite synchronous (default NORMAL)")
		fmt.Fprintln(out, "  SQLITE_FOREIGN_KEYS               Enable SQLite foreign_keys (true/false, default true)")
		fmt.Fprintln(out, "  JWT_SECRET                        HMAC secret for API tokens (required in server mode)")
		fmt.Fprintln(out, "  TOKEN_TTL_HOURS                   API token lifetime in hours (default 72)")
		fmt.Fprintln(out, "  ADMIN_EMAIL / ADMIN_PASSWORD      Seed superadmin account on first start")
		fmt.Fprintln(out, "  DEFAULT_LANGUAGE                  Fallback notification language (default es)")
		fmt.Fprintln(out, "  SMTP_HOST / SMTP_PORT             SMTP server (default smtp.gmail.com:587)")
		fmt.Fprintln(out, "  SMTP_USER / SMTP_PASSWORD         SMTP credentials")
		fmt.Fprintln(out, "  MAIL_FROM / MAIL_FROM_NAME        Sender address and display name")
		fmt.Fprintln(out, "  SMTP_TIMEOUT_SECONDS              SMTP dial/send timeout (default 15)")
		fmt.Fprintln(out, "  EMAIL_STATS_DAYS                  Rolling window for email stats (default 30)")
		fmt.Fprintln(out, "  EMAIL_SEND_DISABLED               Record email sends without contacting SMTP (default false)")
		fmt.Fprintln(out, "  CAPTURE_ENABLED                   Enable user-error capture pipeline (default true)")
		fmt.Fprintln(out, "  CAPTURE_QUEUE_SIZE                Capture queue size (default 1000)")
		fmt.Fprintln(out, "  GOROUTINE_MONITOR_INTERVAL_SECONDS Interval seconds for goroutine monitor (default 30)")
		fmt.Fprintln(out, "  GOROUTINE_WARN_THRESHOLD          Goroutine count warning threshold (default 1000)")
		fmt.Fprintln(out, "  MAX_PAGE_SIZE                     Maximum page size for list endpoints (default 200)")
	}

	port := flag.Int("port", Settings.Port, "HTTP server port (overrides PORT)")
	db := flag.String("db", Settings.DatabaseURL, "SQLite database path (overrides DATABASE_URL)")
	sqlitePragmasEnabled := flag.Bool("sqlite-pragmas", Settings.SQLitePragmasEnabled, "Enable SQLite PRAGMAs (overrides SQLITE_PRAGMAS_ENABLED)")
	sqliteBusyTimeoutMS := flag.Int("sqlite-busy-timeout-ms", Settings.SQLiteBusyTimeoutMS, "SQLite busy_timeout in milliseconds (overrides SQLITE_BUSY_TIMEOUT_MS)")
	sqliteJournalMode := flag.String("sqlite-journal-mode", Settings.SQLiteJournalMode, "SQLite journal_mode (overrides SQLITE_JOURNAL_MODE)")
	sqliteSynchronous := flag.String("sqlite-synchronous", Settings.SQLiteSynchronous, "SQLite synchronous (overrides SQLITE_SYNCHRONOUS)")
	sqliteForeignKeys := flag.Bool("sqlite-foreign-keys", Settings.SQLiteForeignKeys, "Enable SQLite foreign_keys PRAGMA (overrides SQLITE_FOREIGN_KEYS)")
	logLevel := flag.String("log-level", Settings.LogLevel, "Log level: DEBUG, INFO, WARN, ERROR (overrides LOG_LEVEL)")
	logFile := flag.String("log-file", Settings.LogFilePath, "Log file path (overrides LOG_FILE)")
	captureEnabled := flag.Bool("capture", Settings.CaptureEnabled, "Enable user-error capture pipeline (overrides CAPTURE_ENABLED)")
	captureQueueSize := flag.Int("capture-queue-size", Settings.CaptureQueueSize, "Capture queue size (overrides CAPTURE_QUEUE_SIZE)")
	emailStatsDays := flag.Int("email-stats-days", Settings.EmailStatsDays, "Rolling window in days for email statistics (overrides EMAIL_STATS_DAYS)")
	maxPageSize := flag.Int("max-page-size", Settings.MaxPageSize, "Maximum page size for list endpoints (overrides MAX_PAGE_SIZE)")
	cliMode := flag.Bool("cli", Settings.CLIMode, "Run in CLI mode (HTTP client only, no database)")
	cliServer := flag.String("server", "http://localhost:8088", "Server URL for CLI mode")

	showHelp := flag.Bool("help", false, "Show help and exit")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetBuildInfo())
		os.Exit(0)
	}

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	Settings.Port = *port
	Settings.DatabaseURL = *db
	Settings.SQLitePragmasEnabled = *sqlitePragmasEnabled
	Settings.SQLiteBusyTimeoutMS = *sqliteBusyTimeoutMS
	Settings.SQLiteJournalMode = *sqliteJournalMode
	Settings.SQLiteSynchronous = *sqliteSynchronous
	Settings.SQLiteForeignKeys = *sqliteForeignKeys
	Settings.LogLevel = *logLevel
	Settings.LogFilePath = *logFile
	Settings.CaptureEnabled = *captureEnabled
	Settings.CaptureQueueSize = *captureQueueSize
	Settings.EmailStatsDays = *emailStatsDays
	Settings.MaxPageSize = *maxPageSize
	Settings.CLIMode = *cliMode
	Settings.CLIServer = *cliServer
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

package models

// BackendKind selects the storage/auth technology at runtime.
type BackendKind string

const (
	BackendLocal      BackendKind = "local"
	BackendDocument   BackendKind = "document"
	BackendRelational BackendKind = "relational"
)

// Valid reports whether k is a known backend kind.
func (k BackendKind) Valid() bool {
	switch k {
	case BackendLocal, BackendDocument, BackendRelational:
		return true
	}
	return false
}

// Config represents application configuration
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NSQ      NSQConfig
	JWT      JWTConfig
	Google   GoogleConfig
	Logger   LoggerConfig
}

// AppConfig contains application-specific configuration
type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	Version     string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

// StorageConfig selects the active backend and local data directory.
type StorageConfig struct {
	Backend BackendKind
	DataDir string
}

// DatabaseConfig contains PostgreSQL connection configuration
type DatabaseConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Database  string
	SSLMode   string
	MaxConns  int
	IdleConns int
}

// RedisConfig contains Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// NSQConfig contains NSQ daemon addresses for the change-event feed
type NSQConfig struct {
	NSQDAddress     string
	LookupdAddress  string
	ConsumerChannel string
}

// JWTConfig contains token signing configuration
type JWTConfig struct {
	Secret     string
	Expiration int // minutes
	Issuer     string
}

// GoogleConfig configures Google sign-in verification. When TokenInfoURL is
// empty the local backend falls back to a simulated profile.
type GoogleConfig struct {
	TokenInfoURL string
	ClientID     string
	Timeout      int // seconds
}

// LoggerConfig contains logger configuration
type LoggerConfig struct {
	Level    string
	FilePath string
}

package structs

import "time"

type Config struct {
	Server    *ServerConfig
	Cors      *CorsConfig
	Database  *DatabaseConfig
	Auth      *AuthConfig
	Cache     *CacheConfig
	Email     *EmailConfig
	RateLimit *RateLimitConfig
	Billing   *BillingConfig
	Scheduler *SchedulerConfig
}

type ServerConfig struct {
	AppName        string        // Rentkart
	Environment    string        // development, production
	Port           string        // :8082
	FrontendURL    string        // storefront base URL, used in email links and guard redirects
	ServerURL      string        // public API base URL
	CookieDomain   string        // cross-subdomain cookie scope in production
	ReadTimeout    time.Duration // in seconds
	WriteTimeout   time.Duration // in seconds
	IdleTimeout    time.Duration // in seconds
	MaxHeaderBytes int           // in bytes
}

type CorsConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	Insecure     bool
	MaxConns     int
	MinConns     int
	MaxLifetime  time.Duration
	MaxIdleTime  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type AuthConfig struct {
	AccessTokenSecret   string
	AccessTokenExpiry   time.Duration
	RefreshTokenSecret  string
	RefreshTokenExpiry  time.Duration
	RecoveryTokenSecret string
	RecoveryTokenExpiry time.Duration
	BlacklistCacheTTL   time.Duration
	CacheUserTTL        time.Duration
}

type CacheConfig struct {
	Address         string
	Username        string
	Password        string
	DB              int
	PoolSize        int
	MinIdleConns    int
	MaxIdleConns    int
	PoolTimeout     time.Duration
	IdleTimeout     time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxRetries      int
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
	CatalogTTL      time.Duration
}

type EmailConfig struct {
	ApiKey         string
	From           string
	SupportEmail   string
	OTPExpiry      time.Duration // verification code lifetime
	ResendCooldown time.Duration // minimum gap between two codes for one address
}

type RateLimitConfig struct {
	Enabled         bool
	AuthLimit       int
	AuthWindow      time.Duration
	AdminLimit      int
	AdminWindow     time.Duration
	ExpensiveLimit  int
	ExpensiveWindow time.Duration
	GeneralLimit    int
	GeneralWindow   time.Duration
}

// BillingConfig carries the tax and surcharge rates applied at checkout,
// plus fallbacks for templates that carry no pricing rows.
type BillingConfig struct {
	GSTRateBP               int           // basis points, 1800 = 18%
	InsuranceRateBP         int           // basis points, 500 = 5%
	DepositRateBP           int           // security deposit as a share of the subtotal
	DefaultLateFeeCentsHour int64         // fallback late fee when a template has no pricing row
	PaymentSimulationDelay  time.Duration // simulated payment processor latency
}

type SchedulerConfig struct {
	MarkLateRentals string // cron expression
	PurgeExpiredOTP string // cron expression
}

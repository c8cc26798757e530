package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the site server.
// It includes the environment, server port, page assets, the autocomplete
// provider, the submission transport, the optional cache and archive,
// and the delivery worker settings.
type Config struct {
	Env           string          `yaml:"env"`            // Env is the current environment: local, dev, prod.
	Port          int             `yaml:"port"`           // Port is the site server port.
	ComponentsDir string          `yaml:"components_dir"` // ComponentsDir holds the HTML fragments.
	Layout        string          `yaml:"layout"`         // Layout is the page skeleton the fragments are mounted into.
	SiteFile      string          `yaml:"site_file"`      // SiteFile is the YAML file with services, company and reviews.
	FragmentBase  string          `yaml:"fragment_base"`  // FragmentBase is the URL the page fetches fragments from.
	Provider      ProviderConfig  `yaml:"provider"`       // Provider configures address autocomplete.
	Form          FormConfig      `yaml:"form"`           // Form tunes the quote wizard.
	Transport     TransportConfig `yaml:"transport"`      // Transport configures quote delivery.
	Redis         RedisConfig     `yaml:"redis"`          // Redis holds the suggestion cache configuration.
	Database      PostgresConfig  `yaml:"postgres"`       // Database holds the quote archive configuration.
	Workers       int             `yaml:"workers"`        // The number of concurrent delivery workers.
	Interval      time.Duration   `yaml:"interval"`       // The duration between delivery polls.
}

// ProviderConfig selects and tunes the geocoding provider.
type ProviderConfig struct {
	Type      string `yaml:"type"`    // Type is geoapify, google or nominatim.
	APIKey    string `yaml:"api_key"` // APIKey is required for geoapify and google.
	RateLimit int    `yaml:"rate"`    // RateLimit is the geoapify request rate per second.
	Country   string `yaml:"country"` // Country is the ISO code suggestions are filtered to.
}

// FormConfig holds the timings of the quote form.
type FormConfig struct {
	Debounce   time.Duration `yaml:"debounce"`    // Debounce is the quiet period before an autocomplete query.
	MinQuery   int           `yaml:"min_query"`   // MinQuery is the shortest value sent to the provider.
	ResetDelay time.Duration `yaml:"reset_delay"` // ResetDelay is how long the success message stays.
}

// TransportConfig selects the submission transport.
type TransportConfig struct {
	Type      string `yaml:"type"`       // Type is relay or ses.
	RelayURL  string `yaml:"relay_url"`  // RelayURL is the mail relay endpoint.
	SESRegion string `yaml:"ses_region"` // SESRegion is the AWS region of SES.
	MailFrom  string `yaml:"mail_from"`  // MailFrom is the verified SES sender.
	MailTo    string `yaml:"mail_to"`    // MailTo receives the quote requests.
}

// RedisConfig holds the Redis connection settings. An empty Addr disables the cache.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
// An empty Host disables the archive.
type PostgresConfig struct {
	Host     string `yaml:"host"`                        // Host is the database server address.
	Port     string `yaml:"port"     env-default:"5432"` // Port is the database server port.
	User     string `yaml:"user"`                        // User is the database user.
	Password string `yaml:"password"`                    // Password is the database user's password.
	Name     string `yaml:"db_name"`                     // Name is the name of the database.
}

// MustLoad loads the configuration from the environment, after reading an
// optional .env file. It panics on malformed values.
func MustLoad() *Config {
	_ = godotenv.Load()

	port, err := strconv.Atoi(setDefaultEnv("HESTIA_PORT", "8080"))
	if err != nil {
		panic("failed to parse port for site server from configuration")
	}

	rate, err := strconv.Atoi(setDefaultEnv("HESTIA_PROVIDER_RATE", "5"))
	if err != nil {
		panic("failed to parse provider rate limit from configuration")
	}

	debounce, err := time.ParseDuration(setDefaultEnv("HESTIA_DEBOUNCE", "300ms"))
	if err != nil {
		panic("failed to parse debounce from configuration")
	}

	minQuery, err := strconv.Atoi(setDefaultEnv("HESTIA_MIN_QUERY", "3"))
	if err != nil {
		panic("failed to parse minimum query length from configuration, must be an integer type")
	}

	resetDelay, err := time.ParseDuration(setDefaultEnv("HESTIA_RESET_DELAY", "5s"))
	if err != nil {
		panic("failed to parse reset delay from configuration")
	}

	redisDB, err := strconv.Atoi(setDefaultEnv("REDIS_DB", "0"))
	if err != nil {
		panic("failed to parse redis database from configuration, must be an integer type")
	}

	cacheTTL, err := time.ParseDuration(setDefaultEnv("HESTIA_CACHE_TTL", "24h"))
	if err != nil {
		panic("failed to parse cache ttl from configuration")
	}

	workers, err := strconv.Atoi(setDefaultEnv("HESTIA_DELIVERY_WORKERS", "2"))
	if err != nil {
		panic("failed to parse workers from configuration, must be an integer type")
	}

	interval, err := time.ParseDuration(setDefaultEnv("HESTIA_DELIVERY_INTERVAL", "1m"))
	if err != nil {
		panic("failed to parse interval from configuration")
	}

	return &Config{
		Env:           setDefaultEnv("HESTIA_ENV", "production"),
		Port:          port,
		ComponentsDir: setDefaultEnv("HESTIA_COMPONENTS_DIR", "web/components"),
		Layout:        setDefaultEnv("HESTIA_LAYOUT", "web/layout.html"),
		SiteFile:      setDefaultEnv("HESTIA_SITE_FILE", "web/site.yaml"),
		FragmentBase:  setDefaultEnv("HESTIA_FRAGMENT_BASE_URL", fmt.Sprintf("http://localhost:%d/components", port)),
		Provider: ProviderConfig{
			Type:      setDefaultEnv("HESTIA_PROVIDER_TYPE", "geoapify"),
			APIKey:    os.Getenv("HESTIA_PROVIDER_KEY"),
			RateLimit: rate,
			Country:   setDefaultEnv("HESTIA_COUNTRY", "au"),
		},
		Form: FormConfig{
			Debounce:   debounce,
			MinQuery:   minQuery,
			ResetDelay: resetDelay,
		},
		Transport: TransportConfig{
			Type:      setDefaultEnv("HESTIA_TRANSPORT", "relay"),
			RelayURL:  os.Getenv("HESTIA_RELAY_URL"),
			SESRegion: setDefaultEnv("HESTIA_SES_REGION", "ap-southeast-2"),
			MailFrom:  os.Getenv("HESTIA_MAIL_FROM"),
			MailTo:    os.Getenv("HESTIA_MAIL_TO"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
			TTL:      cacheTTL,
		},
		Database: PostgresConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     setDefaultEnv("DB_PORT", "5432"),
			User:     os.Getenv("DB_USERNAME"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
		Workers:  workers,
		Interval: interval,
	}
}

func setDefaultEnv(key, override string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = override
	}

	return value
}

// Site is the editable content of the marketing site.
type Site struct {
	Company  Company          `mapstructure:"company"`
	Reviews  Reviews          `mapstructure:"reviews"`
	Services []models.Service `mapstructure:"services"`
}

// Company is the business contact block.
type Company struct {
	Name    string `mapstructure:"name"`
	Phone   string `mapstructure:"phone"`
	Email   string `mapstructure:"email"`
	Address string `mapstructure:"address"`
	Hours   string `mapstructure:"hours"`
	ABN     string `mapstructure:"abn"`
}

// Reviews is the Google review summary shown in the ribbon.
type Reviews struct {
	Rating float64 `mapstructure:"rating"`
	Total  int     `mapstructure:"total"`
	Link   string  `mapstructure:"link"`
}

// LoadSite reads the site content from a YAML file.
func LoadSite(path string) (*Site, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading site config: %w", err)
	}

	var site Site
	if err := v.Unmarshal(&site); err != nil {
		return nil, fmt.Errorf("failed to unmarshal site config: %w", err)
	}

	return &site, nil
}

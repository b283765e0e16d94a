package config

import (
	"flag"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var once sync.Once
var logger *zap.SugaredLogger
var loggerOnce sync.Once

// isTestRun returns true if the current process is a Go test binary.
func isTestRun() bool {
	return flag.Lookup("test.v") != nil || filepath.Ext(os.Args[0]) == ".test"
}

func initConfig() {
	once.Do(func() {
		root, err := getProjectRoot()
		if err != nil {
			GetLogger().Errorw("Error finding project root", "error", err)
		}
		viper.SetConfigType("yaml")

		viper.SetConfigName("config")
		viper.AddConfigPath(root)
		if err = viper.ReadInConfig(); err != nil {
			GetLogger().Errorw("Error reading config file", "error", err)
		}

		if isTestRun() {
			viper.SetConfigName("config_test")
			viper.AddConfigPath(root)
			if err = viper.MergeInConfig(); err != nil {
				GetLogger().Errorw("Error merging test config file", "error", err)
			}
		}
	})
}

func getProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func getString(key, def string) string {
	initConfig()
	if v := viper.GetString(key); v != "" {
		return v
	}
	return def
}

// getDuration reads a duration key, falling back to def when unset or invalid.
func getDuration(key string, def time.Duration) time.Duration {
	initConfig()
	durStr := viper.GetString(key)
	if durStr == "" {
		return def
	}
	dur, err := time.ParseDuration(durStr)
	if err != nil {
		GetLogger().Warnw("Invalid duration in config, using default", "key", key, "value", durStr, "default", def)
		return def
	}
	return dur
}

func GetOpenWeatherApiUrl() string {
	return getString("openweathermap.api_url", "https://api.openweathermap.org/data/2.5/weather")
}

// GetOpenWeatherUnits returns the unit system sent to OpenWeatherMap. Snapshots are in °C and m/s, so metric.
func GetOpenWeatherUnits() string {
	return getString("openweathermap.units", "metric")
}

func GetOpenWeatherMapAPIKey() string {
	_ = godotenv.Load()
	return os.Getenv("OPENWEATHERMAP_API_KEY")
}

func GetGooglePlacesAPIKey() string {
	_ = godotenv.Load()
	return os.Getenv("GOOGLE_PLACES_API_KEY")
}

func GetPlacesTextSearchUrl() string {
	return getString("places.text_search_url", "https://maps.googleapis.com/maps/api/place/textsearch/json")
}

func GetPlacesAutocompleteUrl() string {
	return getString("places.autocomplete_url", "https://maps.googleapis.com/maps/api/place/autocomplete/json")
}

func GetPlacesDetailsUrl() string {
	return getString("places.details_url", "https://maps.googleapis.com/maps/api/place/details/json")
}

func GetPlacesPhotoUrl() string {
	return getString("places.photo_url", "https://maps.googleapis.com/maps/api/place/photo")
}

func GetPlacesPhotoMaxWidth() int {
	initConfig()
	if w := viper.GetInt("places.photo_max_width"); w > 0 {
		return w
	}
	return 400
}

// GetPlacesPhotoPlaceholder is the image shown for places without photos.
func GetPlacesPhotoPlaceholder() string {
	return getString("places.photo_placeholder", "/placeholder-image.jpg")
}

// GetSearchQueryTemplate returns the fmt template wrapped around the user's location.
func GetSearchQueryTemplate() string {
	return getString("search.query_template", "popular places in %s")
}

// GetWeatherFailurePolicy returns "degrade" or "abort".
func GetWeatherFailurePolicy() string {
	return getString("search.weather_failure", "degrade")
}

func GetSequencerBackend() string {
	return getString("sequencer.backend", "memory")
}

func GetSessionTTL() time.Duration {
	return getDuration("session.ttl", 30*time.Minute)
}

func GetSessionCleanupInterval() time.Duration {
	return getDuration("session.cleanup_interval", 5*time.Minute)
}

func GetHTTPClientTimeout() time.Duration {
	return getDuration("http_client.timeout", 10*time.Second)
}

func GetCORSAllowedOrigins() []string {
	initConfig()
	origins := viper.GetStringSlice("cors.allowed_origins")
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}

func GetRedisAddr() string {
	initConfig()
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return getString("redis.addr", "localhost:6379")
}

func GetServerPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return getString("server.port", "8080")
}

// GetServerTimeoutDuration parses one of the server.* timeouts.
func GetServerTimeoutDuration(key string, def time.Duration) time.Duration {
	return getDuration("server."+key, def)
}

// GetTestRedisMockPort is where integration tests start their fake redis.
func GetTestRedisMockPort() string {
	return getString("test.redis_mock_port", ":16379")
}

// ReloadConfigForTest resets the config singleton and reloads Viper config. Use only in tests.
func ReloadConfigForTest() {
	once = sync.Once{}
	initConfig()
}

func GetLogger() *zap.SugaredLogger {
	loggerOnce.Do(func() {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		logger = l.Sugar()
	})
	return logger
}

// GetRateLimiterCleanupTimeout returns the rate limiter cleanup timeout as a time.Duration.
// Defaults to 3m if not set or invalid.
func GetRateLimiterCleanupTimeout() time.Duration {
	return getDuration("rate_limiter.cleanup_timeout", 3*time.Minute)
}

// GetGlobalRateLimiterConfig returns the per-minute rate and burst for the global rate limiter.
func GetGlobalRateLimiterConfig() (rate float64, burst int) {
	initConfig()
	rate = viper.GetFloat64("rate_limiter.global.rate")
	if rate == 0 {
		rate = 60
	}
	burst = viper.GetInt("rate_limiter.global.burst")
	if burst == 0 {
		burst = 30
	}
	return
}

// GetParamRateLimiterConfig returns the per-minute rate and burst for the per-parameter rate limiter.
func GetParamRateLimiterConfig() (rate float64, burst int) {
	initConfig()
	rate = viper.GetFloat64("rate_limiter.param.rate")
	if rate == 0 {
		rate = 20
	}
	burst = viper.GetInt("rate_limiter.param.burst")
	if burst == 0 {
		burst = 10
	}
	return
}

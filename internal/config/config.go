package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Path string
}

type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	Stream        string
	Group         string
	Consumer      string
	ClaimInterval time.Duration
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
	// UploadURL switches the upload adapter to the multipart HTTP endpoint
	// instead of the object store when set.
	UploadURL string
}

type CaptureConfig struct {
	DefaultQuality float64
	MaxWidth       int
	MaxHeight      int
	ThumbnailSize  int
}

type CameraConfig struct {
	// Virtual drives the built-in synthetic frame source; hardware backends
	// register their own driver in main.
	Virtual       bool
	VirtualWidth  int
	VirtualHeight int
}

type GeoConfig struct {
	LocationTimeout time.Duration
	FixMaxAge       time.Duration
	GeocodeURL      string
	GeocodeTimeout  time.Duration
	// Static installation coordinates, used when no live locator is wired.
	StaticEnabled   bool
	StaticLatitude  float64
	StaticLongitude float64
	StaticAccuracy  float64
}

type RetentionConfig struct {
	DaysToKeep int
	CronSpec   string
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Database         DatabaseConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Capture          CaptureConfig
	Camera           CameraConfig
	Geo              GeoConfig
	Retention        RetentionConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("PHOTODOC")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "30s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("database.path", "photodoc.db")

	v.SetDefault("redis.stream", "photodoc:uploads")
	v.SetDefault("redis.group", "uploaders")
	v.SetDefault("redis.consumer", "uploader-1")
	v.SetDefault("redis.claiminterval", "1m")

	v.SetDefault("storage.bucket", "photodoc-receipts")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("capture.defaultquality", 0.8)
	v.SetDefault("capture.maxwidth", 1920)
	v.SetDefault("capture.maxheight", 1080)
	v.SetDefault("capture.thumbnailsize", 150)

	v.SetDefault("camera.virtual", true)
	v.SetDefault("camera.virtualwidth", 1280)
	v.SetDefault("camera.virtualheight", 720)

	v.SetDefault("geo.locationtimeout", "10s")
	v.SetDefault("geo.fixmaxage", "5m")
	v.SetDefault("geo.geocodetimeout", "5s")
	v.SetDefault("geo.staticaccuracy", 50)

	v.SetDefault("retention.daystokeep", 90)
	v.SetDefault("retention.cronspec", "0 0 3 * * *")
}

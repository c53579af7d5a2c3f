package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Env    string `mapstructure:"env"`
		Port   string `mapstructure:"port"`
		Origin string `mapstructure:"origin"`
	} `mapstructure:"app"`
	DB struct {
		// Empty DSN means the remote document store is not configured and
		// the service runs local-only.
		DSN        string `mapstructure:"dsn"`
		DocumentID string `mapstructure:"document_id"`
	} `mapstructure:"db"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
	} `mapstructure:"kafka"`
	Auth struct {
		JWTSecret         string `mapstructure:"jwt_secret"`
		AdminUsername     string `mapstructure:"admin_username"`
		AdminPasswordHash string `mapstructure:"admin_password_hash"`
	} `mapstructure:"auth"`
	Render struct {
		RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	} `mapstructure:"render"`
	Cloudinary struct {
		CloudName string `mapstructure:"cloud_name"`
		ApiKey    string `mapstructure:"api_key"`
		ApiSecret string `mapstructure:"api_secret"`
	} `mapstructure:"cloudinary"`
	Jaeger struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	} `mapstructure:"jaeger"`
}

func LoadConfig(paths ...string) (cfg Config, err error) {

	err = godotenv.Load()
	if err != nil {
		log.Println("warning: .env file not found, use default.")
	}

	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		viper.AddConfigPath(p)
	}
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if err = viper.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, read .env only. Error: %v", err)
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.origin", "localhost")
	viper.SetDefault("db.document_id", "portfolio-user")
	viper.SetDefault("render.refresh_interval", time.Minute)

	viper.BindEnv("app.env", "APP_ENV")
	viper.BindEnv("app.port", "APP_PORT")
	viper.BindEnv("app.origin", "APP_ORIGIN")
	viper.BindEnv("db.dsn", "DB_DSN")
	viper.BindEnv("db.document_id", "DB_DOCUMENT_ID")
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	viper.BindEnv("auth.jwt_secret", "JWT_SECRET")
	viper.BindEnv("auth.admin_username", "ADMIN_USERNAME")
	viper.BindEnv("auth.admin_password_hash", "ADMIN_PASSWORD_HASH")
	viper.BindEnv("render.refresh_interval", "RENDER_REFRESH_INTERVAL")
	viper.BindEnv("jaeger.otlp_endpoint", "JAEGER_OTLP_ENDPOINT")

	viper.BindEnv("cloudinary.cloud_name", "CLOUDINARY_CLOUD_NAME")
	viper.BindEnv("cloudinary.api_key", "CLOUDINARY_API_KEY")
	viper.BindEnv("cloudinary.api_secret", "CLOUDINARY_API_SECRET")

	err = viper.Unmarshal(&cfg)
	return
}

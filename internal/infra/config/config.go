package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App            AppSettings            `mapstructure:"app"`
	Postgres       PostgresSettings       `mapstructure:"postgres"`
	JWT            JWTSettings            `mapstructure:"jwt"`
	Argon2         Argon2Settings         `mapstructure:"argon2"`
	PasswordPolicy PasswordPolicySettings `mapstructure:"password_policy"`
	Kafka          KafkaSettings          `mapstructure:"kafka"`
	Telemetry      TelemetrySettings      `mapstructure:"telemetry"`
	CORS           CORSSettings           `mapstructure:"cors"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// JWTSettings configures token signing. The secret has no default: the
// process refuses to start without one, and it is never logged.
type JWTSettings struct {
	Secret         string        `mapstructure:"secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// Argon2Settings configures Argon2id password hashing parameters.
type Argon2Settings struct {
	Memory      uint32 `mapstructure:"memory"`
	Iterations  uint32 `mapstructure:"iterations"`
	Parallelism uint8  `mapstructure:"parallelism"`
	SaltLength  uint32 `mapstructure:"salt_length"`
	KeyLength   uint32 `mapstructure:"key_length"`
}

// PasswordPolicySettings configures registration password rules. Both
// thresholds default to zero, which accepts any non-empty password; operators
// opt in to stricter rules per deployment.
type PasswordPolicySettings struct {
	MinLength   int `mapstructure:"min_length"`
	MinStrength int `mapstructure:"min_strength"`
}

// KafkaSettings configures the event producer. Empty brokers switch the
// publisher to a logging stub.
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
}

type TelemetrySettings struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

// CORSSettings lists the browser origins allowed to call the API.
type CORSSettings struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("IAM")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"jwt.secret",
		"jwt.access_token_ttl",
		"argon2.memory",
		"argon2.iterations",
		"argon2.parallelism",
		"argon2.salt_length",
		"argon2.key_length",
		"password_policy.min_length",
		"password_policy.min_strength",
		"kafka.brokers",
		"kafka.topic_prefix",
		"telemetry.otlp_endpoint",
		"telemetry.service_name",
		"telemetry.sampling_rate",
		"cors.allowed_origins",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "graph-platform-iam")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "iam")
	v.SetDefault("postgres.password", "iam_password")
	v.SetDefault("postgres.database", "iam")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("jwt.access_token_ttl", "15m")

	v.SetDefault("argon2.memory", 65536) // 64 MB
	v.SetDefault("argon2.iterations", 3)
	v.SetDefault("argon2.parallelism", 4)
	v.SetDefault("argon2.salt_length", 16)
	v.SetDefault("argon2.key_length", 32)

	v.SetDefault("password_policy.min_length", 0)
	v.SetDefault("password_policy.min_strength", 0)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "iam")

	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.service_name", "graph-platform-iam")
	v.SetDefault("telemetry.sampling_rate", 1.0)

	v.SetDefault("cors.allowed_origins", []string{"*"})
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "IAM_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}

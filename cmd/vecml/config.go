package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/vecml"
)

// Config is the resolved CLI configuration. Values come, in increasing
// precedence, from defaults, vecml.yaml, VECML_* environment variables and
// command-line flags.
type Config struct {
	Store struct {
		Kind      string `mapstructure:"kind"`
		Path      string `mapstructure:"path"`
		Bucket    string `mapstructure:"bucket"`
		Prefix    string `mapstructure:"prefix"`
		Endpoint  string `mapstructure:"endpoint"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
		Secure    bool   `mapstructure:"secure"`
		DDBTable  string `mapstructure:"ddb_table"`
	} `mapstructure:"store"`
	Persist struct {
		Codec       string `mapstructure:"codec"`
		Compression string `mapstructure:"compression"`
	} `mapstructure:"persist"`
	Boost struct {
		Algorithm      string  `mapstructure:"algorithm"`
		MaxClassifiers int     `mapstructure:"max_classifiers"`
		MinError       float64 `mapstructure:"min_error"`
	} `mapstructure:"boost"`
	KNN struct {
		K              int     `mapstructure:"k"`
		Reject         float64 `mapstructure:"reject"`
		MaxEvaluations int     `mapstructure:"max_evaluations"`
	} `mapstructure:"knn"`
	SOM struct {
		Width          int    `mapstructure:"width"`
		Height         int    `mapstructure:"height"`
		Topology       string `mapstructure:"topology"`
		LearningLength int    `mapstructure:"learning_length"`
	} `mapstructure:"som"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.kind", "local")
	v.SetDefault("store.path", "./models")
	v.SetDefault("store.secure", true)
	v.SetDefault("persist.codec", "go-json")
	v.SetDefault("persist.compression", "zstd")
	v.SetDefault("boost.algorithm", "realboost")
	v.SetDefault("boost.max_classifiers", 100)
	v.SetDefault("boost.min_error", 0.0)
	v.SetDefault("knn.k", 1)
	v.SetDefault("knn.reject", 0.0)
	v.SetDefault("knn.max_evaluations", 0)
	v.SetDefault("som.width", 10)
	v.SetDefault("som.height", 10)
	v.SetDefault("som.topology", "square")
	v.SetDefault("som.learning_length", 10000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"store":       "store.kind",
	"store-path":  "store.path",
	"bucket":      "store.bucket",
	"prefix":      "store.prefix",
	"endpoint":    "store.endpoint",
	"ddb-table":   "store.ddb_table",
	"codec":       "persist.codec",
	"compression": "persist.compression",
	"boost":       "boost.algorithm",
	"rounds":      "boost.max_classifiers",
	"min-error":   "boost.min_error",
	"k":           "knn.k",
	"reject":      "knn.reject",
	"max-evals":   "knn.max_evaluations",
	"log-level":   "log.level",
	"log-format":  "log.format",
}

// loadConfig reads the configuration for cmd. A missing config file is not
// an error unless it was named explicitly.
func loadConfig(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("vecml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		altPath := os.Getenv("VECML_CFG_PATH")
		if altPath == "" {
			altPath = "."
		}
		v.AddConfigPath(altPath)
		v.SetConfigName("vecml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *Config) (*vecml.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", cfg.Log.Level)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "json":
		return vecml.NewJSONLogger(level), nil
	case "text", "":
		return vecml.NewTextLogger(level), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Log.Format)
	}
}

// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kyiku/textcaptcha/internal/captcha"
	"github.com/kyiku/textcaptcha/internal/logging"
)

const (
	// EnvPrefix prefixes every environment variable, e.g. CAPTCHA_CAPTCHA_WIDTH.
	EnvPrefix = "CAPTCHA"
	// ConfigFileEnv names an optional YAML configuration file.
	ConfigFileEnv = "CAPTCHA_CONFIG_FILE"
)

// Config holds the application configuration.
type Config struct {
	Captcha CaptchaConfig  `mapstructure:"captcha"`
	Output  OutputConfig   `mapstructure:"output"`
	Log     logging.Config `mapstructure:"log"`
}

// CaptchaConfig is the file and environment form of captcha.Config.
type CaptchaConfig struct {
	Charset  string `mapstructure:"charset" default:"123467890abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ" validate:"required"`
	Length   int    `mapstructure:"length" default:"4" validate:"gt=0"`
	Width    int    `mapstructure:"width" default:"150" validate:"gt=0"`
	Height   int    `mapstructure:"height" default:"40" validate:"gt=0"`
	FontSize int    `mapstructure:"font_size" validate:"gte=0"`

	Background            string `mapstructure:"background" default:"#F3FBFE"`
	RandomLightBackground bool   `mapstructure:"random_light_background"`
	FontColor             string `mapstructure:"font_color"`
	BorderColor           string `mapstructure:"border_color" default:"#000"`
	DrawBorder            bool   `mapstructure:"draw_border"`
	DrawNoise             bool   `mapstructure:"draw_noise" default:"true"`
	NoiseLevel            int    `mapstructure:"noise_level" default:"10" validate:"gte=0"`
	DrawCurve             bool   `mapstructure:"draw_curve" default:"true"`

	FontPath   string   `mapstructure:"font_path"`
	RandomFont bool     `mapstructure:"random_font"`
	Fonts      []string `mapstructure:"fonts"`
	FontDir    string   `mapstructure:"font_dir"`
}

// OutputConfig controls where generated images go.
type OutputConfig struct {
	// Sink is local, s3 or oss.
	Sink     string `mapstructure:"sink" default:"local" validate:"oneof=local s3 oss"`
	Dir      string `mapstructure:"dir" default:"out"`
	Prefix   string `mapstructure:"prefix" default:"captcha"`
	Manifest string `mapstructure:"manifest"`
	Count    int    `mapstructure:"count" default:"1" validate:"gt=0"`
	Workers  int    `mapstructure:"workers" default:"4" validate:"gt=0"`
	// Seed makes the run reproducible. Zero seeds from the clock.
	Seed int64 `mapstructure:"seed"`

	S3  S3Config  `mapstructure:"s3"`
	OSS OSSConfig `mapstructure:"oss"`
}

// S3Config configures the S3 sink.
type S3Config struct {
	Region string `mapstructure:"region" default:"ap-northeast-1"`
	Bucket string `mapstructure:"bucket"`
	// BaseURL is the public URL prefix, e.g. a CloudFront domain.
	BaseURL string `mapstructure:"base_url"`
}

// OSSConfig configures the Aliyun OSS sink.
type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	Bucket          string `mapstructure:"bucket"`
	BaseURL         string `mapstructure:"base_url"`
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"count":       "output.count",
	"workers":     "output.workers",
	"seed":        "output.seed",
	"sink":        "output.sink",
	"out":         "output.dir",
	"prefix":      "output.prefix",
	"manifest":    "output.manifest",
	"width":       "captcha.width",
	"height":      "captcha.height",
	"length":      "captcha.length",
	"charset":     "captcha.charset",
	"font":        "captcha.font_path",
	"font-dir":    "captcha.font_dir",
	"random-font": "captcha.random_font",
	"border":      "captcha.draw_border",
	"log-level":   "log.level",
	"log-format":  "log.format",
}

var validate = validator.New()

// LoadConfig loads configuration from defaults, an optional YAML file,
// environment variables and the flags set on flags, in increasing priority.
// flags may be nil.
func LoadConfig(flags *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to set defaults: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range configKeys(reflect.TypeOf(*cfg), "") {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if path := configFile(flags); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if flags != nil {
		var bindErr error
		flags.Visit(func(f *pflag.Flag) {
			key, ok := flagKeys[f.Name]
			if !ok || bindErr != nil {
				return
			}
			bindErr = v.BindPFlag(key, f)
		})
		if bindErr != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", bindErr)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func configFile(flags *pflag.FlagSet) string {
	if flags != nil {
		if f := flags.Lookup("config"); f != nil && f.Changed {
			return f.Value.String()
		}
	}
	return os.Getenv(ConfigFileEnv)
}

// configKeys lists the dotted mapstructure keys of the leaf fields of t.
func configKeys(t reflect.Type, prefix string) []string {
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if field.Type.Kind() == reflect.Struct {
			keys = append(keys, configKeys(field.Type, key)...)
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	switch c.Output.Sink {
	case "s3":
		if c.Output.S3.Bucket == "" {
			return errors.New("invalid config: output.s3.bucket is required for the s3 sink")
		}
	case "oss":
		if c.Output.OSS.Endpoint == "" || c.Output.OSS.Bucket == "" {
			return errors.New("invalid config: output.oss.endpoint and output.oss.bucket are required for the oss sink")
		}
	}

	return nil
}

// ToCaptcha converts c into a captcha.Config. Empty color strings stay unset.
func (c CaptchaConfig) ToCaptcha() captcha.Config {
	cfg := captcha.Config{
		Charset:               c.Charset,
		Length:                c.Length,
		Width:                 c.Width,
		Height:                c.Height,
		FontSize:              c.FontSize,
		RandomLightBackground: c.RandomLightBackground,
		DrawBorder:            c.DrawBorder,
		DrawNoise:             c.DrawNoise,
		NoiseLevel:            c.NoiseLevel,
		DrawCurve:             c.DrawCurve,
		FontPath:              c.FontPath,
		RandomFont:            c.RandomFont,
		Fonts:                 c.Fonts,
		FontDir:               c.FontDir,
	}

	if c.Background != "" {
		cfg.Background = captcha.Hex(c.Background)
	}
	if c.FontColor != "" {
		cfg.FontColor = captcha.Hex(c.FontColor)
	}
	if c.BorderColor != "" {
		cfg.BorderColor = captcha.Hex(c.BorderColor)
	}

	return cfg
}

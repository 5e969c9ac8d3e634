package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/nikogura/job-assistant/pkg/llm"
	"github.com/nikogura/job-assistant/pkg/tailor"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix prefixes every environment override, e.g. JOB_ASSISTANT_SERVER_ADDR.
	EnvPrefix = "JOB_ASSISTANT"
	dirName   = ".job-assistant"
	fileName  = "config.yaml"
)

// Config represents the application configuration.
type Config struct {
	AnthropicAPIKey  string           `mapstructure:"anthropic_api_key" yaml:"anthropic_api_key"`
	Generation       GenerationConfig `mapstructure:"generation" yaml:"generation"`
	ProfilesDir      string           `mapstructure:"profiles_dir" yaml:"profiles_dir"`
	DefaultCandidate string           `mapstructure:"default_candidate" yaml:"default_candidate"`
	DatabaseURL      string           `mapstructure:"database_url" yaml:"database_url"`
	Server           ServerConfig     `mapstructure:"server" yaml:"server"`
	Pandoc           PandocConfig     `mapstructure:"pandoc" yaml:"pandoc"`
	Defaults         DefaultConfig    `mapstructure:"defaults" yaml:"defaults"`
}

// GenerationConfig controls calls to the generation API.
type GenerationConfig struct {
	Model          string        `mapstructure:"model" yaml:"model"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxAttempts    int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay" yaml:"retry_base_delay"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// PandocConfig holds pandoc-related configuration.
type PandocConfig struct {
	ResumeTemplate      string `mapstructure:"resume_template" yaml:"resume_template"`
	CoverLetterTemplate string `mapstructure:"cover_letter_template" yaml:"cover_letter_template"`
}

// DefaultConfig holds default values for commands.
type DefaultConfig struct {
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
}

// DefaultPath returns ~/.job-assistant/config.yaml.
func DefaultPath() (path string, err error) {
	var homeDir string
	homeDir, err = os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return path, err
	}
	path = filepath.Join(homeDir, dirName, fileName)
	return path, err
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("generation.model", llm.DefaultModel)
	v.SetDefault("generation.timeout", llm.DefaultTimeout)
	v.SetDefault("generation.max_attempts", 1)
	v.SetDefault("generation.retry_base_delay", 2*time.Second)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("defaults.output_dir", "./applications")
	v.SetDefault("profiles_dir", "")
	v.SetDefault("default_candidate", "")
	v.SetDefault("database_url", "")
	v.SetDefault("anthropic_api_key", "")
	v.SetDefault("pandoc.resume_template", "")
	v.SetDefault("pandoc.cover_letter_template", "")
}

// Load reads configuration from a YAML file, a .env file and the environment, in increasing precedence.
// An explicit configPath must exist. The default path is optional.
func Load(configPath string) (cfg Config, err error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		var path string
		path, err = DefaultPath()
		if err != nil {
			return cfg, err
		}
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName(strings.TrimSuffix(fileName, filepath.Ext(fileName)))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err = v.BindEnv("anthropic_api_key", EnvPrefix+"_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	if err != nil {
		err = errors.Wrap(err, "failed to bind ANTHROPIC_API_KEY")
		return cfg, err
	}

	err = v.BindEnv("database_url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL")
	if err != nil {
		err = errors.Wrap(err, "failed to bind DATABASE_URL")
		return cfg, err
	}

	err = v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			err = errors.Wrapf(err, "failed to read config file %s", configPath)
			return cfg, err
		}
		err = nil
	}

	err = v.Unmarshal(&cfg)
	if err != nil {
		err = errors.Wrap(err, "failed to parse config")
		return cfg, err
	}

	err = cfg.Validate()
	if err != nil {
		err = errors.Wrap(err, "config validation failed")
		return cfg, err
	}

	return cfg, err
}

// Validate checks the shape of the configuration. A missing API key is not an error here.
func (c *Config) Validate() (err error) {
	if c.Generation.Timeout <= 0 {
		err = errors.New("generation.timeout must be positive")
		return err
	}

	if c.Generation.MaxAttempts < 1 || c.Generation.MaxAttempts > 10 {
		err = errors.Errorf("generation.max_attempts must be between 1 and 10, got %d", c.Generation.MaxAttempts)
		return err
	}

	if c.Generation.MaxAttempts > 1 && c.Generation.RetryBaseDelay <= 0 {
		err = errors.New("generation.retry_base_delay must be positive when retries are enabled")
		return err
	}

	if c.Server.Addr == "" {
		err = errors.New("server.addr is required")
		return err
	}

	if c.ProfilesDir != "" {
		var info os.FileInfo
		info, err = os.Stat(c.ProfilesDir)
		if err != nil {
			err = errors.Wrapf(err, "profiles_dir not readable: %s", c.ProfilesDir)
			return err
		}
		if !info.IsDir() {
			err = errors.Errorf("profiles_dir is not a directory: %s", c.ProfilesDir)
			return err
		}
	}

	if c.Defaults.OutputDir == "" {
		c.Defaults.OutputDir = "./applications"
	}

	return err
}

// RequireAPIKey returns a configuration error when no Anthropic API key is set.
func (c *Config) RequireAPIKey() (err error) {
	if strings.TrimSpace(c.AnthropicAPIKey) == "" {
		err = &tailor.Error{Kind: tailor.KindConfiguration, Message: tailor.MsgMissingAPIKey}
		return err
	}
	return err
}

// RetryPolicy converts the generation settings into a tailor retry policy.
func (c *Config) RetryPolicy() (policy tailor.RetryPolicy) {
	policy = tailor.RetryPolicy{
		MaxAttempts: c.Generation.MaxAttempts,
		BaseDelay:   c.Generation.RetryBaseDelay,
	}
	return policy
}

// InitConfig creates a starter configuration file.
func InitConfig(configPath string) (path string, err error) {
	path = configPath
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return path, err
		}
	}

	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create config directory: %s", dir)
		return path, err
	}

	_, err = os.Stat(path)
	if err == nil {
		err = errors.Errorf("config file already exists: %s", path)
		return path, err
	}

	var homeDir string
	homeDir, err = os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return path, err
	}

	starter := Config{
		AnthropicAPIKey: "",
		Generation: GenerationConfig{
			Model:          llm.DefaultModel,
			Timeout:        llm.DefaultTimeout,
			MaxAttempts:    1,
			RetryBaseDelay: 2 * time.Second,
		},
		ProfilesDir:      filepath.Join(homeDir, dirName, "profiles"),
		DefaultCandidate: "",
		Server: ServerConfig{
			Addr: ":8080",
		},
		Defaults: DefaultConfig{
			OutputDir: filepath.Join(homeDir, "Documents", "Applications"),
		},
	}

	err = os.MkdirAll(starter.ProfilesDir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create profiles directory: %s", starter.ProfilesDir)
		return path, err
	}

	var data []byte
	data, err = yaml.Marshal(starter)
	if err != nil {
		err = errors.Wrap(err, "failed to marshal starter config")
		return path, err
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write config file: %s", path)
		return path, err
	}

	return path, err
}

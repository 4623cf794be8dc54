package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/flashlark/larkmemo/internal/biz/domain"
	"github.com/flashlark/larkmemo/internal/biz/usecase"
	"github.com/flashlark/larkmemo/internal/infra/retry"
)

// Config represents application configuration
type Config struct {
	// Lark preferences; the local override store is layered on top
	Lark LarkConfig `yaml:"lark"`

	// Store configuration
	Store StoreConfig `yaml:"store"`

	// Chat listing
	ChatList ChatListConfig `yaml:"chat_list"`

	// Text send retries
	Retry RetryConfig `yaml:"retry"`

	// HTTP client and local API server
	HTTP HTTPConfig `yaml:"http"`

	// Reply poll after a send
	ReplyPoll ReplyPollConfig `yaml:"reply_poll"`

	// Logging
	Log LogConfig `yaml:"log"`
}

// LarkConfig contains the send preferences
type LarkConfig struct {
	Domain          string `yaml:"domain"`
	AppID           string `yaml:"app_id"`
	AppSecret       string `yaml:"app_secret"`
	ReceiveID       string `yaml:"receive_id"`
	ReceiveIDType   string `yaml:"receive_id_type" validate:"omitempty,oneof=chat_id open_id email"`
	PrefixTimestamp bool   `yaml:"prefix_timestamp"`
}

// StoreConfig selects the KV store backend
type StoreConfig struct {
	Backend string `yaml:"backend" validate:"oneof=sqlite bolt"`
	Dir     string `yaml:"dir" validate:"required"`
}

// ChatListConfig tunes the chat listing
type ChatListConfig struct {
	PageSize   int           `yaml:"page_size" validate:"min=1,max=100"`
	MaxPages   int           `yaml:"max_pages" validate:"min=1"`
	P2PSweep   bool          `yaml:"p2p_sweep"`
	BotInfoTTL time.Duration `yaml:"bot_info_ttl" validate:"min=0"`
}

// RetryConfig contains text send retry settings
type RetryConfig struct {
	Retries   int           `yaml:"retries" validate:"min=0,max=10"`
	BaseDelay time.Duration `yaml:"base_delay" validate:"min=0"`
}

// HTTPConfig contains HTTP settings
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout" validate:"min=0"`
	Listen  string        `yaml:"listen" validate:"required,hostname_port"`
}

// ReplyPollConfig contains reply poll settings
type ReplyPollConfig struct {
	Interval time.Duration `yaml:"interval" validate:"min=0"`
	Timeout  time.Duration `yaml:"timeout" validate:"min=0"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	dir := ".larkmemo"
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ".larkmemo")
	}
	return &Config{
		Lark: LarkConfig{
			Domain:        domain.DefaultDomain,
			ReceiveIDType: string(domain.ReceiveIDTypeEmail),
		},
		Store: StoreConfig{Backend: "sqlite", Dir: dir},
		ChatList: ChatListConfig{
			PageSize:   50,
			MaxPages:   10,
			P2PSweep:   true,
			BotInfoTTL: domain.BotInfoTTL,
		},
		Retry:     RetryConfig{Retries: 1, BaseDelay: 500 * time.Millisecond},
		HTTP:      HTTPConfig{Timeout: 30 * time.Second, Listen: "127.0.0.1:8765"},
		ReplyPoll: ReplyPollConfig{Interval: time.Second, Timeout: 10 * time.Second},
		Log:       LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads .env, then the YAML file, then environment variables.
// Later layers win.
func Load() (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if err := cfg.loadFile(os.Getenv("LARKMEMO_CONFIG")); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("LARK_DOMAIN", &c.Lark.Domain)
	str("LARK_APP_ID", &c.Lark.AppID)
	str("LARK_APP_SECRET", &c.Lark.AppSecret)
	str("LARK_RECEIVE_ID", &c.Lark.ReceiveID)
	str("LARK_RECEIVE_ID_TYPE", &c.Lark.ReceiveIDType)
	str("LARKMEMO_STORE_BACKEND", &c.Store.Backend)
	str("LARKMEMO_DATA_DIR", &c.Store.Dir)
	str("LARKMEMO_LISTEN", &c.HTTP.Listen)
	str("LARKMEMO_LOG_LEVEL", &c.Log.Level)
	str("LARKMEMO_LOG_FORMAT", &c.Log.Format)

	if err := envBool("LARK_PREFIX_TIMESTAMP", &c.Lark.PrefixTimestamp); err != nil {
		return err
	}
	if err := envBool("LARKMEMO_P2P_SWEEP", &c.ChatList.P2PSweep); err != nil {
		return err
	}
	if err := envInt("LARKMEMO_CHAT_PAGE_SIZE", &c.ChatList.PageSize); err != nil {
		return err
	}
	if err := envInt("LARKMEMO_CHAT_MAX_PAGES", &c.ChatList.MaxPages); err != nil {
		return err
	}
	if err := envInt("LARKMEMO_RETRIES", &c.Retry.Retries); err != nil {
		return err
	}
	return envDuration("LARKMEMO_HTTP_TIMEOUT", &c.HTTP.Timeout)
}

func envBool(key string, dst *bool) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return &ConfigError{Field: key, Message: "must be true or false"}
	}
	*dst = b
	return nil
}

func envInt(key string, dst *int) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return &ConfigError{Field: key, Message: "must be an integer"}
	}
	*dst = n
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return &ConfigError{Field: key, Message: "must be a duration such as 30s"}
	}
	*dst = d
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate validates the configuration and reports the first failure
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ConfigError{Field: fe.Namespace(), Message: describe(fe)}
	}
	return &ConfigError{Field: "config", Message: err.Error()}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "oneof":
		return "must be one of " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "hostname_port":
		return "must be host:port"
	}
	return "failed " + fe.Tag()
}

// Settings returns the preference layer of the send settings
func (c *Config) Settings() domain.Settings {
	return domain.Settings{
		Domain:          c.Lark.Domain,
		AppID:           c.Lark.AppID,
		AppSecret:       c.Lark.AppSecret,
		ReceiveID:       c.Lark.ReceiveID,
		ReceiveIDType:   domain.ReceiveIDType(c.Lark.ReceiveIDType),
		PrefixTimestamp: c.Lark.PrefixTimestamp,
	}
}

// ToChatListConfig converts to the chat listing configuration
func (c *Config) ToChatListConfig() usecase.ChatListConfig {
	cfg := usecase.DefaultChatListConfig()
	cfg.PageSize = c.ChatList.PageSize
	cfg.MaxPages = c.ChatList.MaxPages
	cfg.P2PSweep = c.ChatList.P2PSweep
	if c.ChatList.BotInfoTTL > 0 {
		cfg.BotInfoTTL = c.ChatList.BotInfoTTL
	}
	return cfg
}

// ToRetryOptions converts to text send retry options
func (c *Config) ToRetryOptions() retry.Options {
	opts := retry.TextSend()
	opts.Retries = c.Retry.Retries
	if c.Retry.BaseDelay > 0 {
		opts.BaseDelay = c.Retry.BaseDelay
	}
	return opts
}

// ToReplyPollConfig converts to reply poll configuration
func (c *Config) ToReplyPollConfig() usecase.ReplyPollConfig {
	return usecase.ReplyPollConfig{Interval: c.ReplyPoll.Interval, Timeout: c.ReplyPoll.Timeout}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

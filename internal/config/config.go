package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Env       string          `mapstructure:"env"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Session   SessionConfig   `mapstructure:"session"`
	Cart      CartConfig      `mapstructure:"cart"`
	Order     OrderConfig     `mapstructure:"order"`
	Checkout  CheckoutConfig  `mapstructure:"checkout"`
	Location  LocationConfig  `mapstructure:"location"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console | json
}

type StorageConfig struct {
	Driver string      `mapstructure:"driver"` // memory | redis | postgres | mysql
	Redis  RedisConfig `mapstructure:"redis"`
	DB     DBConfig    `mapstructure:"db"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
	Prefix   string `mapstructure:"prefix"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

type SessionConfig struct {
	AuthDelay time.Duration `mapstructure:"auth_delay"`
}

type CartConfig struct {
	ServiceFeePercent string `mapstructure:"service_fee_percent"`
	MinServiceFee     string `mapstructure:"min_service_fee"`
}

type OrderConfig struct {
	ProgressInterval    time.Duration `mapstructure:"progress_interval"`
	EstimatedDelivery   string        `mapstructure:"estimated_delivery"`
	NotifyStatusChanges bool          `mapstructure:"notify_status_changes"`
}

type CheckoutConfig struct {
	PaymentDelay time.Duration `mapstructure:"payment_delay"`
}

type LocationConfig struct {
	Provider string        `mapstructure:"provider"` // none | static | deny
	Timeout  time.Duration `mapstructure:"timeout"`
	MaxAge   time.Duration `mapstructure:"max_age"`
	Static   StaticFix     `mapstructure:"static"`
}

type StaticFix struct {
	Lat      float64 `mapstructure:"lat"`
	Lng      float64 `mapstructure:"lng"`
	Accuracy float64 `mapstructure:"accuracy"`
}

type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
}

type RateLimitConfig struct {
	Enabled  bool    `mapstructure:"enabled"`
	Capacity int64   `mapstructure:"capacity"`
	RatePS   float64 `mapstructure:"rate_per_second"`
}

// ServiceFeePercent 設定值在 Validate 已檢查過
func (c CartConfig) Fee() (percent decimal.Decimal, min decimal.Decimal) {
	return decimal.RequireFromString(c.ServiceFeePercent), decimal.RequireFromString(c.MinServiceFee)
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case "memory", "redis", "postgres", "mysql":
	default:
		errs = append(errs, fmt.Errorf("storage.driver: unsupported %q", c.Storage.Driver))
	}
	if c.Storage.Driver == "redis" && c.Storage.Redis.Prefix == "" {
		errs = append(errs, errors.New("storage.redis.prefix is required"))
	}
	switch c.Location.Provider {
	case "none", "static", "deny":
	default:
		errs = append(errs, fmt.Errorf("location.provider: unsupported %q", c.Location.Provider))
	}
	if _, err := decimal.NewFromString(c.Cart.ServiceFeePercent); err != nil {
		errs = append(errs, fmt.Errorf("cart.service_fee_percent: %w", err))
	}
	if _, err := decimal.NewFromString(c.Cart.MinServiceFee); err != nil {
		errs = append(errs, fmt.Errorf("cart.min_service_fee: %w", err))
	}
	if c.Order.ProgressInterval <= 0 {
		errs = append(errs, errors.New("order.progress_interval must be positive"))
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		errs = append(errs, errors.New("kafka: brokers and topic are required when enabled"))
	}
	return errors.Join(errs...)
}

/*
Manager 持有目前設定
讀取用讀鎖，檔案變更時重新載入並通知訂閱者
*/
type Manager struct {
	v        *viper.Viper
	mu       sync.RWMutex
	config   *Config
	onChange []func(*Config)
}

// Load path 為空時依序搜尋 ./config.yaml 與 $HOME/.parkeat/config.yaml，找不到就全部使用預設值
func Load(path string) (*Manager, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./")
		v.AddConfigPath("$HOME/.parkeat/")
	}

	v.SetEnvPrefix("PARKEAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	m := &Manager{v: v}
	cfg, err := m.unmarshal()
	if err != nil {
		return nil, err
	}
	m.config = cfg
	return m, nil
}

// Default 只有預設值的設定，不讀檔案與環境變數
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		panic(fmt.Sprintf("unmarshal default config: %v", err))
	}
	return cfg
}

func (m *Manager) unmarshal() (*Config, error) {
	cfg := &Config{}
	if err := m.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// ConfigFile 實際使用的設定檔，沒有檔案時為空字串
func (m *Manager) ConfigFile() string {
	return m.v.ConfigFileUsed()
}

// OnChange 需在 Watch 之前註冊
func (m *Manager) OnChange(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, fn)
}

// Watch 監看設定檔，重新載入失敗時保留舊設定並回報錯誤
func (m *Manager) Watch(onError func(error)) {
	if m.v.ConfigFileUsed() == "" {
		return
	}
	m.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		m.reload(onError)
	})
	m.v.WatchConfig()
}

func (m *Manager) reload(onError func(error)) {
	cfg, err := m.unmarshal()
	if err != nil {
		if onError != nil {
			onError(err)
		}
		return
	}

	m.mu.Lock()
	m.config = cfg
	callbacks := append([]func(*Config){}, m.onChange...)
	m.mu.Unlock()

	for _, fn := range callbacks {
		fn(cfg)
	}
}

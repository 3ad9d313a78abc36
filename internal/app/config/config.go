package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"retention/dialersync/internal/app/pkg/errorx"
)

// EnvPrefix 环境变量前缀，DIALERSYNC_DIALER_PASS 覆盖 dialer.pass
const EnvPrefix = "DIALERSYNC"

// DefaultPath 默认配置文件路径
const DefaultPath = "config/config.yaml"

// 索引存储驱动
const (
	IndexDriverFile   = "file"
	IndexDriverSQLite = "sqlite"
)

// Config 应用配置
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Server       ServerConfig       `mapstructure:"server"`
	Dialer       DialerConfig       `mapstructure:"dialer"`
	LeadIndex    LeadIndexConfig    `mapstructure:"lead_index"`
	MySQL        MySQLConfig        `mapstructure:"mysql"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Lmstfy       LmstfyConfig       `mapstructure:"lmstfy"`
	Provisioning ProvisioningConfig `mapstructure:"provisioning"`
	Workers      []WorkerConfig     `mapstructure:"workers"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// DialerConfig 外呼平台连接配置
type DialerConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	AgentAPIURL string        `mapstructure:"agent_api_url"`
	User        string        `mapstructure:"user"`
	Pass        string        `mapstructure:"pass"`
	Source      string        `mapstructure:"source"`
	Timeout     time.Duration `mapstructure:"timeout"`
	CampaignID  string        `mapstructure:"campaign_id"`
	ListID      string        `mapstructure:"list_id"`
	PhoneCode   string        `mapstructure:"phone_code"`
}

// LeadIndexConfig 线索反向索引存储
type LeadIndexConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

type LmstfyConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Namespace string `mapstructure:"namespace"`
	Token     string `mapstructure:"token"`
	Queue     string `mapstructure:"queue"`
}

// ProvisioningConfig 开通账号默认值
type ProvisioningConfig struct {
	DefaultPassword string `mapstructure:"default_password"`
	UserLevel       int    `mapstructure:"user_level"`
	UserGroup       string `mapstructure:"user_group"`
}

// WorkerConfig Worker 配置
type WorkerConfig struct {
	Name       string           `mapstructure:"name"`
	QueueName  string           `mapstructure:"queue_name"`
	Subscriber SubscriberConfig `mapstructure:"subscriber"`
	Processor  ProcessorConfig  `mapstructure:"processor"`
}

// SubscriberConfig Subscriber 配置
type SubscriberConfig struct {
	Threads      int           `mapstructure:"threads"`
	Rate         time.Duration `mapstructure:"rate"`
	Timeout      time.Duration `mapstructure:"timeout"`
	TTR          time.Duration `mapstructure:"ttr"`
	ErrorBackoff time.Duration `mapstructure:"error_backoff"`
}

// ProcessorConfig Processor 配置
type ProcessorConfig struct {
	Threads    int           `mapstructure:"threads"`
	BufferSize int           `mapstructure:"buffer_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// Load 从配置文件加载配置；同目录或工作目录下的 .env 会先被加载
func Load(configPath string) (*Config, error) {
	// .env 可选
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config failed: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadDefault 加载默认配置文件路径
func LoadDefault() (*Config, error) {
	return Load(DefaultPath)
}

// setDefaults 注册默认值，同时让 AutomaticEnv 能覆盖配置文件中没有出现的键
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "dialersync")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("server.port", "8080")
	v.SetDefault("dialer.base_url", "")
	v.SetDefault("dialer.agent_api_url", "")
	v.SetDefault("dialer.user", "")
	v.SetDefault("dialer.pass", "")
	v.SetDefault("dialer.source", "retention")
	v.SetDefault("dialer.timeout", 15*time.Second)
	v.SetDefault("dialer.phone_code", "1")
	v.SetDefault("lead_index.driver", IndexDriverFile)
	v.SetDefault("lead_index.path", "data/lead-index.json")
	v.SetDefault("mysql.dsn", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.channel", "lead:sync")
	v.SetDefault("lmstfy.host", "")
	v.SetDefault("lmstfy.token", "")
	v.SetDefault("lmstfy.queue", "assignment_events")
	v.SetDefault("provisioning.default_password", "")
	v.SetDefault("provisioning.user_level", 1)
	v.SetDefault("provisioning.user_group", "AGENTS")
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Dialer.Timeout <= 0 {
		c.Dialer.Timeout = 15 * time.Second
	}
	if c.Dialer.Source == "" {
		c.Dialer.Source = "retention"
	}
	if c.LeadIndex.Driver == "" {
		c.LeadIndex.Driver = IndexDriverFile
	}
	if c.LeadIndex.Path == "" {
		c.LeadIndex.Path = "data/lead-index.json"
	}
	if c.Lmstfy.Port == 0 {
		c.Lmstfy.Port = 7777
	}
	if c.Provisioning.UserLevel <= 0 {
		c.Provisioning.UserLevel = 1
	}
}

// Validate 验证配置完整性；mysql/redis/lmstfy 为可选协作方
func (c *Config) Validate() error {
	if c.Dialer.BaseURL == "" {
		return errorx.ConfigMissing("dialer.base_url")
	}
	if c.Dialer.User == "" {
		return errorx.ConfigMissing("dialer.user")
	}
	if c.Dialer.Pass == "" {
		return errorx.ConfigMissing("dialer.pass")
	}
	switch c.LeadIndex.Driver {
	case IndexDriverFile, IndexDriverSQLite:
	default:
		return errorx.InvalidInput(fmt.Sprintf("lead_index.driver must be %q or %q", IndexDriverFile, IndexDriverSQLite))
	}
	return nil
}

// ValidateWorker worker 进程额外要求队列配置
func (c *Config) ValidateWorker() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Lmstfy.Host == "" {
		return errorx.ConfigMissing("lmstfy.host")
	}
	if c.Lmstfy.Token == "" {
		return errorx.ConfigMissing("lmstfy.token")
	}
	if len(c.Workers) == 0 {
		return fmt.Errorf("at least one worker is required")
	}
	return nil
}

// HasMySQL 是否配置了行存储
func (c *Config) HasMySQL() bool { return c.MySQL.DSN != "" }

// HasRedis 是否配置了通知通道
func (c *Config) HasRedis() bool { return c.Redis.Addr != "" }

// HasLmstfy 是否配置了任务队列
func (c *Config) HasLmstfy() bool { return c.Lmstfy.Host != "" && c.Lmstfy.Token != "" }

// GetServerPort 获取服务端口
func (c *Config) GetServerPort() string {
	if c.Server.Port != "" {
		return c.Server.Port
	}
	return "8080"
}

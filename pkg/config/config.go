package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	MySQL      MySQLConfig      `mapstructure:"mysql"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Lmstfy     LmstfyConfig     `mapstructure:"lmstfy"`
	ImageStore ImageStoreConfig `mapstructure:"image_store"`
	Detector   DetectorConfig   `mapstructure:"detector"`
	Workers    []WorkerConfig   `mapstructure:"workers"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port        string        `mapstructure:"port"`
	MaxWait     time.Duration `mapstructure:"max_wait"`     // Smart Wait 上限
	NotifyQueue string        `mapstructure:"notify_queue"` // 扫描完成通知的 Redis 频道
}

// MySQLConfig MySQL 配置
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LmstfyConfig Lmstfy 配置
type LmstfyConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Namespace string `mapstructure:"namespace"`
	Token     string `mapstructure:"token"`
	ScanQueue string `mapstructure:"scan_queue"` // 叶片扫描 Job 队列
}

// ImageStoreConfig 图片存储配置
// mode=upload 走远端上传服务，mode=local 落本地目录（开发环境）
type ImageStoreConfig struct {
	Mode      string        `mapstructure:"mode"`
	UploadURL string        `mapstructure:"upload_url"`
	APIKey    string        `mapstructure:"api_key"`
	Folder    string        `mapstructure:"folder"`
	LocalDir  string        `mapstructure:"local_dir"`
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// DetectorConfig 检测器配置
type DetectorConfig struct {
	Primary   PrimaryDetectorConfig   `mapstructure:"primary"`
	Secondary SecondaryDetectorConfig `mapstructure:"secondary"`
}

// PrimaryDetectorConfig 主检测器（本地模型子进程）配置
type PrimaryDetectorConfig struct {
	Python  string        `mapstructure:"python"`  // 解释器，默认 python
	Script  string        `mapstructure:"script"`  // 推理脚本路径
	TmpDir  string        `mapstructure:"tmp_dir"` // 临时图片目录，默认系统临时目录
	Timeout time.Duration `mapstructure:"timeout"` // 本地推理可能较慢，默认放宽到 60s
}

// SecondaryDetectorConfig 备用检测器（远端视觉大模型）配置
type SecondaryDetectorConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
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
	Threads      int           `mapstructure:"threads"`       // 并发拉取数
	Rate         time.Duration `mapstructure:"rate"`          // 拉取速率
	Timeout      time.Duration `mapstructure:"timeout"`       // 拉取超时
	TTR          time.Duration `mapstructure:"ttr"`           // Time-To-Run
	ErrorBackoff time.Duration `mapstructure:"error_backoff"` // 错误退避时间
}

// ProcessorConfig Processor 配置
type ProcessorConfig struct {
	Threads    int           `mapstructure:"threads"`     // 并发处理数
	BufferSize int           `mapstructure:"buffer_size"` // Channel 缓冲大小
	Timeout    time.Duration `mapstructure:"timeout"`     // 单个任务超时
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config failed: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	return &cfg, nil
}

// Validate 验证公共配置
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if c.Detector.Primary.Script == "" {
		return fmt.Errorf("detector.primary.script is required")
	}
	return nil
}

// ValidateServer 验证 API Server 侧配置
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn is required")
	}
	return nil
}

// ValidateWorker 验证 Worker 侧配置
func (c *Config) ValidateWorker() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Lmstfy.Host == "" {
		return fmt.Errorf("lmstfy.host is required")
	}
	if len(c.Workers) == 0 {
		return fmt.Errorf("at least one worker is required")
	}
	return nil
}

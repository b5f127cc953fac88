// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/propline/entity-notes-engine/internal/dao"
	"github.com/propline/entity-notes-engine/pkg/debounce"
	"github.com/propline/entity-notes-engine/pkg/logger"
	"github.com/propline/entity-notes-engine/pkg/util"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig 应用配置
type AppConfig struct {
	File     string         `yaml:"-"` // 配置文件路径，不序列化
	Log      logger.Config  `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Sync     SyncConfig     `yaml:"sync"`
	App      AppSettings    `yaml:"app"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type 数据库类型
	Type string `yaml:"type" default:"sqlite"`
	// Path SQLite 数据库文件路径
	Path string `yaml:"path" default:"storage/database/notes.sqlite3"`
	// UserName 用户名
	UserName string `yaml:"username"`
	// Password 密码
	Password string `yaml:"password"`
	// Host 主机
	Host string `yaml:"host"`
	// Name 数据库名
	Name string `yaml:"name"`
	// TablePrefix 表前缀
	TablePrefix string `yaml:"table-prefix"`
	// AutoMigrate 是否启用自动迁移
	AutoMigrate bool `yaml:"auto-migrate" default:"true"`
	// Charset 字符集
	Charset string `yaml:"charset"`
	// ParseTime 是否解析时间
	ParseTime bool `yaml:"parse-time"`
	// MaxIdleConns 最大闲置连接数，默认 10
	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	// MaxOpenConns 最大打开连接数，默认 100
	MaxOpenConns int `yaml:"max-open-conns" default:"100"`
	// ConnMaxLifetime 连接最大生命周期，支持格式：30m（分钟）、1h（小时）
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
	// RunMode 运行模式，debug 时输出 SQL 日志
	RunMode string `yaml:"run-mode" default:"release"`
}

// SyncConfig 远端同步配置
type SyncConfig struct {
	// Enabled 是否启用远端同步
	Enabled bool `yaml:"enabled" default:"true"`
	// BaseURL 后端根地址
	BaseURL string `yaml:"base-url"`
	// Timeout 单次请求超时，支持格式：15s、1m
	Timeout string `yaml:"timeout" default:"15s"`
}

// AppSettings 应用设置
type AppSettings struct {
	// SaveDebounceDelay 编辑去抖窗口，支持格式：2s、500ms
	SaveDebounceDelay string `yaml:"save-debounce-delay" default:"2s"`
	// OrphanPruneEnable 是否启用孤儿记录清理任务
	OrphanPruneEnable bool `yaml:"orphan-prune-enable" default:"false"`
	// OrphanPruneSpec 清理任务的 cron 表达式
	OrphanPruneSpec string `yaml:"orphan-prune-spec" default:"0 3 * * *"`
}

// LoadConfig 从文件加载配置
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	c := new(AppConfig)
	c.File = realpath

	// 先填充默认值，YAML 中出现的键再覆盖；
	// 这样显式写入的 false/零值不会被默认值吃掉
	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "set default config failed")
	}

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	err = yaml.Unmarshal(file, c)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "parse config file failed")
	}

	return c, realpath, nil
}

// Default returns a config with every default applied, for embedding callers
// that do not use a config file.
// Default 返回应用了全部默认值的配置，供不使用配置文件的嵌入方使用。
func Default() *AppConfig {
	c := new(AppConfig)
	_ = defaults.Set(c)
	return c
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}

	err = os.WriteFile(c.File, data, 0644)
	if err != nil {
		return errors.Wrap(err, "write config file failed")
	}

	return nil
}

// GetDaoConfig 转换为 DAO 层数据库配置
func (c *AppConfig) GetDaoConfig() dao.DatabaseConfig {
	return dao.DatabaseConfig{
		Type:            c.Database.Type,
		Path:            c.Database.Path,
		UserName:        c.Database.UserName,
		Password:        c.Database.Password,
		Host:            c.Database.Host,
		Name:            c.Database.Name,
		TablePrefix:     c.Database.TablePrefix,
		Charset:         c.Database.Charset,
		ParseTime:       c.Database.ParseTime,
		MaxIdleConns:    c.Database.MaxIdleConns,
		MaxOpenConns:    c.Database.MaxOpenConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		RunMode:         c.Database.RunMode,
	}
}

// GetDebounceConfig 获取去抖调度器配置
func (c *AppConfig) GetDebounceConfig() debounce.Config {
	cfg := debounce.DefaultConfig()
	if c.App.SaveDebounceDelay != "" {
		if delay, err := util.ParseDuration(c.App.SaveDebounceDelay); err == nil {
			cfg.Delay = delay
		}
	}
	return cfg
}

// GetSyncTimeout 获取远端同步超时
func (c *AppConfig) GetSyncTimeout() time.Duration {
	if c.Sync.Timeout != "" {
		if timeout, err := util.ParseDuration(c.Sync.Timeout); err == nil {
			return timeout
		}
	}
	return 15 * time.Second
}

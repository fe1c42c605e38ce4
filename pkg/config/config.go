/*
 * @Description: 统一配置管理 (.env -> conf.ini -> 环境变量)
 */
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultConfigPath 默认配置文件路径
const DefaultConfigPath = "data/conf.ini"

// EnvPrefix 环境变量前缀，例如 BINARYBLOGS_STORAGE_DRIVER
const EnvPrefix = "BINARYBLOGS"

// 定义所有已知的配置键
var allKeys = []string{
	KeyServerPort, KeyServerDebug,
	KeyStorageDriver,
	KeyDBType, KeyDBHost, KeyDBPort, KeyDBUser, KeyDBPassword, KeyDBName, KeyDBDebug,
	KeyRedisAddr, KeyRedisPassword, KeyRedisDB,
	KeyJWTSecret, KeyTokenTTLMinutes,
	KeyBlogSeedDemo, KeyBlogSeedThreshold,
	KeyThemeSystemPrefersDark,
	KeyCoverExtractColor,
	KeyBackupDriver, KeyBackupDir, KeyBackupSchedule,
	KeyBackupS3Bucket, KeyBackupS3Region, KeyBackupS3Endpoint, KeyBackupS3Prefix,
	KeyBackupS3AccessKey, KeyBackupS3SecretKey,
	KeyRateLimitPerMinute, KeyRateLimitBurst,
}

const (
	KeyServerPort  = "System.Port"
	KeyServerDebug = "System.Debug"

	KeyStorageDriver = "Storage.Driver"

	KeyDBType     = "Database.Type"
	KeyDBHost     = "Database.Host"
	KeyDBPort     = "Database.Port"
	KeyDBUser     = "Database.User"
	KeyDBPassword = "Database.Password"
	KeyDBName     = "Database.Name"
	KeyDBDebug    = "Database.Debug"

	KeyRedisAddr     = "Redis.Addr"
	KeyRedisPassword = "Redis.Password"
	KeyRedisDB       = "Redis.DB"

	KeyJWTSecret       = "Auth.JWTSecret"
	KeyTokenTTLMinutes = "Auth.TokenTTLMinutes"

	KeyBlogSeedDemo      = "Blog.SeedDemo"
	KeyBlogSeedThreshold = "Blog.SeedThreshold"

	KeyThemeSystemPrefersDark = "Theme.SystemPrefersDark"

	KeyCoverExtractColor = "Cover.ExtractColor"

	KeyBackupDriver      = "Backup.Driver"
	KeyBackupDir         = "Backup.Dir"
	KeyBackupSchedule    = "Backup.Schedule"
	KeyBackupS3Bucket    = "Backup.S3Bucket"
	KeyBackupS3Region    = "Backup.S3Region"
	KeyBackupS3Endpoint  = "Backup.S3Endpoint"
	KeyBackupS3Prefix    = "Backup.S3Prefix"
	KeyBackupS3AccessKey = "Backup.S3AccessKey"
	KeyBackupS3SecretKey = "Backup.S3SecretKey"

	KeyRateLimitPerMinute = "RateLimit.PerMinute"
	KeyRateLimitBurst     = "RateLimit.Burst"
)

// defaults 是配置文件与环境变量都缺失时的内部默认值
var defaults = map[string]interface{}{
	KeyServerPort:             8091,
	KeyServerDebug:            false,
	KeyStorageDriver:          "memory",
	KeyDBType:                 "sqlite",
	KeyDBName:                 "binary_blogs.db",
	KeyRedisDB:                10,
	KeyTokenTTLMinutes:        60 * 24,
	KeyBlogSeedDemo:           true,
	KeyBlogSeedThreshold:      3,
	KeyThemeSystemPrefersDark: false,
	KeyCoverExtractColor:      false,
	KeyBackupDriver:           "local",
	KeyBackupDir:              "data/backup",
	KeyBackupS3Prefix:         "binary-blogs/",
	KeyRateLimitPerMinute:     30,
	KeyRateLimitBurst:         10,
}

type Config struct {
	vp *viper.Viper
}

// NewConfig 使用默认路径加载配置
func NewConfig() (*Config, error) {
	return Load(DefaultConfigPath)
}

// Load 依次加载 .env、ini 文件与环境变量，后者覆盖前者
func Load(filePath string) (*Config, error) {
	// .env 仅用于向进程环境注入变量，不存在时忽略
	if err := godotenv.Load(); err == nil {
		log.Println("已从 .env 文件加载环境变量。")
	}

	vp := viper.New()
	for key, value := range defaults {
		vp.SetDefault(key, value)
	}

	iniCfg, err := ini.Load(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("提示: 未找到 %s，将创建默认配置文件。", filePath)
			if err := createDefaultConfigFile(filePath); err != nil {
				log.Printf("警告: 创建默认配置文件失败: %v，将仅依赖环境变量或内部默认值。", err)
			} else {
				log.Printf("✅ 已创建默认配置文件: %s", filePath)
				iniCfg, err = ini.Load(filePath)
				if err != nil {
					log.Printf("警告: 重新加载配置文件失败: %v", err)
				}
			}
		} else {
			return nil, fmt.Errorf("错误: 解析配置文件 '%s' 失败: %w", filePath, err)
		}
	}

	if iniCfg != nil {
		for _, section := range iniCfg.Sections() {
			for _, key := range section.Keys() {
				viperKey := fmt.Sprintf("%s.%s", section.Name(), key.Name())
				if section.Name() == ini.DefaultSection {
					viperKey = key.Name()
				}
				// 空值不覆盖内部默认值
				if strings.TrimSpace(key.Value()) == "" {
					continue
				}
				vp.Set(viperKey, key.Value())
			}
		}
		log.Printf("从 %s 文件加载了配置。", filePath)
	}

	applyEnvOverrides(vp)

	log.Println("✅ 配置加载器初始化完成。")
	return &Config{vp: vp}, nil
}

// applyEnvOverrides 手动检查并覆盖环境变量
func applyEnvOverrides(vp *viper.Viper) {
	for _, key := range allKeys {
		envVarName := EnvName(key)
		if value, found := os.LookupEnv(envVarName); found {
			vp.Set(key, value)
			log.Printf("发现环境变量: %s, 已覆盖配置 '%s'。", envVarName, key)
		}
	}
}

// EnvName 返回配置键对应的环境变量名
func EnvName(key string) string {
	envReplacer := strings.NewReplacer(".", "_")
	return fmt.Sprintf("%s_%s", EnvPrefix, envReplacer.Replace(strings.ToUpper(key)))
}

// NewFromMap 直接从键值构造配置，供测试与命令行覆盖使用
func NewFromMap(values map[string]interface{}) *Config {
	vp := viper.New()
	for key, value := range defaults {
		vp.SetDefault(key, value)
	}
	for key, value := range values {
		vp.Set(key, value)
	}
	return &Config{vp: vp}
}

func (c *Config) GetString(key string) string {
	return c.vp.GetString(key)
}

func (c *Config) GetInt(key string) int {
	return c.vp.GetInt(key)
}

func (c *Config) GetBool(key string) bool {
	return c.vp.GetBool(key)
}

// Set 在运行时覆盖某个键，例如命令行参数
func (c *Config) Set(key string, value interface{}) {
	c.vp.Set(key, value)
}

// createDefaultConfigFile 创建默认的配置文件
func createDefaultConfigFile(filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	defaultConfig := `[System]
Port = 8091
Debug = false

# 快照存储后端: memory / redis / database
[Storage]
Driver = memory

[Database]
Type = sqlite
Name = binary_blogs.db
Debug = false

# Redis 配置（可选）
# 如果不配置或留空 Addr，系统将自动使用内存缓存
[Redis]
Addr =
Password =
DB = 10

# JWTSecret 留空时每次启动随机生成，重启后旧令牌失效
[Auth]
JWTSecret =
TokenTTLMinutes = 1440

[Blog]
SeedDemo = true
SeedThreshold = 3

[Theme]
SystemPrefersDark = false

[Cover]
ExtractColor = false

# Driver: local / s3，Schedule 为 6 位 cron 表达式，留空则不启用定时备份
[Backup]
Driver = local
Dir = data/backup
Schedule =
S3Bucket =
S3Region =
S3Endpoint =
S3Prefix = binary-blogs/
S3AccessKey =
S3SecretKey =

[RateLimit]
PerMinute = 30
Burst = 10
`

	if err := os.WriteFile(filePath, []byte(defaultConfig), 0644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}

	return nil
}

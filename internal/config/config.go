package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DatabasePath   string        `mapstructure:"DB_PATH"`
	BackupDir      string        `mapstructure:"BACKUP_DIR"`
	TempDir        string        `mapstructure:"TEMP_DIR"`
	NucleiLogs     string        `mapstructure:"NUCLEI_LOGS"`
	Resolvers      string        `mapstructure:"RESOLVERS"`
	MassDNSPath    string        `mapstructure:"MASSDNS_PATH"`
	Sublist3rPath  string        `mapstructure:"SUBLIST3R_PATH"`
	SubfinderPath  string        `mapstructure:"SUBFINDER_PATH"`
	AmassPath      string        `mapstructure:"AMASS_PATH"`
	OamSubsPath    string        `mapstructure:"OAM_SUBS_PATH"`
	ToolTimeout    time.Duration `mapstructure:"TOOL_TIMEOUT"`
	ResolveTimeout time.Duration `mapstructure:"RESOLVE_TIMEOUT"`
	HTTPAddr       string        `mapstructure:"HTTP_ADDR"`
}

// LoadConfig reads defaults, SUBCATALOG_* environment variables and an
// optional .env file. A fresh viper instance is used per call so loading
// never leaks state between callers.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("DB_PATH", "subcatalog.sqlite3")
	v.SetDefault("BACKUP_DIR", "backup")
	v.SetDefault("TEMP_DIR", "temp")
	v.SetDefault("NUCLEI_LOGS", "logs/nuclei_logs.txt")
	v.SetDefault("RESOLVERS", "inputs/resolvers.txt")
	v.SetDefault("MASSDNS_PATH", "massdns")
	v.SetDefault("SUBLIST3R_PATH", "sublist3r")
	v.SetDefault("SUBFINDER_PATH", "subfinder")
	v.SetDefault("AMASS_PATH", "amass")
	v.SetDefault("OAM_SUBS_PATH", "oam_subs")
	v.SetDefault("TOOL_TIMEOUT", "5m")
	v.SetDefault("RESOLVE_TIMEOUT", "30m")
	v.SetDefault("HTTP_ADDR", ":8080")

	v.SetEnvPrefix("SUBCATALOG")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetConfigFile(".env")
	// Ignore err if .env doesn't exist
	_ = v.ReadInConfig()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// TempFile returns the path of a scratch file inside TempDir.
func (c *Config) TempFile(name string) string {
	return filepath.Join(c.TempDir, name)
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Environment overrides.
const (
	EnvPort     = "BUDGET_PORT"
	EnvDataDir  = "BUDGET_DATA_DIR"
	EnvLogLevel = "BUDGET_LOG_LEVEL"
)

// AppConfig application configuration
type AppConfig struct {
	Server   ServerConfig   `toml:"server"`
	Data     DataConfig     `toml:"data"`
	Defaults DefaultsConfig `toml:"defaults"`
	Excel    ExcelConfig    `toml:"excel"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig HTTP server
type ServerConfig struct {
	Port        int      `toml:"port"`
	DevMode     bool     `toml:"dev_mode"`
	CORSOrigins []string `toml:"cors_origins"`
}

// DataConfig data directory and backups
type DataConfig struct {
	DataDir         string `toml:"data_dir"`
	AutoBackup      bool   `toml:"auto_backup"`
	BackupSchedule  string `toml:"backup_schedule"` // cron schedule
	BackupRetention int    `toml:"backup_retention"`
}

// DefaultsConfig planning defaults for a new workspace
type DefaultsConfig struct {
	FiscalYear         string  `toml:"fiscal_year"`
	LOB                string  `toml:"lob"`
	ProvisionPct       float64 `toml:"provision_pct"`
	CustomerPenaltyPct float64 `toml:"customer_penalty_pct"`
	VendorPenaltyPct   float64 `toml:"vendor_penalty_pct"`
}

// ExcelConfig export settings
type ExcelConfig struct {
	ExportDir string `toml:"export_dir"` // relative to the data dir
}

// LogConfig logger settings
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // console or json
}

// LoadConfigInfo metadata about how the configuration was loaded
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultConfig default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir:         "data",
			AutoBackup:      true,
			BackupSchedule:  "0 2 * * *",
			BackupRetention: 14,
		},
		Defaults: DefaultsConfig{
			FiscalYear: "FY25-26",
			LOB:        "FTTH",
		},
		Excel: ExcelConfig{
			ExportDir: "exports",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir directory of the running executable
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

func baseDir() string {
	dir, err := GetExeDir()
	if err != nil {
		return "."
	}
	return dir
}

// LoadConfigWithInfo loads config.toml next to the executable.
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	return LoadFrom(baseDir())
}

// LoadFrom loads dir/.env and dir/config.toml, then applies BUDGET_* overrides.
// A missing file is not an error.
func LoadFrom(dir string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: filepath.Join(dir, "config.toml")}
	config := DefaultConfig()

	// variables already set in the environment win over .env
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, info, err
	}

	data, err := os.ReadFile(info.Path)
	switch {
	case err == nil:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, err
		}
	case !os.IsNotExist(err):
		return nil, info, err
	}

	if err := applyEnv(config, &info); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

func applyEnv(config *AppConfig, info *LoadConfigInfo) error {
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 {
			return errors.New(EnvPort + " must be a positive integer")
		}
		config.Server.Port = port
		info.PortSpecified = true
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		config.Data.DataDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		config.Log.Level = v
	}
	return nil
}

// LoadConfig loads config.toml next to the executable.
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo()
	return config, err
}

// SaveConfig writes config.toml next to the executable.
func SaveConfig(config *AppConfig) error {
	configPath := filepath.Join(baseDir(), "config.toml")

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// ResolveDataDir absolute data directory; relative paths are resolved against the executable.
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	return filepath.Join(baseDir(), config.Data.DataDir)
}

// EnsureDataDir creates the data directory and its uploads, exports and backups subdirectories.
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	subdirs := []string{"uploads", config.Excel.ExportDir, "backups"}
	for _, subdir := range subdirs {
		if subdir == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Join(dataDir, subdir), 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}

// GetDataPath path of a file under the data directory
func GetDataPath(config *AppConfig, subdir, filename string) string {
	return filepath.Join(ResolveDataDir(config), subdir, filename)
}

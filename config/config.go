package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

type WebConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	JwtSecret     string `yaml:"jwt_secret"`
	SessionSecret string `yaml:"session_secret"`
}

type DBConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

// RemoteConfig points the gateway at the upstream catalog API.
type RemoteConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"` // seconds
}

type CheckoutConfig struct {
	DeliveryCost    float64 `yaml:"delivery_cost"`
	RefreshInterval int     `yaml:"refresh_interval"` // catalog refresh, seconds
}

type SmtpConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

type AppConfig struct {
	System   SysConfig      `yaml:"system"`
	Web      WebConfig      `yaml:"web"`
	Database DBConfig       `yaml:"database"`
	Remote   RemoteConfig   `yaml:"remote"`
	Checkout CheckoutConfig `yaml:"checkout"`
	Smtp     SmtpConfig     `yaml:"smtp"`
	Logger   LogConfig      `yaml:"logger"`
}

func (c *AppConfig) GetLogDir() string {
	return filepath.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return filepath.Join(c.System.Workdir, "data")
}

func (c *AppConfig) InitDirs() {
	_ = os.MkdirAll(c.GetLogDir(), 0755)
	_ = os.MkdirAll(c.GetDataDir(), 0755)
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "boody",
		Location: "Asia/Bishkek",
		Workdir:  "/var/boody",
		Debug:    true,
	},
	Web: WebConfig{
		Host:          "0.0.0.0",
		Port:          1816,
		JwtSecret:     "9b6de5cc-0731-1203-xxtx-0f568ac9da37",
		SessionSecret: "boody-session-secret",
	},
	Database: DBConfig{
		Type:     "sqlite",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "boody",
		User:     "postgres",
		Passwd:   "",
		MaxConn:  100,
		IdleConn: 10,
	},
	Remote: RemoteConfig{
		BaseURL: "https://nukesul-brepb-651f.twc1.net",
		Timeout: 30,
	},
	Checkout: CheckoutConfig{
		DeliveryCost:    200,
		RefreshInterval: 300,
	},
	Smtp: SmtpConfig{
		Enabled: false,
		Port:    587,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/boody/logs/boody.log",
	},
}

func setEnvValue(name string, val *string) {
	if evalue := os.Getenv(name); evalue != "" {
		*val = evalue
	}
}

func setEnvIntValue(name string, val *int) {
	if evalue := os.Getenv(name); evalue != "" {
		*val = cast.ToInt(evalue)
	}
}

func setEnvBoolValue(name string, val *bool) {
	if evalue := os.Getenv(name); evalue != "" {
		*val = cast.ToBool(evalue)
	}
}

// LoadConfig reads yaml configuration and applies BOODY_* environment
// overrides on top of it.
func LoadConfig(cfile string) *AppConfig {
	cfg := DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			_ = yaml.Unmarshal(data, cfg)
		}
	}

	setEnvValue("BOODY_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvBoolValue("BOODY_SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvValue("BOODY_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("BOODY_WEB_PORT", &cfg.Web.Port)
	setEnvValue("BOODY_WEB_JWT_SECRET", &cfg.Web.JwtSecret)
	setEnvValue("BOODY_WEB_SESSION_SECRET", &cfg.Web.SessionSecret)

	setEnvValue("BOODY_DB_TYPE", &cfg.Database.Type)
	setEnvValue("BOODY_DB_HOST", &cfg.Database.Host)
	setEnvIntValue("BOODY_DB_PORT", &cfg.Database.Port)
	setEnvValue("BOODY_DB_NAME", &cfg.Database.Name)
	setEnvValue("BOODY_DB_USER", &cfg.Database.User)
	setEnvValue("BOODY_DB_PWD", &cfg.Database.Passwd)

	setEnvValue("BOODY_REMOTE_BASEURL", &cfg.Remote.BaseURL)
	setEnvIntValue("BOODY_REMOTE_TIMEOUT", &cfg.Remote.Timeout)

	setEnvBoolValue("BOODY_SMTP_ENABLED", &cfg.Smtp.Enabled)
	setEnvValue("BOODY_SMTP_HOST", &cfg.Smtp.Host)
	setEnvIntValue("BOODY_SMTP_PORT", &cfg.Smtp.Port)
	setEnvValue("BOODY_SMTP_USERNAME", &cfg.Smtp.Username)
	setEnvValue("BOODY_SMTP_PASSWORD", &cfg.Smtp.Password)
	setEnvValue("BOODY_SMTP_FROM", &cfg.Smtp.From)

	setEnvValue("BOODY_LOGGER_MODE", &cfg.Logger.Mode)
	setEnvBoolValue("BOODY_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)
	setEnvValue("BOODY_LOGGER_FILENAME", &cfg.Logger.Filename)

	return cfg
}

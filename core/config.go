package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env          string
		Build        string
		Debug        bool
		TestMode     bool
		AppName      string
		SecretKey    string
		RollbarToken string
		WorkDir      string

		Server    ServerConfig
		Database  DatabaseConfig
		User      UserConfig
		Classroom ClassroomConfig
	}

	ServerConfig struct {
		Host                      string
		Address                   string
		DebugHost                 string
		DisableReqLogs            bool
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string // postgres | memory
		Driver        string // postgres (lib/pq) | pgx
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	UserConfig struct {
		UsernameMinLength int
		PasswordMinLength int
	}

	ClassroomConfig struct {
		JoinCodeLength   int
		JoinCodeAttempts int
	}
)

func (dbc DatabaseConfig) Address() string {
	return net.JoinHostPort(dbc.Host, dbc.Port)
}

// IsMemory reports whether the in-memory store was requested instead of PostgreSQL.
func (dbc DatabaseConfig) IsMemory() bool {
	return dbc.Engine == "memory"
}

func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "EconSpark")
	v.SetDefault("secretKey", "m2k=xo!8e4#v7y6u@qf-3$j0w+pz)c(dh9s&lr1g_ba5n*it")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.disableReqLogs", false)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "econspark")
	v.SetDefault("database.user", "econspark")
	v.SetDefault("database.password", "econspark")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("user.usernameMinLength", 3)
	v.SetDefault("user.passwordMinLength", 6)

	v.SetDefault("classroom.joinCodeLength", 6)
	v.SetDefault("classroom.joinCodeAttempts", 10)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:          env,
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		WorkDir:      wd,
		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			Address:                   v.GetString("server.address"),
			DebugHost:                 v.GetString("server.debugHost"),
			DisableReqLogs:            v.GetBool("server.disableReqLogs"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Driver:        v.GetString("database.driver"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		User: UserConfig{
			UsernameMinLength: v.GetInt("user.usernameMinLength"),
			PasswordMinLength: v.GetInt("user.passwordMinLength"),
		},
		Classroom: ClassroomConfig{
			JoinCodeLength:   v.GetInt("classroom.joinCodeLength"),
			JoinCodeAttempts: v.GetInt("classroom.joinCodeAttempts"),
		},
	}
}

// NewTestConfig returns a Config suitable for unit tests; it never touches the environment.
func NewTestConfig() *Config {
	return &Config{
		Env:       "TEST",
		Build:     "test",
		TestMode:  true,
		AppName:   "EconSpark",
		SecretKey: "secret",
		Server: ServerConfig{
			DisableReqLogs:            true,
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
		Database:  DatabaseConfig{Engine: "memory"},
		User:      UserConfig{UsernameMinLength: 3, PasswordMinLength: 6},
		Classroom: ClassroomConfig{JoinCodeLength: 6, JoinCodeAttempts: 10},
	}
}

package main

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"kitchenware-market.backend/internal/config"
	plog "kitchenware-market.backend/pkg/logger"
	"kitchenware-market.backend/pkg/redis"
)

func withMainHooks(t *testing.T) {
	t.Helper()
	origLoadDotenv := loadDotenv
	origLoadCfg := loadCfg
	origInitLog := initLog
	origInitRedis := initRedis
	origOpenDB := openDB
	origNewSessionStore := newSessionStore
	origRunServer := runServer

	t.Cleanup(func() {
		loadDotenv = origLoadDotenv
		loadCfg = origLoadCfg
		initLog = origInitLog
		initRedis = origInitRedis
		openDB = origOpenDB
		newSessionStore = origNewSessionStore
		runServer = origRunServer
		redis.SetClient(nil)
	})

	loadDotenv = func(...string) error { return errors.New("no .env") }
	initLog = plog.Init
}

func baseTestConfig(t *testing.T) func() *config.Config {
	mediaRoot := t.TempDir()
	return func() *config.Config {
		return &config.Config{
			Server: config.ServerConfig{Port: "18080", Env: "development"},
			Database: config.DatabaseConfig{
				Driver: "sqlite",
			},
			Redis: config.RedisConfig{URL: "redis://localhost:6379"},
			JWT: config.JWTConfig{
				Secret:        "secret",
				AccessExpiry:  15 * time.Minute,
				RefreshExpiry: 24 * time.Hour,
			},
			Security: config.SecurityConfig{
				SessionEncryptionKey: "0000000000000000000000000000000000000000000000000000000000000000",
			},
			Media: config.MediaConfig{
				Root:           mediaRoot,
				PublicPrefix:   "/media",
				MaxUploadBytes: 1024,
			},
		}
	}
}

func memoryDB(name string) func(config.DatabaseConfig) (*gorm.DB, error) {
	return func(config.DatabaseConfig) (*gorm.DB, error) {
		dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	}
}

func TestRunMainProcess_RedisInitError(t *testing.T) {
	withMainHooks(t)
	cfg := baseTestConfig(t)
	loadCfg = func() *config.Config {
		c := cfg()
		c.Redis.Enabled = true
		return c
	}
	initRedis = func(string, string) error { return errors.New("redis down") }

	err := runMainProcess()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
}

func TestRunMainProcess_DBOpenError(t *testing.T) {
	withMainHooks(t)
	loadCfg = baseTestConfig(t)
	openDB = func(config.DatabaseConfig) (*gorm.DB, error) { return nil, errors.New("db open failed") }

	err := runMainProcess()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database")
}

func TestRunMainProcess_SessionStoreError(t *testing.T) {
	withMainHooks(t)
	srv := miniredis.RunT(t)
	cfg := baseTestConfig(t)
	loadCfg = func() *config.Config {
		c := cfg()
		c.Redis.Enabled = true
		c.Redis.URL = "redis://" + srv.Addr()
		return c
	}
	openDB = memoryDB("main_session")
	newSessionStore = func(string) (*redis.SessionStore, error) { return nil, errors.New("bad session key") }

	err := runMainProcess()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session store")
}

func TestRunMainProcess_ServerRunError(t *testing.T) {
	withMainHooks(t)
	loadCfg = baseTestConfig(t)
	openDB = memoryDB("main_run")
	runServer = func(*gin.Engine, string) error { return errors.New("listen failed") }

	err := runMainProcess()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen failed")
}

func TestRunMainProcess_SuccessPath(t *testing.T) {
	withMainHooks(t)
	srv := miniredis.RunT(t)
	cfg := baseTestConfig(t)
	loadCfg = func() *config.Config {
		c := cfg()
		c.Redis.Enabled = true
		c.Redis.URL = "redis://" + srv.Addr()
		c.Jobs = config.JobsConfig{OrphanSweepEnabled: true, OrphanSweepInterval: time.Hour, OrphanGracePeriod: time.Hour}
		return c
	}
	openDB = memoryDB("main_success")

	var routes gin.RoutesInfo
	runServer = func(r *gin.Engine, port string) error {
		routes = r.Routes()
		assert.Equal(t, "18080", port)
		return nil
	}

	require.NoError(t, runMainProcess())
	assert.NotEmpty(t, routes)
}

func TestRunMainProcess_WithoutRedis(t *testing.T) {
	withMainHooks(t)
	loadCfg = baseTestConfig(t)
	openDB = memoryDB("main_noredis")
	initRedis = func(string, string) error {
		t.Error("redis must not be initialized when disabled")
		return nil
	}
	runServer = func(*gin.Engine, string) error { return nil }

	require.NoError(t, runMainProcess())
}

package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/emprestei/pkg/config"
)

// chdir stands in for testing.T.Chdir (Go 1.24+): it switches the working
// directory for the duration of the test and restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoad_ValoresPorDefecto(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, config.DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, "http://localhost:8080", cfg.Client.APIURL)
	assert.Equal(t, "/tmp/xdg/emprestei/session", cfg.Client.SessionFile)
}

func TestLoad_EnvTienePrioridad(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DB_DRIVER", "MEMORY")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("EMPRESTEI_API_URL", "http://api.local:9090/")
	t.Setenv("JWT_SECRET", "s3cr3t")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.DriverMemory, cfg.DB.Driver)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "http://api.local:9090", cfg.Client.APIURL, "se quita la barra final")
	assert.Equal(t, "s3cr3t", cfg.JWT.Secret)
}

func TestLoad_DriverInvalido(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DB_DRIVER", "mysql")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSN_EscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/word", DBName: "emprestei", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/emprestei?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://otra"
	assert.Equal(t, "postgres://otra", c.ConnectionString())
}

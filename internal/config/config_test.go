package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigSecretFromEnv(t *testing.T) {

	t.Setenv("SECRET_KEY", "supersecret")
	t.Setenv("RUN_ADDRESS", "localhost:9999")
	t.Setenv("DATABASE_URI", "postgres://test")

	conf, err := newConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, []byte("supersecret"), conf.Secret)
	assert.Equal(t, "localhost:9999", conf.RunAddress)
	assert.Equal(t, "postgres://test", conf.DatabaseDSN)
}

func TestNewConfigSecretFromFlag(t *testing.T) {

	t.Setenv("SECRET_KEY", "")

	conf, err := newConfig([]string{"-s", "flagsecret", "-a", "localhost:8081"})
	require.NoError(t, err)

	assert.Equal(t, []byte("flagsecret"), conf.Secret)
	assert.Equal(t, "localhost:8081", conf.RunAddress)
}

func TestNewConfigEnvWinsOverFlag(t *testing.T) {

	t.Setenv("SECRET_KEY", "envsecret")

	conf, err := newConfig([]string{"-s", "flagsecret"})
	require.NoError(t, err)

	assert.Equal(t, []byte("envsecret"), conf.Secret)
}

func TestNewConfigMissingSecret(t *testing.T) {

	t.Setenv("SECRET_KEY", "")

	_, err := newConfig(nil)
	assert.Error(t, err)
}

func TestNewConfigDefaults(t *testing.T) {

	t.Setenv("SECRET_KEY", "supersecret")
	t.Setenv("RUN_ADDRESS", "")
	t.Setenv("DATABASE_URI", "")

	conf, err := newConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", conf.RunAddress)
	assert.Equal(t, 86400, conf.AuthCookieExpiresIn)
	assert.Equal(t, "localhost:9000", conf.FileStore.Endpoint)
}

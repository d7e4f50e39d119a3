package server

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/bookmate-auth/internal/common"
	"github.com/dmitrijs2005/bookmate-auth/internal/server/config"
)

func memoryConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.StorageBackend = config.StorageBackendMemory
	c.NotifierBackend = config.NotifierBackendLog
	c.PasswordHashCost = 4
	c.JWTSigningKey = "k"
	c.JWTIssuer = "bookmate"
	c.JWTAudience = "bookmate-clients"
	return c
}

func TestNewApp_MissingTokenConfig(t *testing.T) {
	c := memoryConfig()
	c.JWTSigningKey = ""

	_, err := NewApp(context.Background(), c, &bytes.Buffer{})
	assert.ErrorIs(t, err, common.ErrConfigurationMissing)
}

func TestNewApp_BadHasherSettings(t *testing.T) {
	c := memoryConfig()
	c.PasswordHashAlgorithm = "md5"

	_, err := NewApp(context.Background(), c, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hasher init error")
}

func TestNewApp_BadLogLevel(t *testing.T) {
	c := memoryConfig()
	c.LogLevel = "loud"

	_, err := NewApp(context.Background(), c, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logger init error")
}

func TestNewApp_SMTPNotifier(t *testing.T) {
	c := memoryConfig()
	c.NotifierBackend = config.NotifierBackendSMTP
	c.SMTPHost = "smtp.example.com"
	c.SMTPSender = "noreply@example.com"

	app, err := NewApp(context.Background(), c, &bytes.Buffer{})
	require.NoError(t, err)
	require.NotNil(t, app.server)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	var logs bytes.Buffer
	app, err := NewApp(context.Background(), memoryConfig(), &logs)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(150 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(7 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
	assert.Contains(t, logs.String(), "Starting app...")
}

func TestApp_RunFailsOnBusyAddress(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	c := memoryConfig()
	c.EndpointAddrHTTP = ln.Addr().String()

	app, err := NewApp(context.Background(), c, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Error(t, app.Run(context.Background()))
}

package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	t.Run("tls url with embedded password", func(t *testing.T) {
		opts, err := options(Config{URL: "rediss://default:pw@eu1.upstash.io"})
		require.NoError(t, err)
		assert.Equal(t, "eu1.upstash.io:6379", opts.Addr)
		assert.Equal(t, "pw", opts.Password)
		assert.NotNil(t, opts.TLSConfig)
	})

	t.Run("explicit password wins", func(t *testing.T) {
		opts, err := options(Config{URL: "redis://:pw@localhost:6380", Password: "other"})
		require.NoError(t, err)
		assert.Equal(t, "localhost:6380", opts.Addr)
		assert.Equal(t, "other", opts.Password)
		assert.Nil(t, opts.TLSConfig)
	})

	t.Run("missing url", func(t *testing.T) {
		_, err := options(Config{})
		assert.Error(t, err)
	})
}

func TestHealthCheckWithoutClient(t *testing.T) {
	assert.Nil(t, Client())
	assert.NoError(t, HealthCheck(context.Background()))
	assert.NoError(t, Close())
}

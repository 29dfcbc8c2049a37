package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ticketlab/gatehouse/config"
)

func TestNewClusterClient(t *testing.T) {
	t.Run("requires explicit nodes", func(t *testing.T) {
		_, _, err := newClusterClient(config.RedisConfig{UseCluster: true, URI: "redis://ignored:6379"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "REDIS_CLUSTER_NODES")
	})

	t.Run("normalizes node list", func(t *testing.T) {
		client, desc, err := newClusterClient(config.RedisConfig{
			ClusterNodes: []string{" a:6379 ", "", "b:6379"},
		})
		require.NoError(t, err)
		defer func() { _ = client.Close() }()
		assert.Equal(t, "cluster:a:6379,b:6379", desc)
	})
}

func TestNewDirectClient(t *testing.T) {
	t.Run("redis url", func(t *testing.T) {
		client, addr, err := newDirectClient(config.RedisConfig{URI: "redis://:secret@localhost:6390/0"})
		require.NoError(t, err)
		defer func() { _ = client.Close() }()
		assert.Equal(t, "localhost:6390", addr)
	})

	t.Run("bare host and port", func(t *testing.T) {
		client, addr, err := newDirectClient(config.RedisConfig{URI: "localhost:6379", Password: "pw"})
		require.NoError(t, err)
		defer func() { _ = client.Close() }()
		assert.Equal(t, "localhost:6379", addr)
	})

	t.Run("empty uri rejected", func(t *testing.T) {
		_, _, err := newDirectClient(config.RedisConfig{})
		require.Error(t, err)
	})
}

func TestNewSentinelClientRequiresNodes(t *testing.T) {
	_, _, err := newSentinelClient(config.RedisConfig{UseSentinel: true})
	require.Error(t, err)
}

package conversationstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestValkeyStoreKeys(t *testing.T) {
	s := NewValkeyStore(nil, "", time.Hour)
	require.Equal(t, "lumee:conversation:s1", s.key("s1"))

	custom := NewValkeyStore(nil, "tenant-a:chat", time.Hour)
	require.Equal(t, "tenant-a:chat:s1", custom.key("s1"))
}

func TestTTLSeconds(t *testing.T) {
	require.Equal(t, int64(1), ttlSeconds(200*time.Millisecond))
	require.Equal(t, int64(90), ttlSeconds(90*time.Second))
	require.Equal(t, int64(21600), ttlSeconds(6*time.Hour))
}

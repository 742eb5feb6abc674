package statsd

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix, name, want string
	}{
		{"portal", "auth.login", "portal.auth.login"},
		{"", " gate/decision ", "gate_decision"},
		{"portal", "foo..bar", "portal.foo.bar"},
		{"portal", "", ""},
		{"portal", "..", "portal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, metricName(tt.prefix, tt.name), "%q + %q", tt.prefix, tt.name)
	}
}

func TestLine_MergesAndSortsTags(t *testing.T) {
	t.Parallel()

	c, err := NewClient(Config{Prefix: " .portal. ", GlobalTags: map[string]string{"env": "prod", " service ": " portal "}})
	require.NoError(t, err)

	got := c.Line("auth.login", "1|c", map[string]string{"env": "stage", "": "dropped", "result": " success "})
	assert.Equal(t, "portal.auth.login:1|c|#env:stage,result:success,service:portal", got)
}

func TestClient_DisabledIsSilent(t *testing.T) {
	t.Parallel()

	c, err := NewClient(Config{Enabled: false, Address: "127.0.0.1:8125"})
	require.NoError(t, err)
	assert.False(t, c.Enabled())
	c.Count("x", 1, nil)
	require.NoError(t, c.Close())

	var nilClient *Client
	nilClient.Count("x", 1, nil)
	nilClient.Timing("x", time.Second, nil)
	assert.False(t, nilClient.Enabled())
}

func TestClient_SendsOverUDP(t *testing.T) {
	t.Parallel()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	c, err := NewClient(Config{Enabled: true, Address: pc.LocalAddr().String(), Prefix: "portal"})
	require.NoError(t, err)
	defer c.Close()
	require.True(t, c.Enabled())

	c.Timing("auth.login.duration", 1500*time.Microsecond, map[string]string{"result": "success"})

	buf := make([]byte, 512)
	require.NoError(t, pc.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err := pc.ReadFrom(buf)
	require.NoError(t, err)
	line := string(buf[:n])
	assert.True(t, strings.HasPrefix(line, "portal.auth.login.duration:1.5|ms"), line)
	assert.Contains(t, line, "|#result:success")
}

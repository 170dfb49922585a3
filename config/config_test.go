package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testTree() MapConfig {
	return MapConfig{
		"sessions": map[string]any{
			"client1": map[string]any{
				"enabled":            true,
				"max_reconnects":     int64(5),
				"sender_comp_id":     "CLIENT1",
				"heartbeat_interval": "30s",
				"markets":            []any{"XNAS", "XNYS"},
			},
		},
	}
}

func TestMapConfigHasPathAndScalars(t *testing.T) {
	c := testTree()

	require.True(t, c.HasPath("sessions.client1.enabled"))
	require.False(t, c.HasPath("sessions.client1.missing"))
	require.True(t, c.GetBool("sessions.client1.enabled"))
	require.Equal(t, 5, c.GetInt("sessions.client1.max_reconnects"))
	require.Equal(t, "CLIENT1", c.GetString("sessions.client1.sender_comp_id"))
	require.Equal(t, 30*time.Second, c.GetDuration("sessions.client1.heartbeat_interval"))
}

func TestMapConfigStringList(t *testing.T) {
	c := testTree()
	got := c.GetConfig("sessions.client1").GetStringList("markets")
	require.Equal(t, []string{"XNAS", "XNYS"}, got)
}

func TestMapConfigSubtree(t *testing.T) {
	c := testTree()
	sub := c.GetConfig("sessions.client1")
	require.Equal(t, "CLIENT1", sub.GetString("sender_comp_id"))

	missing := c.GetConfig("sessions.nonexistent")
	require.False(t, missing.HasPath("anything"), "GetConfig on a missing path should return an empty Config")
	require.Equal(t, "", missing.GetString("x"))
	require.Equal(t, 0, missing.GetInt("x"))
}

func TestMapConfigMissingDefaults(t *testing.T) {
	c := MapConfig{}
	require.False(t, c.GetBool("x"))
	require.Equal(t, 0, c.GetInt("x"))
	require.Equal(t, time.Duration(0), c.GetDuration("x"))
	require.Nil(t, c.GetStringList("x"))
}

func TestMapConfigDurationFromMilliseconds(t *testing.T) {
	c := MapConfig{"timeout": 1500}
	require.Equal(t, 1500*time.Millisecond, c.GetDuration("timeout"))
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ARTIFACT_SWEEP_CRON", "0 3 * * *")
	t.Setenv("ARTIFACT_ORPHAN_GRACE", "36h")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0 3 * * *", cfg.Scheduler.ArtifactSweepCron)
	assert.Equal(t, 36*time.Hour, cfg.Scheduler.OrphanGracePeriod)
}

func TestLoadConfigRejectsBadSweepCron(t *testing.T) {
	t.Setenv("ARTIFACT_SWEEP_CRON", "every night")

	_, err := LoadConfig()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ARTIFACT_SWEEP_CRON")
}

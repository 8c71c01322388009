package conf

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDuration_JSON(t *testing.T) {
	t.Parallel()

	t.Run("marshal", func(t *testing.T) {
		t.Parallel()
		b, err := json.Marshal(Duration(30 * time.Second))
		require.NoError(t, err)
		assert.Equal(t, `"30s"`, string(b))
	})

	t.Run("unmarshal string", func(t *testing.T) {
		t.Parallel()
		var d Duration
		require.NoError(t, json.Unmarshal([]byte(`"1h30m"`), &d))
		assert.Equal(t, Duration(time.Hour+30*time.Minute), d)
	})

	t.Run("null resets to zero", func(t *testing.T) {
		t.Parallel()
		d := Duration(30 * time.Second)
		require.NoError(t, json.Unmarshal([]byte(`null`), &d))
		assert.Equal(t, Duration(0), d)
	})

	t.Run("invalid values rejected", func(t *testing.T) {
		t.Parallel()
		var d Duration
		assert.Error(t, json.Unmarshal([]byte(`"notaduration"`), &d))
		assert.Error(t, json.Unmarshal([]byte(`true`), &d))
	})
}

func TestDuration_YAML(t *testing.T) {
	t.Parallel()

	type config struct {
		Timeout Duration `yaml:"timeout"`
	}

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		original := config{Timeout: Duration(45 * time.Second)}
		b, err := yaml.Marshal(original)
		require.NoError(t, err)
		assert.Contains(t, string(b), "45s")

		var result config
		require.NoError(t, yaml.Unmarshal(b, &result))
		assert.Equal(t, original.Timeout, result.Timeout)
	})

	t.Run("missing unit rejected", func(t *testing.T) {
		t.Parallel()
		var result config
		assert.Error(t, yaml.Unmarshal([]byte("timeout: 300"), &result))
	})
}

func TestDuration_Std(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 30*time.Second, Duration(30*time.Second).Std())
}

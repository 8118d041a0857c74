package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Key      string        `env:"SAMPLE_KEY,required,notEmpty"`
	Mode     string        `env:"SAMPLE_MODE" envDefault:"creation"`
	Size     int           `env:"SAMPLE_SIZE"`
	Ratio    float64       `env:"SAMPLE_RATIO"`
	Enabled  bool          `env:"SAMPLE_ENABLED"`
	Timeout  time.Duration `env:"SAMPLE_TIMEOUT"`
	Prompt   string        `env:"SAMPLE_PROMPT"`
	Untagged string
	hidden   string `env:"SAMPLE_HIDDEN"`
}

type other struct {
	Token string `env:"OTHER_TOKEN"`
}

func TestMarshalEnv(t *testing.T) {
	s := &sample{
		Key:      "sk-123",
		Size:     1000,
		Ratio:    0.86,
		Enabled:  true,
		Timeout:  15 * time.Second,
		Prompt:   "be brief # really",
		Untagged: "skip",
		hidden:   "skip",
	}

	got, err := MarshalEnv(s, &other{Token: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "SAMPLE_KEY=sk-123\n"+
		"SAMPLE_SIZE=1000\n"+
		"SAMPLE_RATIO=0.86\n"+
		"SAMPLE_ENABLED=true\n"+
		"SAMPLE_TIMEOUT=15s\n"+
		"SAMPLE_PROMPT=\"be brief # really\"\n"+
		"OTHER_TOKEN=abc\n", got)
}

func TestMarshalEnv_Empty(t *testing.T) {
	got, err := MarshalEnv(&other{})
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = MarshalEnv(other{})
	assert.Error(t, err)
}

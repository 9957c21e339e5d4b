package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inner struct {
	Retries int `env:"RETRIES"`
}

type sample struct {
	Path     string        `env:"RUNTIME_PATH"`
	Size     int           `env:"HISTORY_SIZE"`
	Timeout  time.Duration `env:"TIMEOUT"`
	Enabled  bool          `env:"ENABLED"`
	Disabled bool          `env:"DISABLED"`
	Token    string        `env:"TOKEN,required"`
	Name     string        `env:"NAME"`
	Tags     []string      `env:"TAGS"`
	Nested   inner
	Ignored  string
	hidden   string `env:"HIDDEN"`
}

func TestMarshalEnv(t *testing.T) {
	s := &sample{
		Path:    ".ctxbroker",
		Size:    10,
		Timeout: 30 * time.Second,
		Enabled: true,
		Token:   "abc",
		Name:    "my bot",
		Tags:    []string{"a", "b"},
		Nested:  inner{Retries: 3},
		Ignored: "x",
		hidden:  "y",
	}

	out, err := MarshalEnv(s, &inner{Retries: 5})
	require.NoError(t, err)
	assert.Equal(t, `RUNTIME_PATH=.ctxbroker
HISTORY_SIZE=10
TIMEOUT=30s
ENABLED=true
TOKEN=abc
NAME="my bot"
TAGS=a,b
RETRIES=3
RETRIES=5
`, out)
}

func TestMarshalEnv_Empty(t *testing.T) {
	out, err := MarshalEnv(&sample{})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestMarshalEnv_RejectsNonPointer(t *testing.T) {
	_, err := MarshalEnv(sample{})
	assert.Error(t, err)
}

type defaults struct {
	EnableCLI   bool   `env:"ENABLE_CLI" envDefault:"true"`
	EnableBot   bool   `env:"ENABLE_BOT" envDefault:"false"`
	HistorySize int    `env:"HISTORY_SIZE" envDefault:"10"`
	Persistence string `env:"PERSISTENCE" envDefault:"json"`
}

func TestMarshalEnv_ZeroOverridesDefault(t *testing.T) {
	out, err := MarshalEnv(&defaults{})
	require.NoError(t, err)
	assert.Equal(t, "ENABLE_CLI=false\nHISTORY_SIZE=0\n", out)
}

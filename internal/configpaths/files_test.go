package configpaths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidatePathsOrder(t *testing.T) {
	cfgHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgHome)
	wd := t.TempDir()
	t.Chdir(wd)

	paths := CandidatePaths("/etc/prober.yaml")
	require.Len(t, paths, 9)
	assert.Equal(t, filepath.Join(cfgHome, "protoprober", "config.json"), paths[0])
	assert.Equal(t, filepath.Join(cfgHome, "protoprober", "config.toml"), paths[3])
	assert.Equal(t, ".protoprober.json", filepath.Base(paths[4]))
	assert.Equal(t, ".protoprober.toml", filepath.Base(paths[7]))
	assert.Equal(t, "/etc/prober.yaml", paths[8])

	assert.Len(t, CandidatePaths(""), 8)
}

type sample struct {
	Out       string
	UnaryOnly bool
	Seed      uint64
	Log       struct {
		Level string
	} `embed:"" prefix:"log."`
}

func TestLoaders(t *testing.T) {
	tests := map[string]string{
		"config.json": `{"out": "gen", "unary_only": true, "seed": 7, "log": {"level": "debug"}}`,
		"config.yaml": "out: gen\nunary_only: true\nseed: 7\nlog:\n  level: debug\n",
		"config.yml":  "out: gen\nunary_only: true\nseed: 7\nlog:\n  level: debug\n",
		"config.toml": "out = \"gen\"\nunary_only = true\nseed = 7\n\n[log]\nlevel = \"debug\"\n",
		"config.conf": `{"out": "gen", "unary_only": true, "seed": 7, "log": {"level": "debug"}}`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			var cli sample
			parser, err := kong.New(&cli, kong.Configuration(Loader(path), path))
			require.NoError(t, err)
			_, err = parser.Parse(nil)
			require.NoError(t, err)

			assert.Equal(t, "gen", cli.Out)
			assert.True(t, cli.UnaryOnly)
			assert.Equal(t, uint64(7), cli.Seed)
			assert.Equal(t, "debug", cli.Log.Level)
		})
	}
}

func TestLoaderRejectsMalformed(t *testing.T) {
	_, err := YAML(strings.NewReader("out: [unterminated"))
	require.ErrorContains(t, err, "decode yaml config")
	_, err = TOML(strings.NewReader("out = "))
	require.ErrorContains(t, err, "decode toml config")
}

func TestEmptyYAML(t *testing.T) {
	r, err := YAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestOptionsPriority(t *testing.T) {
	cfgHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgHome)
	wd := t.TempDir()
	t.Chdir(wd)

	require.NoError(t, os.MkdirAll(filepath.Join(cfgHome, "protoprober"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgHome, "protoprober", "config.toml"),
		[]byte("out = \"from-home\"\nseed = 3\nunary_only = true\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(wd, ".protoprober.json"),
		[]byte(`{"out": "from-cwd", "seed": 5}`), 0o644))
	user := filepath.Join(t.TempDir(), "user.yaml")
	require.NoError(t, os.WriteFile(user, []byte("out: from-user\n"), 0o644))

	var cli sample
	parser, err := kong.New(&cli, Options(user)...)
	require.NoError(t, err)
	_, err = parser.Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, "from-user", cli.Out)
	assert.Equal(t, uint64(5), cli.Seed)
	assert.True(t, cli.UnaryOnly)
}

func TestFindUserConfig(t *testing.T) {
	t.Setenv("PROTOPROBER_CONFIG", "/env/config.toml")

	assert.Equal(t, "a.yaml", FindUserConfig([]string{"generate", "--config=a.yaml"}))
	assert.Equal(t, "b.toml", FindUserConfig([]string{"--config", "b.toml", "x.proto"}))
	assert.Equal(t, "/env/config.toml", FindUserConfig([]string{"x.proto"}))
	assert.Equal(t, "/env/config.toml", FindUserConfig([]string{"--config"}))
}

package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/jptrs93/protoprober/internal/configpaths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"
)

const echoProto = `syntax = "proto3";

package echo;

option go_package = "example.com/echo;echo";

message Ping {
  string text = 1;
  int64 count = 2;
}

service Echo {
  rpc Say(Ping) returns (Ping);
  rpc Stream(stream Ping) returns (stream Ping);
}
`

func writeProto(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "echo.proto"), []byte(echoProto), 0o644))
	return dir
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestGenerateWritesEveryBackend(t *testing.T) {
	src := writeProto(t)
	out := t.TempDir()

	g := &Generate{
		Input: Input{Protos: []string{"echo.proto"}, ImportPaths: []string{src}},
		Lang:  []string{"all"},
		Out:   out,
		Jobs:  2,
	}
	require.NoError(t, g.Run(context.Background(), discard()))

	for _, name := range []string{
		"echo.grpc.client.pb.cc",
		"echo.grpc.client.pb.go",
		"echo.grpc.client.pb.py",
		"echo.grpc.client.pb.js",
	} {
		data, err := os.ReadFile(filepath.Join(out, name))
		require.NoError(t, err, name)
		assert.Contains(t, string(data), "Say", name)
	}
}

func TestGenerateUnaryOnly(t *testing.T) {
	src := writeProto(t)
	out := t.TempDir()

	g := &Generate{
		Input:     Input{Protos: []string{"echo.proto"}, ImportPaths: []string{src}},
		Lang:      []string{"python"},
		Out:       out,
		UnaryOnly: true,
		Jobs:      1,
	}
	require.NoError(t, g.Run(context.Background(), discard()))

	data, err := os.ReadFile(filepath.Join(out, "echo.grpc.client.pb.py"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Probing bidirectional streaming methods is not yet supported!!")
	_, err = os.Stat(filepath.Join(out, "echo.grpc.client.pb.go"))
	assert.True(t, os.IsNotExist(err))
}

func TestGenerateErrors(t *testing.T) {
	src := writeProto(t)

	g := &Generate{Input: Input{Protos: []string{"echo.proto"}, ImportPaths: []string{src}}, Lang: []string{"rust"}, Out: t.TempDir()}
	require.ErrorContains(t, g.Run(context.Background(), discard()), `unknown backend "rust"`)

	g = &Generate{Input: Input{Protos: []string{"missing.proto"}, ImportPaths: []string{src}}, Lang: []string{"go"}, Out: t.TempDir()}
	require.Error(t, g.Run(context.Background(), discard()))

	g = &Generate{Lang: []string{"go"}, Out: t.TempDir()}
	require.ErrorContains(t, g.Run(context.Background(), discard()), "no proto files provided")
}

func TestDescribe(t *testing.T) {
	src := writeProto(t)
	var buf bytes.Buffer

	d := &Describe{Input: Input{Protos: []string{"echo.proto"}, ImportPaths: []string{src}}, out: &buf}
	require.NoError(t, d.Run(context.Background(), discard()))

	var files []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &files))
	require.Len(t, files, 1)
	assert.Equal(t, "echo.proto", files[0]["path"])
	assert.Equal(t, "example.com/echo", files[0]["go_import_path"])
	assert.NotContains(t, files[0], "imported")
	assert.Contains(t, buf.String(), "kind: int64")
	assert.Contains(t, buf.String(), "client_streaming: true")
}

func TestListBackends(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&ListBackends{out: &buf}).Run())

	s := buf.String()
	assert.Contains(t, s, "NAME")
	for _, want := range []string{"cpp", ".grpc.client.pb.cc", "node", ".grpc.client.pb.js", "all shapes"} {
		assert.Contains(t, s, want)
	}
}

func TestConfigInit(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "conf", "protoprober.yaml")

	c := &ConfigInit{Format: "yml", Output: dest}
	require.NoError(t, c.Run())
	require.ErrorContains(t, c.Run(), "destination exists")

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var root map[string]any
	require.NoError(t, yaml.Unmarshal(data, &root))
	assert.Equal(t, []any{"all"}, root["lang"])
	assert.Equal(t, []any{"."}, root["proto_path"])
	assert.Equal(t, false, root["unary_only"])
	assert.Equal(t, map[string]any{"level": "info", "file": ""}, root["log"])
	assert.NotContains(t, root, "proto")

	c.Force = true
	c.Format = "toml"
	require.NoError(t, c.Run())
}

func TestConfigFileDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"out": "gen", "unary_only": true, "log": {"level": "debug"}}`), 0o644))

	var cli CLI
	parser, err := kong.New(&cli, kong.Configuration(kong.JSON, path))
	require.NoError(t, err)
	_, err = parser.Parse([]string{"echo.proto", "--lang", "go"})
	require.NoError(t, err)

	assert.Equal(t, []string{"echo.proto"}, cli.Generate.Protos)
	assert.Equal(t, "gen", cli.Generate.Out)
	assert.True(t, cli.Generate.UnaryOnly)
	assert.Equal(t, []string{"go"}, cli.Generate.Lang)
	assert.Equal(t, []string{"."}, cli.Generate.ImportPaths)
	assert.Equal(t, "debug", cli.Log.Level)
}

func TestConfigFilePriority(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("PROTOPROBER_CONFIG", "")
	wd := t.TempDir()
	t.Chdir(wd)

	require.NoError(t, os.WriteFile(filepath.Join(wd, ".protoprober.json"),
		[]byte(`{"out": "from-cwd-json", "seed": 9}`), 0o644))
	userPath := filepath.Join(t.TempDir(), "user.yaml")
	require.NoError(t, os.WriteFile(userPath, []byte("out: from-user-yaml\nlog:\n  level: warn\n"), 0o644))

	args := []string{"--config", userPath, "echo.proto"}
	var cli CLI
	parser, err := kong.New(&cli, configpaths.Options(configpaths.FindUserConfig(args))...)
	require.NoError(t, err)
	_, err = parser.Parse(args)
	require.NoError(t, err)

	assert.Equal(t, "from-user-yaml", cli.Generate.Out)
	assert.Equal(t, uint64(9), cli.Generate.Seed)
	assert.Equal(t, "warn", cli.Log.Level)
}

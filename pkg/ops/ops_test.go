package ops

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/nicklasfrahm/shex/pkg/config"
	"github.com/nicklasfrahm/shex/pkg/rexec"
	"github.com/nicklasfrahm/shex/pkg/sshx"
	"github.com/nicklasfrahm/shex/pkg/sshx/sshtest"
)

func writeConfig(t *testing.T, cfg *config.Config) Option {
	t.Helper()

	content, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), DefaultConfigPath)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	return WithConfigPath(path)
}

func TestRun(t *testing.T) {
	withConfig := writeConfig(t, config.Default())

	result, err := Run(context.Background(), "echo hello; exit 4", rexec.Params{}, withConfig)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Status)
	assert.Equal(t, "hello\n", result.Stdout)

	result, err = MustRun(context.Background(), "exit 4", rexec.Params{}, withConfig)
	assert.ErrorIs(t, err, rexec.ErrCommand)
	assert.Equal(t, 4, result.Status)
}

func TestCommand(t *testing.T) {
	withConfig := writeConfig(t, &config.Config{Transport: config.TransportShell, ConnectTimeout: 7 * time.Second})

	line, err := Command("uptime", rexec.Params{Host: "web1"}, withConfig)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, "ssh -T -q "))
	assert.Contains(t, line, `ConnectTimeout\=7`)
	assert.True(t, strings.HasSuffix(line, " web1 uptime"))
}

func TestConfigErrors(t *testing.T) {
	_, err := Run(context.Background(), "true", rexec.Params{}, WithConfigPath(filepath.Join(t.TempDir(), "missing.yml")))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Run(context.Background(), "true", rexec.Params{}, writeConfig(t, &config.Config{Transport: "telnet"}))
	assert.Error(t, err)

	_, err = Run(context.Background(), "true", rexec.Params{}, WithConfigPath(""))
	assert.Error(t, err)
}

func TestDefaultConfigPathMayBeAbsent(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })

	result, err := Run(context.Background(), "echo ok", rexec.Params{})
	require.NoError(t, err)
	assert.Equal(t, "ok\n", result.Stdout)
}

func TestFileOperations(t *testing.T) {
	withConfig := writeConfig(t, config.Default())
	ctx := context.Background()
	root := t.TempDir()

	ok, err := Test(ctx, root, rexec.Params{Dir: true}, withConfig)
	require.NoError(t, err)
	assert.True(t, ok)

	src := filepath.Join(root, "src")
	require.NoError(t, os.WriteFile(src, []byte("content"), 0o600))
	dst := filepath.Join(root, "installed")

	require.NoError(t, Install(ctx, src, dst, rexec.Params{Permissions: "0600"}, withConfig))
	ok, err = Test(ctx, dst, rexec.Params{}, withConfig)
	require.NoError(t, err)
	assert.True(t, ok)

	from := filepath.Join(root, "from")
	to := filepath.Join(root, "to")
	require.NoError(t, os.Mkdir(from, 0o755))
	require.NoError(t, Replace(ctx, from, to, rexec.Params{}, withConfig))
	assert.DirExists(t, to)

	err = Copy(ctx, "web1:/a", "web2:/b", withConfig)
	assert.ErrorIs(t, err, rexec.ErrUsage)
}

func TestProbe(t *testing.T) {
	withConfig := writeConfig(t, config.Default())

	statuses, err := Probe(context.Background(), []string{"localhost"}, true, withConfig)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "localhost", statuses[0].Host)
	assert.True(t, statuses[0].Reachable)
	assert.NotEmpty(t, statuses[0].Login)

	_, err = Probe(context.Background(), nil, false, withConfig)
	assert.Error(t, err)
}

func TestNativeTransport(t *testing.T) {
	srv := sshtest.NewServer(t)

	cfg := config.Default()
	cfg.Transport = config.TransportNative
	cfg.SSH.Defaults = sshx.Config{User: "tester", Key: srv.Key}
	cfg.SSH.Hosts = map[string]sshx.Config{
		"web1": {Host: srv.Host, Port: srv.Port, Fingerprint: srv.Fingerprint},
		"down": {Host: "127.0.0.1", Port: 1},
	}
	withConfig := writeConfig(t, cfg)
	ctx := context.Background()

	result, err := Run(ctx, "echo remote", rexec.Params{Host: "web1"}, withConfig)
	require.NoError(t, err)
	assert.Equal(t, "remote\n", result.Stdout)
	assert.Equal(t, []string{"echo remote"}, srv.Commands())

	statuses, err := Probe(ctx, []string{"down", "web1"}, false, withConfig)
	require.NoError(t, err)
	assert.Equal(t, "down", statuses[0].Host)
	assert.False(t, statuses[0].Reachable)
	assert.Equal(t, "web1", statuses[1].Host)
	assert.True(t, statuses[1].Reachable)

	local := filepath.Join(t.TempDir(), "local")
	require.NoError(t, os.WriteFile(local, []byte("via sftp"), 0o600))
	remote := filepath.Join(t.TempDir(), "remote")

	require.NoError(t, Copy(ctx, local, "web1:"+remote, withConfig))
	content, err := os.ReadFile(remote)
	require.NoError(t, err)
	assert.Equal(t, "via sftp", string(content))
}

//go:build integration

package integration_test

import (
	"context"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/goccy/go-yaml"
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/comment-gateway/internal/config"
	"github.com/openkcm/comment-gateway/internal/dbtest/valkeytest"
	"github.com/openkcm/comment-gateway/internal/github/githubtest"
)

type closeFunc func(ctx context.Context)

type infraStat struct {
	ValKeyPort     nat.Port
	ConfigFilePath string
	SocketPath     string
	Procdir        string
	Cfg            config.Config
	GitHub         *githubtest.Server

	closeFuncs []closeFunc
}

func initInfra(t *testing.T, exeName string) (istat infraStat) {
	t.Helper()

	// Since the config is read from the file $PWD/config.yaml,
	// we're running a process in a subdirectory so that we aren't interferring with the other tests.
	wd, err := os.Getwd()
	require.NoError(t, err, "failed to get wd")
	istat.Procdir = filepath.Join(wd, exeName+"-test")
	istat.ConfigFilePath = filepath.Join(istat.Procdir, "config.yaml")

	err = os.MkdirAll(istat.Procdir, fs.ModePerm)
	require.NoError(t, err, "failed to create a dir for the process")

	err = os.WriteFile(istat.ConfigFilePath, []byte(validConfig), fs.ModePerm)
	require.NoError(t, err, "failed to write config file")

	err = commoncfg.LoadConfig(&istat.Cfg, nil, istat.Procdir)
	require.NoError(t, err, "failed to load config")

	// A unix socket spares us looking for a free port.
	istat.SocketPath = filepath.Join(istat.Procdir, exeName+".sock")
	istat.Cfg.HTTP.Address = "unix://" + istat.SocketPath

	return istat
}

// PrepareGitHub points the gateway at a fake GitHub.
func (istat *infraStat) PrepareGitHub(t *testing.T) {
	t.Helper()

	istat.GitHub = githubtest.NewServer(t)

	istat.Cfg.GitHub.ClientID = githubtest.ClientID
	istat.Cfg.GitHub.ClientSecret = commoncfg.SourceRef{Source: "embedded", Value: githubtest.ClientSecret}
	istat.Cfg.GitHub.TokenURL = istat.GitHub.TokenURL()
	istat.Cfg.GitHub.GraphQLURL = istat.GitHub.GraphQLURL()
}

func (istat *infraStat) PrepareValKey(t *testing.T) {
	t.Helper()

	vkClient, vkPort, vkTerminate := valkeytest.Start(t.Context())
	vkClient.Close()

	istat.ValKeyPort = vkPort
	istat.closeFuncs = append(istat.closeFuncs, vkTerminate)

	istat.Cfg.Revocation.Backend = config.RevocationBackendValKey
	istat.Cfg.ValKey.Host = commoncfg.SourceRef{Source: "embedded", Value: net.JoinHostPort("localhost", vkPort.Port())}
	istat.Cfg.ValKey.Prefix = "integration"
}

// PrepareConfig writes a config file for running the test into the ConfigFilePath.
func (istat *infraStat) PrepareConfig(t *testing.T) {
	t.Helper()

	configFile, err := os.Create(istat.ConfigFilePath)
	require.NoError(t, err, "failed to create config file")
	defer configFile.Close()

	err = yaml.NewEncoder(configFile).Encode(istat.Cfg)
	require.NoError(t, err, "failed to write config")
}

func (istat *infraStat) Close(ctx context.Context) {
	os.Remove(istat.ConfigFilePath)
	os.RemoveAll(istat.Procdir)

	for _, close := range istat.closeFuncs {
		close(ctx)
	}
}

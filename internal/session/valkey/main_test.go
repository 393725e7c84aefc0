package sessionvalkey

import (
	"context"
	"flag"
	"os"
	"testing"

	"github.com/valkey-io/valkey-go"

	"github.com/openkcm/comment-gateway/internal/dbtest/valkeytest"
)

var client valkey.Client

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(0)
	}

	ctx := context.Background()

	valkeyClient, _, terminate := valkeytest.Start(ctx)
	client = valkeyClient

	code := m.Run()
	client.Close()
	terminate(ctx)

	os.Exit(code)
}

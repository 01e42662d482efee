package grpc

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) PingContext(context.Context) error {
	return f.err
}

func startHealthServer(t *testing.T, db Pinger) (*HealthServer, healthpb.HealthClient) {
	t.Helper()
	srv := NewHealthServer(db, "devhub-core")
	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return srv, healthpb.NewHealthClient(conn)
}

func TestHealthReflectsDatabase(t *testing.T) {
	db := &fakePinger{}
	srv, client := startHealthServer(t, db)
	ctx := context.Background()

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, srv.Refresh(ctx))
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: "devhub-core"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	db.err = errors.New("connection refused")
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, srv.Refresh(ctx))
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}

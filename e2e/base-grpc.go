package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"
	"whatsapp-clone/client"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

type BaseGrpcSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseGrpcSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if !s.Config.Enabled {
		s.T().Skip("E2E_ENABLED is not set, skipping end to end suite")
	}
}

// Dial opens a client with logging, colors, and JSON debugging
func (s *BaseGrpcSuite) Dial(t *testing.T, name string) *client.Client {
	// 1. Print a colorized header for the connection step in logs
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)

	// 2. Create the client with a Unary Interceptor for logging
	c, err := client.Dial(s.Config.ServerAddr,
		grpc.WithUnaryInterceptor(func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
			start := time.Now()
			err := invoker(ctx, method, req, reply, cc, opts...)

			logBuilder := strings.Builder{}
			fmt.Fprintf(&logBuilder, "GRPC %s [%s] in %v", method, status.Code(err), time.Since(start))

			// Log full JSON request/response bodies if E2E_DEBUG_JSON is enabled
			if s.Config.DebugJSON {
				fmt.Fprintln(&logBuilder, "\nREQUEST:")
				fmt.Fprintln(&logBuilder, indent(req))
				if err != nil {
					fmt.Fprintln(&logBuilder, "ERROR:", err)
				} else {
					fmt.Fprintln(&logBuilder, "RESPONSE:")
					fmt.Fprintln(&logBuilder, indent(reply))
				}
			}
			t.Log(logBuilder.String())
			return err
		}),
	)
	s.Require().NoError(err, "Failed to connect to gRPC server at "+s.Config.ServerAddr)
	return c
}

// WithClient provides a client within a contextual test step
func (s *BaseGrpcSuite) WithClient(c *client.Client, name string, fn func(ctx context.Context, c *client.Client)) {
	if s.Config.Colours {
		name = color.New(color.FgCyan).Render(name)
	}
	s.T().Log("  -> " + name)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fn(ctx, c)
}

func indent(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(data)
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ashureev/codexr/internal/grpchealth"
	"github.com/spf13/cobra"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func newHealthCmd() *cobra.Command {
	var (
		addr    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Probe a running server's gRPC health endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			status, err := grpchealth.Probe(ctx, addr, grpchealth.ServiceName)
			if err != nil {
				return err
			}
			if status != healthpb.HealthCheckResponse_SERVING {
				return fmt.Errorf("server at %s reports %s", addr, status)
			}
			printOK(cmd.OutOrStdout(), "✓ "+addr+" is serving")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:9090", "gRPC health address")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "probe timeout")
	return cmd
}

/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/ceph-diagnostics/pkg/serializer"
)

// parseOutputFormat validates the --format flag.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	return serializer.ParseFormat(cmd.String("format"))
}

// writeDocument serializes doc to the --output destination in --format.
func writeDocument(ctx context.Context, cmd *cli.Command, doc any, logger *slog.Logger) error {
	outFormat, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}

	output := cmd.String("output")
	var ser serializer.Serializer
	if output == "" {
		ser = serializer.NewWriter(outFormat, outWriter(cmd))
	} else {
		ser, err = serializer.NewFileWriterOrStdout(outFormat, output, cmd.String("kubeconfig"))
		if err != nil {
			return err
		}
	}
	defer func() {
		if closer, ok := ser.(serializer.Closer); ok {
			if err := closer.Close(); err != nil {
				logger.Warn("failed to close serializer", "error", err)
			}
		}
	}()

	return ser.Serialize(ctx, doc)
}

// printUsage writes a short usage block listing the command's flags.
func printUsage(w io.Writer, cmd *cli.Command) {
	fmt.Fprintf(w, "usage: %s [options]\n", cmd.FullName())
	for _, f := range cmd.Flags {
		fmt.Fprintf(w, "  %s\n", f)
	}
}

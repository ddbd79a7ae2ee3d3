/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/ceph-diagnostics/pkg/collector"
	"github.com/NVIDIA/ceph-diagnostics/pkg/header"
	"github.com/NVIDIA/ceph-diagnostics/pkg/serializer"
)

func queriesCmd() *cli.Command {
	return &cli.Command{
		Name:                  "queries",
		EnableShellCompletion: true,
		Usage:                 "Print the effective query table",
		Description: `Print the query table collect would run: the built-in table, or the
file given with --queries after validation. Use the output as a starting
point for a custom table.

  ceph-collect queries > my-queries.yaml
  ceph-collect collect --queries my-queries.yaml`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "queries",
				Usage: "Query table file to validate and print instead of the built-in table",
			},
			outputFlag(),
			formatFlag(serializer.FormatYAML),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger := newLogger(cmd)

			table, err := loadTable(cmd.String("queries"))
			if err != nil {
				return err
			}
			return writeDocument(ctx, cmd, newQueryTableDocument(table), logger)
		},
	}
}

// QueryTableDocument is a query table with a document header.
type QueryTableDocument struct {
	header.Header   `json:",inline" yaml:",inline"`
	collector.Table `json:",inline" yaml:",inline"`
}

func newQueryTableDocument(t *collector.Table) *QueryTableDocument {
	return &QueryTableDocument{
		Header: *header.New(header.KindQueryTable, version),
		Table:  *t,
	}
}

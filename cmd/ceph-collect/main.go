package main

import (
	"github.com/NVIDIA/ceph-diagnostics/pkg/cli"
)

func main() {
	cli.Execute()
}

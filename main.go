// Copyright 2026 The Carnet Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/carnet-app/carnet/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}

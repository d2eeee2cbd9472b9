// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command courtctl is the operator CLI for the admin gateway.
package main

import (
	"os"

	"github.com/taibuivan/courtside/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command catalog runs the catalog query pipeline from the terminal over the
// built-in seed or the hosted catalog.
//
//	catalog query --genre mystery --sort rating
//	catalog stats --source hosted
//	catalog hash-password 's3cret'
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

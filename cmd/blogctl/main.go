// Command blogctl is the operator tool for the site: media migration,
// accounts and development data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd, cc := newRootCommand()
	if err := run(cmd, cc); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

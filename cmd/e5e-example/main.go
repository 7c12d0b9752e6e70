package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCmd(newRegistry())
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Command injectctl loads a binding manifest and explains how instances resolve.
//
// Configuration comes from flags or, when a flag is not set, from the environment
// (INJECT_MANIFEST, INJECT_LOG_LEVEL), optionally loaded from a .env file.
//
//	injectctl --manifest bindings.yaml bindings
//	injectctl --manifest bindings.yaml explain example.com/db.Config --name replica --dump
package main

import (
	"os"
)

func main() {
	cli := newCli(os.Stdout, os.Stderr)
	if err := cli.Exec(); err != nil {
		os.Exit(1)
	}
}

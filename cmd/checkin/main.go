// Package main is the entry point for the checkin CLI.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// The automation scheduler keys off the exit status: any run
		// that did not achieve its goal exits non-zero.
		os.Exit(1)
	}
}

// Package main provides the entry point for the addrlink application.
//
// addrlink links free-form Russian address strings to their reference
// database keys, reading from an Excel workbook or a Postgres table.
package main

import cmd "github.com/vmelnikov/addrlink/cmd/addrlink"

// main is the entry point of the addrlink application.
// It delegates execution to the cmd package which handles all
// command-line interface functionality.
func main() {
	cmd.Execute()
}

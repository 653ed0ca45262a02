// Command lox is a pointer to this module's real entry points: there
// is no single top-level binary, since issuer administration and
// client-side usage are genuinely separate tools.
package main

import "fmt"

func main() {
	fmt.Println("This module has no standalone binary.")
	fmt.Println()
	fmt.Println("  go run ./cmd/loxctl      issuer administration and protocol round trips")
	fmt.Println("  go run ./cmd/loxbench    per-protocol latency benchmark")
	fmt.Println()
	fmt.Println("See client/session_test.go for an open-invite-to-level-up walkthrough.")
}

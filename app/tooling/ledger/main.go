// This program drives the ledger: it runs the reference demo in process,
// verifies stored chains, and acts as a client of the node service.
package main

import "github.com/ardanlabs/powledger/app/tooling/ledger/cmd"

func main() {
	cmd.Execute()
}

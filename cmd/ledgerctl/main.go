// Command ledgerctl runs ledger maintenance and inspection tasks against the
// configured database without going through the HTTP API.
package main

func main() {
	Execute()
}

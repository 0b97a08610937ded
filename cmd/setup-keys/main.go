// Command setup-keys derives and prints the wallet address for a configured
// private key, so an operator can confirm it before pointing the trader at a
// funded account. There is no separate API-key-derivation step in this
// architecture: internal/signer signs orders directly with the private key
// (see DESIGN.md).
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/polybot/updown-trader/internal/signer"
)

func main() {
	pk := strings.TrimSpace(os.Getenv("POLYMARKET_PK"))
	if pk == "" {
		log.Fatal("set the POLYMARKET_PK environment variable to your wallet's private key")
	}

	sgn, err := signer.NewECDSASigner(pk)
	if err != nil {
		log.Fatalf("invalid private key: %v", err)
	}

	fmt.Println("=== wallet derived ===")
	fmt.Println()
	fmt.Printf("address: %s\n", sgn.Address())
	fmt.Println()
	fmt.Println("confirm this address is funded on the venue, then export POLYMARKET_PK and run the trader.")
}

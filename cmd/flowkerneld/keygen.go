package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"flowkernel/crypto"
)

// runKeygen implements the "keygen" subcommand: generate a keypair and
// either print its hex-encoded private key or save it to an encrypted
// Ethereum v3 keystore file.
func runKeygen(args []string) {
	fs := flag.NewFlagSet("keygen", flag.ExitOnError)
	var out string
	var passphrase string
	fs.StringVar(&out, "out", "", "write an encrypted keystore file here instead of printing the raw key")
	fs.StringVar(&passphrase, "passphrase", "", "keystore encryption passphrase (required with -out)")
	fs.Parse(args)

	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate key:", err)
		os.Exit(1)
	}
	addr := key.PubKey().Address()

	if out == "" {
		fmt.Printf("address: %s\n", addr.String())
		fmt.Printf("private_key: %s\n", hex.EncodeToString(key.Bytes()))
		return
	}

	if passphrase == "" {
		fmt.Fprintln(os.Stderr, "-passphrase is required when -out is set")
		os.Exit(1)
	}
	if err := crypto.SaveToKeystore(out, key, passphrase); err != nil {
		fmt.Fprintln(os.Stderr, "save keystore:", err)
		os.Exit(1)
	}
	fmt.Printf("address: %s\n", addr.String())
	fmt.Printf("keystore written to %s\n", out)
}

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"kitchenware-market.backend/pkg/crypto"
)

func generatePasswordHash(password string, cost int) (string, error) {
	if len(password) < crypto.MinPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", crypto.MinPasswordLength)
	}
	return crypto.HashPasswordWithCost(password, cost)
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("genhash", flag.ContinueOnError)
	fs.SetOutput(out)
	cost := fs.Int("cost", crypto.DefaultCost, "bcrypt cost")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: genhash [-cost N] <password>")
	}

	hash, err := generatePasswordHash(fs.Arg(0), *cost)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, hash)
	return err
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/iudanet/socialauth/internal/authctl"
	"github.com/iudanet/socialauth/internal/config"
	"github.com/iudanet/socialauth/internal/server"
)

func main() {
	flag.Usage = func() { authctl.PrintUsage(os.Stderr) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		authctl.PrintUsage(os.Stderr)
		os.Exit(2)
	}

	ctx := context.Background()

	var err error
	switch args[0] {
	case "keygen":
		err = authctl.RunKeygen(os.Stdout, term.IsTerminal(int(os.Stdout.Fd())))
	case "set-role":
		err = setRole(ctx, args[1:])
	default:
		err = fmt.Errorf("%w: unknown command %q", authctl.ErrUsage, args[0])
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, authctl.ErrUsage) {
			authctl.PrintUsage(os.Stderr)
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func setRole(ctx context.Context, args []string) error {
	db, err := config.LoadDatabase(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	users, err := server.OpenUserStorage(ctx, *db)
	if err != nil {
		return fmt.Errorf("failed to open user storage: %w", err)
	}
	defer users.Close()

	return authctl.RunSetRole(ctx, users, os.Stdout, args)
}

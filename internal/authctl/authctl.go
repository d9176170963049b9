// Package authctl implements the operator commands of the authctl binary.
package authctl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/iudanet/socialauth/internal/crypto"
	"github.com/iudanet/socialauth/internal/models"
	"github.com/iudanet/socialauth/internal/server/storage"
	"github.com/iudanet/socialauth/internal/validation"
)

// ErrUsage означает неверные аргументы команды
var ErrUsage = errors.New("invalid arguments")

// PrintUsage выводит справку по командам
func PrintUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: authctl [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  keygen                    print a random secret for SOCIALAUTH_JWT_SECRET")
	fmt.Fprintln(w, "  set-role <user-id> <role> set the role of a user (USER, MODERATOR, ADMIN)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "set-role reads the database settings from the SOCIALAUTH_ environment.")
}

// RunKeygen writes a new signing secret to w. On a terminal the secret is
// followed by a hint; otherwise only the secret is written, so the output
// can be piped into a secret store.
func RunKeygen(w io.Writer, interactive bool) error {
	secret, err := crypto.GenerateSecret(crypto.SecretSize)
	if err != nil {
		return err
	}

	if !interactive {
		_, err = io.WriteString(w, secret)
		return err
	}

	_, err = fmt.Fprintf(w, "%s\n\nexport SOCIALAUTH_JWT_SECRET=<value above>\n", secret)
	return err
}

// RunSetRole assigns role to the user with userID. Unlike the HTTP endpoint
// it may grant ADMIN.
func RunSetRole(ctx context.Context, users storage.UserStorage, w io.Writer, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: set-role expects <user-id> <role>", ErrUsage)
	}

	userID := strings.TrimSpace(args[0])
	role := strings.ToUpper(strings.TrimSpace(args[1]))

	if err := validation.ValidateUserID(userID); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if !models.IsKnownRole(role) {
		return fmt.Errorf("%w: unknown role %q", ErrUsage, role)
	}

	if err := users.UpdateUserRole(ctx, userID, role); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return fmt.Errorf("user %s not found", userID)
		}
		return fmt.Errorf("failed to update role: %w", err)
	}

	_, err := fmt.Fprintf(w, "user %s now has role %s\n", userID, role)
	return err
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/EdoSag/Zero-Trust-Tasks/internal/storage"
	"github.com/EdoSag/Zero-Trust-Tasks/internal/vault"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var dbPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vaultctl",
		Short:         "Manage an encrypted task vault from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "./vault.db", "path to the vault database")

	root.AddCommand(
		newInitCmd(),
		newStatusCmd(),
		newAddCmd(),
		newListCmd(),
		newDoneCmd(),
		newRmCmd(),
		newCategoriesCmd(),
		newSettingsCmd(),
		newExportCmd(),
		newImportCmd(),
		newPushCmd(),
		newStrengthCmd(),
		newGenerateCmd(),
		newWipeCmd(),
	)
	return root
}

// openVault binds to the database without unlocking.
func openVault(ctx context.Context) (*vault.Vault, *storage.SQLiteStore, error) {
	store, err := storage.OpenSQLite(ctx, dbPath)
	if err != nil {
		return nil, nil, err
	}
	v, err := vault.Open(ctx, store)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return v, store, nil
}

// openUnlocked prompts for the passphrase and unlocks.
func openUnlocked(ctx context.Context) (*vault.Vault, *storage.SQLiteStore, error) {
	v, store, err := openVault(ctx)
	if err != nil {
		return nil, nil, err
	}
	secret, err := promptSecret("Passphrase: ")
	if err != nil {
		closeAll(v, store)
		return nil, nil, err
	}
	if err := v.Unlock(ctx, secret); err != nil {
		closeAll(v, store)
		return nil, nil, err
	}
	return v, store, nil
}

func closeAll(v *vault.Vault, store *storage.SQLiteStore) {
	v.Close()
	_ = store.Close()
}

func promptSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	if term.IsTerminal(int(syscall.Stdin)) {
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	// piped input, e.g. in scripts
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func confirm(prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", prompt)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes"
}

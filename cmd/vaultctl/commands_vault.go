package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/EdoSag/Zero-Trust-Tasks/internal/crypto"
	"github.com/EdoSag/Zero-Trust-Tasks/internal/sync"
	"github.com/EdoSag/Zero-Trust-Tasks/internal/vault"

	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a new vault",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, store, err := openVault(cmd.Context())
			if err != nil {
				return err
			}
			defer closeAll(v, store)

			secret, err := promptSecret("Choose a passphrase: ")
			if err != nil {
				return err
			}
			strength := vault.CheckStrength(secret)
			if strength.Score < 3 {
				fmt.Fprintf(os.Stderr, "passphrase strength %d/4\n", strength.Score)
				for _, f := range strength.Feedback {
					fmt.Fprintln(os.Stderr, "  -", f)
				}
				if !confirm("Use it anyway?") {
					return errors.New("aborted")
				}
			}
			again, err := promptSecret("Repeat passphrase: ")
			if err != nil {
				return err
			}
			if secret != again {
				return errors.New("passphrases do not match")
			}

			if err := v.Create(cmd.Context(), secret); err != nil {
				return err
			}
			fmt.Println("vault created")
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the vault state",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, store, err := openVault(cmd.Context())
			if err != nil {
				return err
			}
			defer closeAll(v, store)
			fmt.Println(v.State())
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write an encrypted backup bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, store, err := openUnlocked(cmd.Context())
			if err != nil {
				return err
			}
			defer closeAll(v, store)

			bundle, err := v.ExportBackup(cmd.Context())
			if err != nil {
				return err
			}
			raw, err := bundle.Encode()
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = os.Stdout.Write(raw)
				return err
			}
			if err := os.WriteFile(out, raw, 0o600); err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "backup written to", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newImportCmd() *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Restore the vault from a backup bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(in)
			if err != nil {
				return err
			}
			v, store, err := openVault(cmd.Context())
			if err != nil {
				return err
			}
			defer closeAll(v, store)

			if v.State() != vault.StateUninitialized &&
				!confirm("This replaces the existing vault. Continue?") {
				return errors.New("aborted")
			}
			secret, err := promptSecret("Backup passphrase: ")
			if err != nil {
				return err
			}
			if err := v.ImportBackup(cmd.Context(), raw, secret); err != nil {
				return err
			}
			fmt.Println("backup imported; vault is locked")
			return nil
		},
	}
	cmd.Flags().StringVarP(&in, "in", "i", "", "backup bundle file")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func newPushCmd() *cobra.Command {
	var uri, db, coll, id string
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Push the encrypted snapshot to MongoDB",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, store, err := openUnlocked(cmd.Context())
			if err != nil {
				return err
			}
			defer closeAll(v, store)

			tr, err := sync.NewMongoTransport(cmd.Context(), uri, db, coll, id)
			if err != nil {
				return err
			}
			defer tr.Close(cmd.Context())

			if err := v.PushBackup(cmd.Context(), tr); err != nil {
				return err
			}
			fmt.Println("snapshot pushed")
			return nil
		},
	}
	cmd.Flags().StringVar(&uri, "mongo", "", "MongoDB URI")
	cmd.Flags().StringVar(&db, "mongo-db", "taskvault", "database name")
	cmd.Flags().StringVar(&coll, "mongo-coll", "backups", "collection name")
	cmd.Flags().StringVar(&id, "vault-id", "primary", "backup document id")
	_ = cmd.MarkFlagRequired("mongo")
	return cmd
}

func newStrengthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strength [passphrase]",
		Short: "Score a candidate passphrase",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var secret string
			var err error
			if len(args) == 1 {
				secret = args[0]
			} else if secret, err = promptSecret("Passphrase: "); err != nil {
				return err
			}
			s := vault.CheckStrength(secret)
			fmt.Printf("score: %d/4\n", s.Score)
			for _, f := range s.Feedback {
				fmt.Println("  -", f)
			}
			return nil
		},
	}
}

func newGenerateCmd() *cobra.Command {
	var length int
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random password",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := crypto.GeneratePassword(length)
			if err != nil {
				return err
			}
			fmt.Println(pw)
			return nil
		},
	}
	cmd.Flags().IntVarP(&length, "length", "n", 20, "password length")
	return cmd
}

func newWipeCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Destroy all vault data",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force && !confirm("Permanently destroy all vault data?") {
				return errors.New("aborted")
			}
			v, store, err := openVault(cmd.Context())
			if err != nil {
				return err
			}
			defer closeAll(v, store)
			if err := v.Wipe(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("vault wiped")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "yes", false, "skip confirmation")
	return cmd
}

func splitPath(arg string) []string {
	return strings.Split(strings.Trim(arg, "/"), "/")
}

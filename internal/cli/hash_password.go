package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thruflo/sortviz/internal/auth"
)

var hashPasswordSave bool

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Hash a password for server.password_hash",
	Long: `Prompt for a password and print its argon2id hash, ready to paste into
server.password_hash. With --save the hash is written to the config file.`,
	Args: cobra.NoArgs,
	RunE: runHashPassword,
}

func init() {
	hashPasswordCmd.Flags().BoolVar(&hashPasswordSave, "save", false, "write the hash to the config file")
	rootCmd.AddCommand(hashPasswordCmd)
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	p := auth.NewPrompter()
	if !hashPasswordSave {
		password, err := p.PromptAndConfirm()
		if err != nil {
			return err
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path, err := setPassword(cfg, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Password hash saved to %s\n", path)
	return nil
}

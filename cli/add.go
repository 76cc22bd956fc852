package cli

import (
	"fmt"

	"github.com/fahmaliyi/fortress/vault"
	"github.com/spf13/cobra"
)

const emptyUsername = "<empty>"

// newAddCommand adds an entry. Without --password or --generate the password
// is taken from the clipboard.
func (a *app) newAddCommand() *cobra.Command {
	var req vault.AddRequest
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new entry to the vault",
		Long: `Add a new entry to the vault. If neither --password nor --generate is given,
the password is read from the clipboard.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req.FromClipboard = !req.Generate && !cmd.Flags().Changed("password")
			if req.Username == "" {
				req.Username = emptyUsername
			}
			return a.withPassword(func(pw []byte) error {
				e, err := a.vault.Add(pw, req)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, e)
				if req.Generate {
					if err := a.opts.Clipboard.WriteAll(e.Password); err != nil {
						fmt.Fprintf(out, "Error in setting clipboard, your password is: %s\n", e.Password)
					} else {
						fmt.Fprintln(out, "Your generated password is in your clipboard")
					}
				}
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&req.Identifier, "identifier", "i", "", "the identifier for the entry")
	flags.StringVarP(&req.Username, "username", "u", "", "the username for the entry")
	flags.StringVarP(&req.Password, "password", "p", "", "direct password input")
	flags.BoolVarP(&req.Generate, "generate", "g", false, "generate a new password")
	_ = cmd.MarkFlagRequired("identifier")
	cmd.MarkFlagsMutuallyExclusive("password", "generate")
	return cmd
}

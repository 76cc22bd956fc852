package cli

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func (a *app) newCreateCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withPassword(func(pw []byte) error {
				if err := a.vault.Create(pw, force); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created new vault at %s\n", a.vault.Store().Path())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite the vault if it already exists")
	return cmd
}

func (a *app) newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all entries in the vault",
		Args:  cobra.NoArgs,
		RunE:  a.runList,
	}
}

func (a *app) runList(cmd *cobra.Command, _ []string) error {
	return a.withPassword(func(pw []byte) error {
		entries, err := a.vault.List(pw)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "[")
		for _, e := range entries {
			fmt.Fprintf(out, "\t%s\n", e)
		}
		fmt.Fprintln(out, "]")
		return nil
	})
}

func (a *app) newViewCommand() *cobra.Command {
	var identifier string
	cmd := &cobra.Command{
		Use:   "view [identifier]",
		Short: "View the password of the desired identifier",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := identifierFrom(identifier, args)
			if err != nil {
				return err
			}
			return a.withPassword(func(pw []byte) error {
				e, err := a.vault.View(pw, id)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, e)
				fmt.Fprintf(out, "The decoded password is: `%s`\n", e.Password)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&identifier, "identifier", "i", "", "the identifier of the entry")
	return cmd
}

func (a *app) newCopyCommand() *cobra.Command {
	var identifier string
	cmd := &cobra.Command{
		Use:   "copy [identifier]",
		Short: "Copy the password of the desired identifier",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := identifierFrom(identifier, args)
			if err != nil {
				return err
			}
			return a.withPassword(func(pw []byte) error {
				e, err := a.vault.Copy(pw, id)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, e)
				fmt.Fprintln(out, "The decoded password is in your clipboard")
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&identifier, "identifier", "i", "", "the identifier of the entry")
	return cmd
}

func (a *app) newRemoveCommand() *cobra.Command {
	var identifier string
	cmd := &cobra.Command{
		Use:   "remove [identifier]",
		Short: "Remove the entry with the desired identifier",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := identifierFrom(identifier, args)
			if err != nil {
				return err
			}
			return a.withPassword(func(pw []byte) error {
				if err := a.vault.Remove(pw, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Entry '%s' has been removed.\n", id)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&identifier, "identifier", "i", "", "the identifier of the entry")
	return cmd
}

// identifierFrom accepts the identifier either as --identifier or as the
// single positional argument.
func identifierFrom(flag string, args []string) (string, error) {
	switch {
	case flag != "" && len(args) == 1 && args[0] != flag:
		return "", errors.Newf("conflicting identifiers %q and %q", flag, args[0])
	case flag != "":
		return flag, nil
	case len(args) == 1 && args[0] != "":
		return args[0], nil
	}
	return "", errors.WithHint(errors.New("missing identifier"), "pass it with --identifier")
}

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/awnumar/memguard"
	"github.com/fahmaliyi/fortress/config"
	"github.com/fahmaliyi/fortress/logger"
	"github.com/fahmaliyi/fortress/vault"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Options wires the command tree to its environment. Zero fields fall back
// to the process stdio, the system clipboard and a terminal prompt.
type Options struct {
	In           io.Reader
	Out          io.Writer
	Err          io.Writer
	Clipboard    vault.Clipboard
	ReadPassword func(prompt string) ([]byte, error)
}

func (o Options) withDefaults() Options {
	if o.In == nil {
		o.In = os.Stdin
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Err == nil {
		o.Err = os.Stderr
	}
	if o.Clipboard == nil {
		o.Clipboard = SystemClipboard{}
	}
	if o.ReadPassword == nil {
		o.ReadPassword = ReadPassword
	}
	return o
}

type app struct {
	opts    Options
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
	vault   *vault.Vault
}

// NewRootCommand builds the frt command tree. Running it without a
// subcommand lists the vault.
func NewRootCommand(opts Options) *cobra.Command {
	a := &app{opts: opts.withDefaults(), v: viper.New()}

	root := &cobra.Command{
		Use:   "frt",
		Short: "A simple password safe",
		Long: `frt keeps credentials in a single file encrypted with a master password.
The key is derived with Argon2id and the file is sealed with AES-256-GCM.
The master password is never stored.`,
		Args:               cobra.NoArgs,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
		RunE:               a.runList,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetIn(a.opts.In)
	root.SetOut(a.opts.Out)
	root.SetErr(a.opts.Err)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.fortress.yaml)")
	flags.StringP("file", "f", "", "vault file path (default is $HOME/.fortress/vault.frt)")
	flags.BoolP("verbose", "v", false, "enable verbose output")
	flags.Bool("stdin", false, "read the master password from stdin instead of prompting")
	flags.String("log-file", "", "append logs to this file")
	flags.String("cipher", "", "AEAD cipher: aes-256-gcm or chacha20-poly1305")
	flags.Duration("clipboard-clear", 0, "clear copied passwords after this delay in browse mode (default 30s)")

	bindFlag(a.v, flags, config.KeyFile, "file")
	bindFlag(a.v, flags, config.KeyVerbose, "verbose")
	bindFlag(a.v, flags, config.KeyStdin, "stdin")
	bindFlag(a.v, flags, config.KeyLogFile, "log-file")
	bindFlag(a.v, flags, config.KeyCipher, "cipher")
	bindFlag(a.v, flags, config.KeyClipboardClear, "clipboard-clear")

	root.AddCommand(
		a.newCreateCommand(),
		a.newAddCommand(),
		a.newListCommand(),
		a.newViewCommand(),
		a.newCopyCommand(),
		a.newRemoveCommand(),
		a.newBrowseCommand(),
	)
	return root
}

func bindFlag(v *viper.Viper, flags *pflag.FlagSet, key, name string) {
	if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
		panic(fmt.Sprintf("failed to bind %s flag: %v", name, err))
	}
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logger.New(cfg.Verbose, cfg.LogFile)
	if err != nil {
		return err
	}
	a.logger = log.With(zap.String("run_id", uuid.NewString()), zap.String("command", cmd.Name()))

	suite, err := vault.ParseSuite(cfg.Cipher)
	if err != nil {
		return err
	}
	store := vault.NewStore(cfg.File, suite, a.logger)
	a.vault = vault.New(store, a.opts.Clipboard, a.logger)

	a.logger.Debug("command started", zap.String("vault", cfg.File), zap.String("cipher", string(suite)))
	return nil
}

func (a *app) teardown(*cobra.Command, []string) error {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return nil
}

// masterPassword obtains the master password. Callers wipe it when done.
func (a *app) masterPassword() ([]byte, error) {
	if a.cfg.Stdin {
		return readPasswordLine(a.opts.In)
	}
	return a.opts.ReadPassword("Enter the vault password: ")
}

// withPassword runs fn with the master password and wipes it afterwards.
func (a *app) withPassword(fn func(pw []byte) error) error {
	pw, err := a.masterPassword()
	if err != nil {
		return err
	}
	defer memguard.WipeBytes(pw)
	return fn(pw)
}

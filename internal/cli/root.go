package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mithrel/tabnote/internal/config"
	"github.com/mithrel/tabnote/internal/notes"
	"github.com/mithrel/tabnote/internal/wire"
)

type ctxKey string

const appKey ctxKey = "app"

// skipAppAnnotation marks commands that run without storage.
const skipAppAnnotation = "tabnote/no-app"

// Execute is the entrypoint: it builds the root cobra.Command and runs it
// until completion or an interrupt.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	root := NewRootCmd()
	c, err := root.ExecuteContextC(ctx)
	if app, ok := appFrom(c); ok {
		err = errors.Join(err, app.Close())
	}
	return err
}

// NewRootCmd constructs the Cobra root command and wires dependencies.
func NewRootCmd(opts ...wire.Option) *cobra.Command {
	var cfgPath string
	var debug bool

	cmd := &cobra.Command{
		Use:           "tabnote",
		Short:         "tabnote - tabbed markdown notes in the terminal",
		SilenceUsage:  true, // don't show usage on runtime errors
		SilenceErrors: true, // let main print errors once
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipAppAnnotation] != "" {
				return nil
			}
			v := viper.New()
			if cfgPath != "" {
				v.SetConfigFile(cfgPath)
			}
			if err := config.Load(cmd.Context(), v); err != nil {
				return err
			}
			if err := config.Validate(v); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			cfg := config.FromViper(v)
			if debug {
				cfg.LogLevel = "debug"
			}
			app, err := wire.BuildApp(cmd.Context(), cfg, opts...)
			if err != nil {
				return err
			}
			for _, n := range app.DrainNotices() {
				printNotice(cmd.OutOrStdout(), cmd.ErrOrStderr(), n)
			}
			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			app.Notes.SetNotifier(func(n notes.Notice) { printNotice(out, errOut, n) })
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, app))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app, ok := appFrom(cmd); ok {
				return app.Close()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (toml)")
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "log at debug level")

	cmd.AddCommand(newTUICmd())
	cmd.AddCommand(newNoteCmd())
	cmd.AddCommand(newThemeCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newCompletionCmd())

	return cmd
}

// printNotice shows a store notice; warnings go to errOut.
func printNotice(out, errOut io.Writer, n notes.Notice) {
	switch n.Kind {
	case notes.NoticeAutosaved:
	case notes.NoticeWarning:
		_, _ = fmt.Fprintln(errOut, n.Text)
	default:
		_, _ = fmt.Fprintln(out, n.Text)
	}
}

func appFrom(cmd *cobra.Command) (*wire.App, bool) {
	if cmd == nil || cmd.Context() == nil {
		return nil, false
	}
	app, ok := cmd.Context().Value(appKey).(*wire.App)
	return app, ok
}

func getApp(cmd *cobra.Command) *wire.App {
	app, ok := appFrom(cmd)
	if !ok {
		fmt.Fprintln(os.Stderr, "internal error: app not initialized")
		os.Exit(1)
	}
	return app
}

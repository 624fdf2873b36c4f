package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soocke/reel-bot-go/app"
	"github.com/soocke/reel-bot-go/cli"
	"github.com/soocke/reel-bot-go/ui"
)

func main() {
	if err := cli.NewRootCmd(newGUICmd).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newGUICmd(opts *cli.Options) *cobra.Command {
	var dark bool
	cmd := &cobra.Command{
		Use:   "gui",
		Short: "Open the control window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := cli.OpenSession(opts)
			if err != nil {
				return err
			}
			defer s.Close()
			c, err := app.BuildContainer(s.Config, s.Logger)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithCancel(cli.ContextOrBackground(cmd.Context()))
			defer cancel()
			s.StartDiagnostics(ctx, c)
			ui.RunGUI(ctx, c, ui.GUIOptions{ConfigPath: opts.ConfigPath, Dark: dark})
			return nil
		},
	}
	cmd.Flags().BoolVar(&dark, "dark", false, "use the dark palette")
	return cmd
}

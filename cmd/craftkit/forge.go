package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/provide-io/craftkit/pkg/instance"
	"github.com/provide-io/craftkit/pkg/java"
	"github.com/provide-io/craftkit/pkg/loader/forge"
	"github.com/provide-io/craftkit/pkg/progress"
)

func newForgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forge",
		Short: "Manage the Forge loader",
	}

	var (
		loaderVersion string
		server        bool
	)
	install := &cobra.Command{
		Use:   "install <instance>",
		Short: "Install Forge into a client instance or server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}

			sel := instance.Client(args[0])
			if server {
				sel = instance.Server(args[0])
			}

			stages := make(chan progress.ForgeStage, 64)
			javaProgress := make(chan progress.Generic, 64)
			var wg sync.WaitGroup
			wg.Add(2)
			go renderForge(os.Stderr, stages, &wg)
			go renderGeneric(os.Stderr, java.Java21.String(), javaProgress, &wg)

			prov := java.NewProvisioner(e.cfg, e.client, e.logger)
			inst := forge.NewInstaller(e.cfg, e.client, prov, e.logger)
			err = inst.Install(cmd.Context(), loaderVersion, sel, stages, javaProgress)
			close(stages)
			close(javaProgress)
			wg.Wait()
			if err != nil {
				return err
			}

			fmt.Println(doneStyle.Render("Installed forge into " + sel.String()))
			return nil
		},
	}
	install.Flags().StringVarP(&loaderVersion, "version", "v", "", "Forge version (default: latest for the instance's game version)")
	install.Flags().BoolVarP(&server, "server", "s", false, "Target a server instead of a client instance")

	var (
		game        string
		recommended bool
	)
	versions := &cobra.Command{
		Use:   "versions",
		Short: "Show the promoted Forge version for a game version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			promos, err := forge.FetchPromotions(cmd.Context(), e.client, e.cfg.Sources.ForgePromotions)
			if err != nil {
				return err
			}
			lookup := promos.Latest
			if recommended {
				lookup = promos.Recommended
			}
			v, err := lookup(game)
			if err != nil {
				return err
			}
			fmt.Println(v)
			return nil
		},
	}
	versions.Flags().StringVarP(&game, "game", "g", "", "Game version, e.g. 1.12.2 (required)")
	versions.Flags().BoolVar(&recommended, "recommended", false, "Show the recommended build instead of the latest")
	if err := versions.MarkFlagRequired("game"); err != nil {
		panic(err)
	}

	cmd.AddCommand(install, versions)
	return cmd
}

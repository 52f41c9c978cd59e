package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/provide-io/craftkit/pkg/java"
	"github.com/provide-io/craftkit/pkg/progress"
)

func newJavaCmd() *cobra.Command {
	var binaryName string

	cmd := &cobra.Command{
		Use:   "java <8|16|17|21>",
		Short: "Install a Java runtime if needed and print the path of one of its binaries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := java.ParseVersion(args[0])
			if err != nil {
				return err
			}
			e, err := setup()
			if err != nil {
				return err
			}

			ch := make(chan progress.Generic, 64)
			var wg sync.WaitGroup
			wg.Add(1)
			go renderGeneric(os.Stderr, v.String(), ch, &wg)

			prov := java.NewProvisioner(e.cfg, e.client, e.logger)
			path, err := prov.Binary(cmd.Context(), v, binaryName, ch)
			close(ch)
			wg.Wait()
			if err != nil {
				return err
			}

			fmt.Println(pathStyle.Render(path))
			return nil
		},
	}
	cmd.Flags().StringVarP(&binaryName, "name", "n", "java", "Binary to resolve (java, javaw, javac)")

	cmd.AddCommand(&cobra.Command{
		Use:   "clean",
		Short: "Delete every installed Java runtime",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			return java.DeleteInstalls(e.cfg, e.logger)
		},
	})
	return cmd
}

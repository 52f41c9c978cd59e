package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/provide-io/craftkit/pkg/loader/fabric"
)

func newFabricCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fabric",
		Short: "Fabric server helpers",
	}

	var (
		out       string
		mainClass string
		shade     bool
	)
	launchJar := &cobra.Command{
		Use:   "launch-jar LIB...",
		Short: "Build a jar that starts a Fabric server with java -jar",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			if err := fabric.MakeLaunchJar(out, mainClass, args, shade, e.logger); err != nil {
				return err
			}
			fmt.Println(pathStyle.Render(out))
			return nil
		},
	}
	launchJar.Flags().StringVarP(&out, "out", "o", "", "Output jar (required)")
	launchJar.Flags().StringVarP(&mainClass, "main-class", "m", "", "Class the Fabric launcher starts (required)")
	launchJar.Flags().BoolVar(&shade, "shade", false, "Merge the libraries into the jar instead of referencing them")
	for _, name := range []string{"out", "main-class"} {
		if err := launchJar.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}

	cmd.AddCommand(launchJar)
	return cmd
}

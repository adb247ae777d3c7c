// Command roga finds RELION optics groups from EPU movie filenames and
// embeds them into particle STAR files.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kttn8769/relion-optics-group-assigner/internal/config"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	var configFile string
	cfg := new(config.Config)

	root := &cobra.Command{
		Use:   "roga",
		Short: "RELION optics group assigner",
		Long: "Group micrographs into optics groups by filelist and beam shift position, " +
			"and write the groups into RELION 3.1 particle STAR files.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configFile)
			if err != nil {
				return err
			}
			*cfg = *loaded
			log.Printf("Command: %s", strings.Join(os.Args, " "))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "YAML file with default parameters")

	root.AddCommand(newFindCmd(cfg), newApplyCmd(cfg))
	return root
}

// logParams echoes the effective parameters of a run.
func logParams(params [][2]string) {
	log.Println("Parameters:")
	for _, p := range params {
		log.Printf("  %-12s : %s", p[0], p[1])
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

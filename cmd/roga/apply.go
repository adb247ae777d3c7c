package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	roga "github.com/kttn8769/relion-optics-group-assigner"
	"github.com/kttn8769/relion-optics-group-assigner/internal/config"
	"github.com/kttn8769/relion-optics-group-assigner/internal/report"
)

func newApplyCmd(cfg *config.Config) *cobra.Command {
	var p config.Apply

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Embed optics groups into a particle STAR file",
		Long: "Join every particle to its optics group by micrograph name and write a " +
			"RELION 3.1 STAR file with data_optics and data_particles blocks. Input files " +
			"from RELION 3.0 or earlier also need --image-size.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			merged := mergeApply(cfg.Apply, p, cmd)
			return runApply(merged)
		},
	}
	f := cmd.Flags()
	f.StringVar(&p.InputStar, "input-star", "", "Particle STAR file")
	f.StringVar(&p.OutputStar, "output-star", "", "Output STAR file")
	f.StringVar(&p.Membership, "membership", "", "Membership file written by find (.csv or SQLite catalog)")
	f.IntVar(&p.ImageSize, "image-size", 0, "Particle box size in pixels (required for RELION 3.0 input)")
	f.StringVar(&p.Report, "report", "", "Optional HTML report of particles per group")
	return cmd
}

// mergeApply overlays the flags given on the command line onto the config file values.
func mergeApply(base, flags config.Apply, cmd *cobra.Command) config.Apply {
	if cmd.Flags().Changed("input-star") {
		base.InputStar = flags.InputStar
	}
	if cmd.Flags().Changed("output-star") {
		base.OutputStar = flags.OutputStar
	}
	if cmd.Flags().Changed("membership") {
		base.Membership = flags.Membership
	}
	if cmd.Flags().Changed("image-size") {
		base.ImageSize = flags.ImageSize
	}
	if cmd.Flags().Changed("report") {
		base.Report = flags.Report
	}
	return base
}

func runApply(p config.Apply) error {
	for _, req := range [][2]string{
		{"input-star", p.InputStar},
		{"output-star", p.OutputStar},
		{"membership", p.Membership},
	} {
		if req[1] == "" {
			return fmt.Errorf("%w: --%s is required", roga.ErrMissingInput, req[0])
		}
	}
	logParams([][2]string{
		{"input-star", p.InputStar},
		{"output-star", p.OutputStar},
		{"membership", p.Membership},
		{"image-size", strconv.Itoa(p.ImageSize)},
		{"report", p.Report},
	})

	var opts []roga.Option
	if p.ImageSize > 0 {
		opts = append(opts, roga.WithImageSize(p.ImageSize))
	}
	res, err := roga.Apply(p.InputStar, p.Membership, p.OutputStar, opts...)
	if err != nil {
		return err
	}

	if p.Report == "" {
		return nil
	}
	return writeReport(p.Report, func(f *os.File) error {
		return report.WriteApplyReport(f, res.Counts)
	})
}

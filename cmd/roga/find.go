package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	roga "github.com/kttn8769/relion-optics-group-assigner"
	"github.com/kttn8769/relion-optics-group-assigner/internal/config"
	"github.com/kttn8769/relion-optics-group-assigner/internal/report"
)

func newFindCmd(cfg *config.Config) *cobra.Command {
	var p config.Find

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find optics groups from EPU filelists",
		Long: "Read one or more filelists of EPU movie paths and group the movies by " +
			"(filelist, beam shift x, beam shift y). The groups are written as CSV, or as a " +
			"SQLite catalog when the output ends in .db, .sqlite or .sqlite3.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			merged := mergeFind(cfg.Find, p, cmd)
			return runFind(merged)
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&p.Filelists, "infiles", nil, "Filelists of movie paths, one per session (comma separated or repeated)")
	f.StringVar(&p.MTFInfo, "mtf-info", "", "Text file with one \"<mtf file> <original pixel size>\" line per filelist")
	f.StringVar(&p.Outfile, "outfile", "", "Output membership file (.csv, .db, .sqlite or .sqlite3)")
	f.StringVar(&p.Report, "report", "", "Optional HTML report of the groups")
	return cmd
}

// mergeFind overlays the flags given on the command line onto the config file values.
func mergeFind(base, flags config.Find, cmd *cobra.Command) config.Find {
	if cmd.Flags().Changed("infiles") {
		base.Filelists = flags.Filelists
	}
	if cmd.Flags().Changed("mtf-info") {
		base.MTFInfo = flags.MTFInfo
	}
	if cmd.Flags().Changed("outfile") {
		base.Outfile = flags.Outfile
	}
	if cmd.Flags().Changed("report") {
		base.Report = flags.Report
	}
	return base
}

func runFind(p config.Find) error {
	if len(p.Filelists) == 0 {
		return fmt.Errorf("%w: no filelists given (--infiles)", roga.ErrMissingInput)
	}
	if p.Outfile == "" {
		return fmt.Errorf("%w: no output file given (--outfile)", roga.ErrMissingInput)
	}
	logParams([][2]string{
		{"infiles", strings.Join(p.Filelists, ", ")},
		{"mtf-info", p.MTFInfo},
		{"outfile", p.Outfile},
		{"report", p.Report},
	})

	var opts []roga.Option
	if p.MTFInfo != "" {
		opts = append(opts, roga.WithMTFInfo(p.MTFInfo))
	}
	groups, err := roga.FindGroups(p.Filelists, opts...)
	if err != nil {
		return err
	}
	if err := roga.WriteMembership(p.Outfile, groups); err != nil {
		return err
	}
	log.Printf("Wrote %d micrographs to %s", len(groups.Rows), p.Outfile)

	if p.Report == "" {
		return nil
	}
	return writeReport(p.Report, func(f *os.File) error {
		return report.WriteFindReport(f, groups)
	})
}

func writeReport(path string, render func(*os.File) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	if err = render(f); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	log.Printf("Wrote report to %s", path)
	return nil
}

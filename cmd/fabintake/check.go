package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/FabIntake/internal/intake"
	"github.com/dharsanguruparan/FabIntake/internal/model"
	"github.com/dharsanguruparan/FabIntake/internal/submission"
)

func newRulesCmd() *cobra.Command {
	var device string
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print accepted file types per device",
		RunE: func(cmd *cobra.Command, args []string) error {
			devices := model.Catalog
			if device != "" {
				id, err := model.ParseDevice(device)
				if err != nil {
					return err
				}
				d, _ := model.Lookup(id)
				devices = []model.Device{d}
			}
			return printRules(cmd.OutOrStdout(), devices)
		},
	}
	cmd.Flags().StringVarP(&device, "device", "d", "", "Only show this device")
	return cmd
}

func printRules(w io.Writer, devices []model.Device) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DEVICE\tNAME\tACCEPTED\tMAX SIZE")
	for _, d := range devices {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.ID, d.Name, strings.Join(d.Extensions, ", "), intake.FormatSize(intake.MaxFileSize))
	}
	return tw.Flush()
}

func newCheckCmd() *cobra.Command {
	var device, priority string
	var submit bool
	var delay time.Duration
	cmd := &cobra.Command{
		Use:   "check [file...]",
		Short: "Validate local files as if they were dropped on the form",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := model.ParseDevice(device)
			if err != nil {
				return err
			}
			p, err := model.ParsePriority(priority)
			if err != nil {
				return err
			}
			files := make([]intake.File, 0, len(args))
			for _, path := range args {
				f, err := intake.OpenDiskFile(path)
				if err != nil {
					return err
				}
				files = append(files, f)
			}

			out := cmd.OutOrStdout()
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
			in := intake.New(submission.NewSimulated(delay, logger), intake.WithLogger(logger))
			defer in.Close()
			if err := in.SelectDevice(d); err != nil {
				return err
			}
			if err := in.SelectPriority(p); err != nil {
				return err
			}
			report, err := in.Ingest(files)
			if err != nil {
				return err
			}
			for _, rej := range report.Rejected {
				fmt.Fprintf(out, "rejected: %s\n", rej.Message)
			}
			if err := printStaged(out, in.State()); err != nil {
				return err
			}
			if !submit {
				return nil
			}
			if err := in.Submit(cmd.Context()); err != nil {
				fmt.Fprintln(out, in.State().Error)
				return err
			}
			fmt.Fprintln(out, in.State().Notice)
			return nil
		},
	}
	cmd.Flags().StringVarP(&device, "device", "d", string(model.DefaultDevice), "Target device")
	cmd.Flags().StringVarP(&priority, "priority", "p", string(model.DefaultPriority), "Project priority (school or personal)")
	cmd.Flags().BoolVar(&submit, "submit", false, "Also run the simulated submission")
	cmd.Flags().DurationVar(&delay, "delay", 0, "Simulated submission latency")
	return cmd
}

func printStaged(w io.Writer, st intake.State) error {
	fmt.Fprintf(w, "device: %s  priority: %s  staged: %d\n", st.Device, st.Priority, len(st.Files))
	if len(st.Files) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, f := range st.Files {
		fmt.Fprintf(tw, "  %s\t%s\n", f.Name, f.SizeText)
	}
	return tw.Flush()
}

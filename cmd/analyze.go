package cmd

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jvmtools/gctriage/internal/triage"
	"github.com/jvmtools/gctriage/internal/triage/tui"
	"github.com/jvmtools/gctriage/utils"
)

var (
	outputFormat      string
	reportFile        string
	tailWindowMinutes float64
	oldTrendThreshold float64
)

var analyzeCmd = &cobra.Command{
	Use:               "analyze [gc-log-file]",
	Short:             "Triage a G1 GC log",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: utils.CompleteFilesByExtension([]string{".log"}, true),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		validFormats := []string{"md", "txt", "cli", "tui"}
		if !slices.Contains(validFormats, outputFormat) {
			return fmt.Errorf("invalid output format: %s. Valid options: %v", outputFormat, validFormats)
		}
		if reportFile != "" && outputFormat == "tui" {
			return errors.New("--report-file cannot be combined with -o tui")
		}
		if _, err := os.Stat(args[0]); os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", args[0])
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer file.Close()

		th := triage.DefaultThresholds()
		th.TailWindowMinutes = tailWindowMinutes
		th.OldTrendThreshold = oldTrendThreshold

		report, metrics, err := triage.Analyze(file, th)
		if err != nil {
			return err
		}

		if outputFormat == "tui" {
			if err := tui.Run(report, metrics); err != nil {
				return err
			}
			os.Exit(report.ExitCode())
		}

		out, err := triage.Render(report, outputFormat)
		if err != nil {
			return err
		}

		if reportFile != "" {
			if err := os.WriteFile(reportFile, []byte(out), 0644); err != nil {
				return err
			}
			fmt.Printf("Report written to %s\n", reportFile)
		} else {
			fmt.Print(out)
		}

		os.Exit(report.ExitCode())
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:               "validate [gc-log-file]",
	Short:             "Check that a file contains recognizable G1 unified-logging events",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: utils.CompleteFilesByExtension([]string{".log"}, true),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer file.Close()

		stream, err := triage.BuildStream(file)
		if err != nil {
			return err
		}

		fmt.Printf("%s: %d events over %.1fs uptime (%d lines)\n",
			args[0], len(stream.Events), stream.MaxUptime, stream.Lines)
		for _, cat := range triage.Categories() {
			count := 0
			for _, ev := range stream.Events {
				if ev.Category == cat {
					count++
				}
			}
			if count > 0 {
				fmt.Printf("  %-20s %d\n", cat, count)
			}
		}
		if stream.Segments > 1 {
			fmt.Printf("  note: %d uptime segments (JVM restart or log rotation)\n", stream.Segments)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(validateCmd)

	analyzeCmd.Flags().StringVarP(&outputFormat, "output", "o", "cli", "Output format (md, txt, cli, tui)")
	analyzeCmd.Flags().StringVar(&reportFile, "report-file", "", "Write the report to a file instead of stdout")
	analyzeCmd.Flags().Float64Var(&tailWindowMinutes, "tail-window", 0, "Analyze only the trailing N minutes of uptime (0 = whole log)")
	analyzeCmd.Flags().Float64Var(&oldTrendThreshold, "old-trend-threshold", triage.DefaultOldTrendThreshold, "Old-region growth rate (regions/min) that flags retention")

	analyzeCmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"md", "txt", "cli", "tui"}, cobra.ShellCompDirectiveNoFileComp
	})
}

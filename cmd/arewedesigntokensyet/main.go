package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muffinresearch/arewedesigntokensyet/internal/analyzer"
	"github.com/muffinresearch/arewedesigntokensyet/internal/config"
	"github.com/muffinresearch/arewedesigntokensyet/internal/log"
	"github.com/muffinresearch/arewedesigntokensyet/internal/report"
	"github.com/muffinresearch/arewedesigntokensyet/internal/scanner"
	"github.com/muffinresearch/arewedesigntokensyet/internal/version"
	"github.com/muffinresearch/arewedesigntokensyet/internal/watch"
)

var (
	rootCmd = &cobra.Command{
		Use:   "arewedesigntokensyet",
		Short: "Measure design token adoption across a CSS codebase",
		Long: "Scans CSS files, resolves var() references through custom property aliases " +
			"to design tokens, and reports token usage per file, per property, and per token.",
	}

	scanCmd = &cobra.Command{
		Use:   "scan [path]",
		Short: "Analyze a directory of CSS files and write usage reports",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScan,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.GetFullVersion())
		},
	}

	// Flags
	configPath string
	outDir     string
	jsonOutput bool
	debug      bool
	watchMode  bool
)

func init() {
	scanCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a config file (default: discover .awdty.* in the scanned directory)")
	scanCmd.Flags().StringVarP(&outDir, "out", "o", "awdty-reports", "Directory to write report artifacts to")
	scanCmd.Flags().BoolVar(&jsonOutput, "json", false, "Write the combined result to stdout instead of report files")
	scanCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
	scanCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Re-run the analysis when files change")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(versionCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	if debug {
		log.SetLevel(log.LevelDebug)
	}

	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.Discover(root)
	}
	if err != nil {
		return err
	}

	run := func() error {
		rc, err := analyzer.NewRunContext(cfg)
		if err != nil {
			return err
		}

		files, err := scanner.FindFiles(root, cfg.IncludeGlobs, cfg.ExcludeGlobs)
		if err != nil {
			return err
		}
		log.Info("analyzing %d files under %s", len(files), root)

		result, err := rc.Run(files)
		if err != nil {
			return err
		}

		writer := report.NewWriter(outDir, cfg.RepoRootPath)
		if jsonOutput {
			return writer.Render(cmd.OutOrStdout(), result)
		}
		if err := writer.WriteAll(result); err != nil {
			return err
		}
		printSummary(cmd, result)
		return nil
	}

	if err := run(); err != nil {
		return err
	}

	if watchMode {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		err := watch.Watch(ctx, root, func() {
			if err := run(); err != nil {
				log.Error("re-run failed: %v", err)
			}
		})
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

// printSummary writes the human-readable run totals
func printSummary(cmd *cobra.Command, result *analyzer.RunResult) {
	tokenDecls := 0
	eligible := 0
	for _, file := range result.Files {
		tokenDecls += file.DesignTokenCount
		for _, decl := range file.FoundPropValues {
			if !decl.IsExcluded || decl.ContainsDesignToken {
				eligible++
			}
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Files analyzed:        %d\n", len(result.Files))
	fmt.Fprintf(out, "Token declarations:    %d\n", tokenDecls)
	if eligible > 0 {
		fmt.Fprintf(out, "Overall adoption:      %.2f%%\n", float64(tokenDecls)/float64(eligible)*100)
	}
	fmt.Fprintf(out, "Unresolved variables:  %d\n", len(result.Unresolved.Variables))
	fmt.Fprintf(out, "Reports written to:    %s\n", outDir)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}

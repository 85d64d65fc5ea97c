// Package cmd implements the command-line interface for vidsieve.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vidsieve-cli/vidsieve/capture"
	"github.com/vidsieve-cli/vidsieve/color"
	"github.com/vidsieve-cli/vidsieve/filesystem"
	"github.com/vidsieve-cli/vidsieve/icon"
	"github.com/vidsieve-cli/vidsieve/inline"
	"github.com/vidsieve-cli/vidsieve/key"
	"github.com/vidsieve-cli/vidsieve/pipeline"
	"github.com/vidsieve-cli/vidsieve/style"
	"github.com/vidsieve-cli/vidsieve/toolbox"
	"github.com/vidsieve-cli/vidsieve/util"
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("url", "u", "", "URL of the page the resources were captured from")
	runCmd.Flags().StringP("input", "i", "", "File with captured resource URLs, or - to read from stdin")
	runCmd.Flags().StringP("output", "o", "", "Destination directory for acquired media")
	runCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}

// runCmd executes one acquisition run over pasted or piped resource URLs.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Acquire captured media resources and reassemble them into playable files",
	Long: `Feed captured resource URLs into the acquisition pipeline: playlists are
resolved through ffmpeg, direct binaries are fetched with reconstructed
browser headers, transport-stream fragments are consolidated and split
audio/video tracks are muxed into single containers.

Input is either a JSON object with a "videoUrls" array or plain text with
one URL per line, read from --input (a file, or - for stdin).`,
	Example: "  vidsieve run -u https://example.com/watch -i captured.json -o ~/Videos",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			pageURL = lo.Must(cmd.Flags().GetString("url"))
			input   = lo.Must(cmd.Flags().GetString("input"))
			output  = lo.Must(cmd.Flags().GetString("output"))
			skip    = lo.Must(cmd.Flags().GetBool("yes"))
		)

		urls, err := readInput(input)
		handleErr(err)
		if len(urls) == 0 {
			handleErr(errors.New("no resource URLs found in input"))
		}

		warnIfToolboxMissing()

		fmt.Printf("%s %s captured:\n", icon.Get(icon.Download), util.Quantify(len(urls), "resource", "resources"))
		width, _, _ := util.TerminalSize()
		for _, u := range urls {
			fmt.Printf("  %s\n", style.Faint(truncate(u, width-2)))
		}

		if !skip {
			var confirmed bool
			prompt := &survey.Confirm{
				Message: fmt.Sprintf("Acquire %s?", util.Quantify(len(urls), "resource", "resources")),
				Default: true,
			}
			handleErr(survey.AskOne(prompt, &confirmed))
			if !confirmed {
				return
			}
		}

		report, err := pipeline.Run(
			context.Background(),
			toolbox.NewFFmpeg(),
			capture.FromURLs(pageURL, urls),
			pipeline.Options{DestDir: output},
		)
		handleErr(err)

		printReport(report)
	},
}

// truncate shortens s to fit within max columns. A non-positive max, as
// returned when stdout is not a terminal, leaves s untouched.
func truncate(s string, max int) string {
	if max <= 3 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// readInput loads the pasted capture feed from a file or stdin.
func readInput(input string) ([]string, error) {
	switch input {
	case "", "-":
		return inline.ReadAll(os.Stdin)
	default:
		data, err := filesystem.API().ReadFile(input)
		if err != nil {
			return nil, fmt.Errorf("read input file: %w", err)
		}
		return inline.ParseURLs(string(data)), nil
	}
}

func warnIfToolboxMissing() {
	if toolbox.NewFFmpeg().Available() {
		return
	}
	fmt.Printf(
		"%s %s not found in PATH; playlists, consolidation and muxing will be skipped\n",
		icon.Get(icon.Question),
		viper.GetString(key.ToolboxFFmpeg),
	)
}

func printReport(report *pipeline.Report) {
	green := style.Fg(color.Green)
	fmt.Printf(
		"\n%s downloaded %s",
		green(icon.Get(icon.Success)),
		util.Quantify(report.Downloaded, "resource", "resources"),
	)
	if report.Failed > 0 {
		fmt.Printf(", %s failed", style.Fg(color.Red)(fmt.Sprint(report.Failed)))
	}
	fmt.Println()

	for _, u := range report.FailedURLs {
		fmt.Printf("  %s %s\n", icon.Get(icon.Fail), style.Faint(u))
	}

	if report.Consolidated > 0 {
		fmt.Printf(
			"%s consolidated %s\n",
			icon.Get(icon.Merge),
			util.Quantify(report.Consolidated, "fragment group", "fragment groups"),
		)
	}
	if report.Muxed > 0 {
		fmt.Printf(
			"%s muxed %s\n",
			icon.Get(icon.Merge),
			util.Quantify(report.Muxed, "audio/video pair", "audio/video pairs"),
		)
	}

	fmt.Println()
	for _, f := range report.Files {
		fmt.Printf("  %s\n", style.Bold(f))
	}
}

// Package cmd implements the command-line interface for vidsieve.
package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vidsieve-cli/vidsieve/color"
	"github.com/vidsieve-cli/vidsieve/icon"
	"github.com/vidsieve-cli/vidsieve/key"
	"github.com/vidsieve-cli/vidsieve/style"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

// checkCmd verifies the availability of the delegated media binaries.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that the required external media binaries are installed",
	Run: func(cmd *cobra.Command, args []string) {
		ok := true
		for _, dep := range []string{
			viper.GetString(key.ToolboxFFmpeg),
			viper.GetString(key.ToolboxFFprobe),
		} {
			if _, err := exec.LookPath(dep); err != nil {
				printMissingDependencyError(dep)
				ok = false
				continue
			}
			fmt.Printf("%s %s found\n", icon.Get(icon.Success), dep)
		}

		if !ok {
			os.Exit(1)
		}
	},
}

func printMissingDependencyError(dep string) {
	var installCmd string
	switch runtime.GOOS {
	case "darwin":
		installCmd = "brew install ffmpeg"
	case "linux":
		installCmd = "sudo apt install ffmpeg"
	case "windows":
		installCmd = "scoop install ffmpeg"
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(color.HiRed).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := fmt.Sprintf("The required dependency '%s' was not found in your PATH.", dep)

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(color.Orange).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"stevedore-cli/internal/issue"
	"stevedore-cli/internal/launch"
)

// verifyCmd checks a built image against the recipe's testable properties
var verifyCmd = &cobra.Command{
	Use:   "verify [dir]",
	Short: "Verify the built image's properties",
	Long: `Verify the built image's properties with short-lived probe containers:
the runtime uid, tree ownership, the artifact directories, the package
cache, and the installed dependencies.

The image is built first if it is missing or stale. A failing probe sets
a non-zero exit code; all probes run regardless.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerifyCmd,
}

func runVerifyCmd(cmd *cobra.Command, args []string) error {
	build, err := buildImage(cmd, args)
	if err != nil {
		return err
	}

	verifier := launch.NewVerifier(build.Engine, log.Default())

	report, err := verifier.Verify(cmd.Context(), build.Result.ImageTag, build.Recipe)
	if err != nil {
		return err
	}

	printReport(report)

	if !report.OK() {
		rendered, renderErr := issue.Lookup(issue.VerificationFailedId).Render("dark")
		if renderErr == nil {
			fmt.Fprint(os.Stderr, rendered)
		}
		return &ExitError{Code: 1, Err: fmt.Errorf("%d of %d probes failed", len(report.Failed()), len(report.Results))}
	}

	return nil
}

func printReport(report *launch.Report) {
	fmt.Println(TitleStyle.Render("Verification report") + " " + SubtitleStyle.Render(report.ImageTag))
	fmt.Println()

	for _, res := range report.Results {
		if res.Err != nil {
			fmt.Printf("  %s %s: %v\n", ErrorStyle.Render("✗"), res.Name, res.Err)
		} else {
			fmt.Printf("  %s %s\n", SuccessStyle.Render("✓"), res.Name)
		}
	}
	fmt.Println()
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"stevedore-cli/internal/assemble"
)

// renderCmd prints the build manifest a recipe would produce
var renderCmd = &cobra.Command{
	Use:   "render [dir]",
	Short: "Print the build manifest for a recipe without building",
	Long: `Print the Dockerfile that 'stevedore build' would hand to the engine,
derived from the recipe in the given directory (default: current directory).

Nothing is built and no engine is needed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRenderCmd,
}

func runRenderCmd(cmd *cobra.Command, args []string) error {
	srcDir, err := srcDirFromArgs(args)
	if err != nil {
		return err
	}

	r, err := loadRecipe(srcDir)
	if err != nil {
		return err
	}

	fmt.Print(assemble.Dockerfile(r))
	return nil
}

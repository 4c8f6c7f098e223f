// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"stevedore-cli/pkg/recipe"
)

var (
	initForce bool

	// initCmd creates a new recipe file
	initCmd = &cobra.Command{
		Use:   "init [service-name]",
		Short: "Create a starter recipe in the current directory",
		Long: `Create a starter recipe in the current directory.

The service name defaults to the directory name, lowercased. The generated
stevedore.cue carries the standard pipeline defaults: node:20-alpine base,
/usr/src/app workdir, downloads/uploads artifact directories, and a
non-root service account (uid 1000).`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInitCmd,
	}
)

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing recipe")
}

func runInitCmd(cmd *cobra.Command, args []string) error {
	name, err := serviceNameFromArgs(args)
	if err != nil {
		return err
	}

	if _, err := os.Stat(recipe.DefaultFileName); err == nil && !initForce {
		return fmt.Errorf("file '%s' already exists. Use --force to overwrite", recipe.DefaultFileName)
	}

	content := recipe.GenerateCUE(recipe.DefaultRecipe(name))

	if err := os.WriteFile(recipe.DefaultFileName, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	absPath, _ := filepath.Abs(recipe.DefaultFileName)
	fmt.Printf("%s Created %s\n", SuccessStyle.Render("✓"), absPath)
	fmt.Println()
	fmt.Println(SubtitleStyle.Render("Next steps:"))
	fmt.Println("  1. Review the recipe and adjust image, port, or owner as needed")
	fmt.Println("  2. Make sure package.json and package-lock.json are present")
	fmt.Println("  3. Run 'stevedore run' to build and start the service")

	return nil
}

// serviceNameFromArgs takes the explicit service name, or derives one from
// the current directory.
func serviceNameFromArgs(args []string) (recipe.ServiceName, error) {
	var raw string
	if len(args) > 0 {
		raw = args[0]
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		raw = strings.ToLower(filepath.Base(wd))
	}

	name := recipe.ServiceName(raw)
	if err := name.Validate(); err != nil {
		return "", err
	}
	return name, nil
}

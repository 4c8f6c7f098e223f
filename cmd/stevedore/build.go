// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"stevedore-cli/internal/assemble"
	"stevedore-cli/internal/container"
	"stevedore-cli/internal/issue"
	"stevedore-cli/pkg/recipe"
)

var (
	buildNoCache bool
	buildTag     string

	// buildCmd assembles a service image
	buildCmd = &cobra.Command{
		Use:   "build [dir]",
		Short: "Assemble the service image",
		Long: `Assemble the service image from the recipe in the given directory
(default: current directory).

The pipeline is all-or-nothing: the first failing step aborts the build
and no image is tagged. A previously built image with the same content
key is reused unless --no-cache is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBuildCmd,
	}
)

func init() {
	buildCmd.Flags().BoolVar(&buildNoCache, "no-cache", false, "force a rebuild, bypassing layer and image caches")
	buildCmd.Flags().StringVarP(&buildTag, "tag", "t", "", "override the derived image tag")
}

func runBuildCmd(cmd *cobra.Command, args []string) error {
	build, err := buildImage(cmd, args)
	if err != nil {
		return err
	}

	if build.Result.Reused {
		fmt.Printf("%s Image up to date: %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(build.Result.ImageTag))
	} else {
		fmt.Printf("%s Built %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(build.Result.ImageTag))
	}
	return nil
}

// buildOutcome carries everything verify and run need after a build.
type buildOutcome struct {
	Result *assemble.Result
	Recipe *recipe.Recipe
	Engine container.Engine
}

// buildImage runs the shared assembly path used by build, verify, and run.
func buildImage(cmd *cobra.Command, args []string) (*buildOutcome, error) {
	srcDir, err := srcDirFromArgs(args)
	if err != nil {
		return nil, err
	}

	r, err := loadRecipe(srcDir)
	if err != nil {
		return nil, err
	}

	engine, err := engineFromConfig()
	if err != nil {
		return nil, err
	}

	assembler := assemble.New(engine, log.Default(), assembleOptions())

	result, err := assembler.Assemble(cmd.Context(), r, srcDir)
	if err != nil {
		if id, ok := assemblyFailureCard(err); ok {
			rendered, renderErr := issue.Lookup(id).Render("dark")
			if renderErr == nil {
				fmt.Fprint(os.Stderr, rendered)
			}
		}
		return nil, err
	}

	return &buildOutcome{Result: result, Recipe: r, Engine: engine}, nil
}

// assembleOptions merges config defaults with the build flags.
func assembleOptions() assemble.Options {
	opts := assemble.Options{
		NoCache: buildNoCache,
		Tag:     buildTag,
	}
	if cfg != nil {
		opts.TagPrefix = cfg.Build.TagPrefix
		if cfg.Build.NoCache {
			opts.NoCache = true
		}
	}
	return opts
}

// assemblyFailureCard maps a failed assembly to the issue card describing
// its failure class, when one exists.
func assemblyFailureCard(err error) (issue.Id, bool) {
	switch {
	case errors.Is(err, assemble.ErrManifestPairMissing):
		return issue.ManifestPairMissingId, true
	case errors.Is(err, container.ErrBuildFailed):
		return issue.ImageBuildFailedId, true
	}
	return 0, false
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"stevedore-cli/internal/container"
	"stevedore-cli/internal/issue"
	"stevedore-cli/pkg/recipe"
)

// srcDirFromArgs resolves the service directory from the optional positional
// argument, defaulting to the current directory.
func srcDirFromArgs(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve directory '%s': %w", dir, err)
	}
	return abs, nil
}

// loadRecipe parses the recipe in the service directory. A missing recipe
// gets an issue card on stderr so the user sees what to do next.
func loadRecipe(srcDir string) (*recipe.Recipe, error) {
	path := filepath.Join(srcDir, recipe.DefaultFileName)

	if _, err := os.Stat(path); err != nil {
		rendered, renderErr := issue.Lookup(issue.RecipeNotFoundId).Render("dark")
		if renderErr == nil {
			fmt.Fprint(os.Stderr, rendered)
		}
		return nil, issue.NewErrorContext().
			WithOperation("locate recipe").
			WithResource(path).
			WithSuggestion("Run 'stevedore init <service>' to create one").
			Wrap(err).
			BuildError()
	}

	r, err := recipe.Parse(path)
	if err != nil {
		rendered, renderErr := issue.Lookup(issue.RecipeParseErrorId).Render("dark")
		if renderErr == nil {
			fmt.Fprint(os.Stderr, rendered)
		}
		return nil, err
	}

	return r, nil
}

// engineFromConfig picks the container engine: the configured preference when
// set, otherwise auto-detection.
func engineFromConfig() (container.Engine, error) {
	var (
		engine container.Engine
		err    error
	)

	if cfg != nil && cfg.ContainerEngine != "" {
		engine, err = container.NewEngine(container.EngineType(cfg.ContainerEngine))
	} else {
		engine, err = container.AutoDetectEngine()
	}
	if err != nil {
		var notAvailable *container.ErrEngineNotAvailable
		if errors.As(err, &notAvailable) {
			rendered, renderErr := issue.Lookup(issue.EngineNotFoundId).Render("dark")
			if renderErr == nil {
				fmt.Fprint(os.Stderr, rendered)
			}
		}
		return nil, err
	}

	return engine, nil
}

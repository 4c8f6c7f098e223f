// SPDX-License-Identifier: MPL-2.0

package recipe

import (
	_ "embed"
	"fmt"
	"os"

	"stevedore-cli/pkg/cueutil"
)

//go:embed recipe_schema.cue
var recipeSchema string

// Parse reads and parses a recipe from the given path.
func Parse(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe at %s: %w", path, err)
	}
	return ParseBytes(data, path)
}

// ParseBytes parses recipe content from bytes. The content is unified with
// the embedded schema (which supplies defaults), then the decoded struct is
// validated semantically.
func ParseBytes(data []byte, path string) (*Recipe, error) {
	result, err := cueutil.ParseAndDecodeString[Recipe](
		recipeSchema,
		data,
		"#Recipe",
		cueutil.WithFilename(path),
	)
	if err != nil {
		return nil, err
	}

	r := result.Value
	r.FilePath = path

	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return r, nil
}

// SPDX-License-Identifier: MPL-2.0

package assemble

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"stevedore-cli/internal/container"
	"stevedore-cli/internal/issue"
	"stevedore-cli/pkg/recipe"
)

const (
	// DefaultTagPrefix namespaces stevedore-built images.
	DefaultTagPrefix = "stevedore/"

	// tagKeyLen is how many hex digits of the content key go into the tag.
	tagKeyLen = 12
)

// ErrManifestPairMissing reports that package.json or package-lock.json is
// absent from the source tree. The pair is all-or-nothing.
var ErrManifestPairMissing = errors.New("dependency manifest pair missing")

type (
	// Options control an assembly run.
	Options struct {
		// NoCache forces a rebuild: the engine layer cache is bypassed and
		// an existing image with the same content key is not reused.
		NoCache bool

		// Tag overrides the derived content-addressed tag.
		Tag string

		// TagPrefix namespaces derived tags. Defaults to DefaultTagPrefix.
		TagPrefix string
	}

	// Result describes a completed assembly.
	Result struct {
		// ImageTag is the tag of the built (or reused) image.
		ImageTag string

		// Reused is true when an existing image with the same content key
		// was found and no build ran.
		Reused bool
	}

	// Assembler builds service images through a container engine.
	Assembler struct {
		engine container.Engine
		logger *log.Logger
		opts   Options
	}
)

// New creates an Assembler.
func New(engine container.Engine, logger *log.Logger, opts Options) *Assembler {
	if opts.TagPrefix == "" {
		opts.TagPrefix = DefaultTagPrefix
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Assembler{
		engine: engine,
		logger: logger,
		opts:   opts,
	}
}

// ImageTag returns the tag an assembly of this recipe and source tree would
// produce, without building anything.
func (a *Assembler) ImageTag(r *recipe.Recipe, srcDir string) (string, error) {
	if a.opts.Tag != "" {
		return a.opts.Tag, nil
	}
	key, err := contentKey(r, srcDir)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s:%s", a.opts.TagPrefix, r.Service, key[:tagKeyLen]), nil
}

// Assemble validates the recipe, checks the manifest pair, derives the image
// tag, and builds the image from srcDir. The pipeline is all-or-nothing: the
// first failure aborts and nothing is tagged.
func (a *Assembler) Assemble(ctx context.Context, r *recipe.Recipe, srcDir string) (*Result, error) {
	if err := r.Validate(); err != nil {
		return nil, issue.WrapWithContext(err, "validate recipe", r.FilePath)
	}

	if err := checkManifestPair(srcDir); err != nil {
		return nil, err
	}

	tag, err := a.ImageTag(r, srcDir)
	if err != nil {
		return nil, issue.WrapWithOperation(err, "derive image tag")
	}

	if !a.opts.NoCache {
		exists, _ := a.engine.ImageExists(ctx, tag) //nolint:errcheck // error treated as "not found"
		if exists {
			a.logger.Info("image up to date", "tag", tag)
			return &Result{ImageTag: tag, Reused: true}, nil
		}
	}

	a.logger.Info("assembling image", "service", r.Service, "tag", tag, "engine", a.engine.Name())

	dockerfilePath, cleanup, err := stageDockerfile(r)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	buildOpts := container.BuildOptions{
		ContextDir: srcDir,
		Dockerfile: dockerfilePath,
		Tag:        tag,
		NoCache:    a.opts.NoCache,
		Stdout:     os.Stderr, // build progress goes to stderr
		Stderr:     os.Stderr,
	}

	if err := a.engine.Build(ctx, buildOpts); err != nil {
		return nil, err
	}

	a.logger.Info("image assembled", "tag", tag)
	return &Result{ImageTag: tag}, nil
}

// checkManifestPair verifies both manifest files exist in the source tree
// before the engine is invoked, so the failure is attributable.
func checkManifestPair(srcDir string) error {
	for _, name := range recipe.ManifestPair() {
		if _, err := os.Stat(filepath.Join(srcDir, name)); err != nil {
			return issue.NewErrorContext().
				WithOperation("locate dependency manifest").
				WithResource(filepath.Join(srcDir, name)).
				WithSuggestion("The build installs dependencies from package.json and package-lock.json").
				WithSuggestion("Generate the lockfile with: npm install --package-lock-only").
				Wrap(fmt.Errorf("%w: %w", ErrManifestPairMissing, err)).
				BuildError()
		}
	}
	return nil
}

// stageDockerfile writes the rendered build manifest to a temp directory
// outside the build context, so the application tree is copied untouched.
func stageDockerfile(r *recipe.Recipe) (path string, cleanup func(), err error) {
	tmpDir, err := os.MkdirTemp("", "stevedore-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	cleanup = func() {
		_ = os.RemoveAll(tmpDir) // staging dir; removal error non-critical
	}

	path = filepath.Join(tmpDir, "Dockerfile")
	if err := os.WriteFile(path, []byte(Dockerfile(r)), 0o644); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to write Dockerfile: %w", err)
	}

	return path, cleanup, nil
}

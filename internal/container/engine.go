// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Engine defines the container operations stevedore needs.
type Engine interface {
	// Name returns the engine name (docker or podman).
	Name() string
	// Available checks if the engine is usable on this system.
	Available() bool
	// Version returns the engine version.
	Version(ctx context.Context) (string, error)

	// Build builds an image from a Dockerfile. Any failure aborts the
	// build; no partial image is tagged.
	Build(ctx context.Context, opts BuildOptions) error
	// Run runs a container to completion and reports its exit code.
	Run(ctx context.Context, opts RunOptions) (*RunResult, error)
	// ImageExists checks if an image is present locally.
	ImageExists(ctx context.Context, image string) (bool, error)
	// RemoveImage removes an image.
	RemoveImage(ctx context.Context, image string, force bool) error
	// Remove removes a container.
	Remove(ctx context.Context, containerID string, force bool) error
}

type (
	// BuildOptions contains options for building an image.
	BuildOptions struct {
		// ContextDir is the build context directory (the application tree).
		ContextDir string
		// Dockerfile is the path to the Dockerfile. Relative paths are
		// resolved against ContextDir; absolute paths are used as-is.
		Dockerfile string
		// Tag is the image tag.
		Tag string
		// NoCache disables the engine's layer cache.
		NoCache bool
		// Stdout is where build output is written.
		Stdout io.Writer
		// Stderr is where build errors are written.
		Stderr io.Writer
	}

	// RunOptions contains options for running a container.
	RunOptions struct {
		// Image is the image to run.
		Image string
		// Command overrides the image's start command when non-empty.
		Command []string
		// Env contains environment variables.
		Env map[string]string
		// Volumes are bind mounts from the host into the container.
		Volumes []VolumeMount
		// Ports are host-to-container port mappings.
		Ports []PortMapping
		// Remove deletes the container after it exits.
		Remove bool
		// Name is the container name (optional).
		Name string
		// Stdin is the container's standard input.
		Stdin io.Reader
		// Stdout is where standard output is written.
		Stdout io.Writer
		// Stderr is where standard error is written.
		Stderr io.Writer
	}

	// RunResult contains the result of running a container. A non-zero exit
	// code is not an error at this layer: the process's exit status
	// propagates verbatim.
	RunResult struct {
		// ExitCode is the container process exit code.
		ExitCode int
		// Error is set only for infrastructure failures (binary missing,
		// engine unreachable), never for non-zero application exits.
		Error error
	}

	// EngineType identifies a container engine.
	EngineType string

	// ErrEngineNotAvailable is returned when no usable engine is found.
	ErrEngineNotAvailable struct {
		Engine string
		Reason string
	}
)

const (
	EngineTypePodman EngineType = "podman"
	EngineTypeDocker EngineType = "docker"
)

// ErrInvalidBuildOptions is the sentinel error wrapped by invalid BuildOptions.
var ErrInvalidBuildOptions = errors.New("invalid build options")

// ErrBuildFailed is the sentinel error wrapped when the engine rejects a
// build step. The pipeline is all-or-nothing, so this always means no image
// was tagged.
var ErrBuildFailed = errors.New("image build failed")

// ErrInvalidRunOptions is the sentinel error wrapped by invalid RunOptions.
var ErrInvalidRunOptions = errors.New("invalid run options")

// Error implements the error interface.
func (e *ErrEngineNotAvailable) Error() string {
	return fmt.Sprintf("container engine '%s' is not available: %s", e.Engine, e.Reason)
}

// Validate returns an error if the BuildOptions are unusable.
func (o BuildOptions) Validate() error {
	if o.ContextDir == "" {
		return fmt.Errorf("%w: context directory is required", ErrInvalidBuildOptions)
	}
	return nil
}

// Validate returns an error if the RunOptions are unusable. Volume and port
// specs are validated individually so a bad mount is caught before the
// engine is invoked.
func (o RunOptions) Validate() error {
	if o.Image == "" {
		return fmt.Errorf("%w: image is required", ErrInvalidRunOptions)
	}
	var errs []error
	for _, v := range o.Volumes {
		if err := v.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, p := range o.Ports {
		if err := p.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRunOptions, errors.Join(errs...))
	}
	return nil
}

// NewEngine creates a container engine honoring the preference, falling back
// to the other engine when the preferred one is unavailable.
func NewEngine(preferred EngineType) (Engine, error) {
	switch preferred {
	case EngineTypePodman:
		podman := NewPodmanEngine()
		if podman.Available() {
			return podman, nil
		}
		docker := NewDockerEngine()
		if docker.Available() {
			return docker, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: string(EngineTypePodman),
			Reason: "podman is not installed or not accessible, and docker fallback is also not available",
		}

	case EngineTypeDocker:
		docker := NewDockerEngine()
		if docker.Available() {
			return docker, nil
		}
		podman := NewPodmanEngine()
		if podman.Available() {
			return podman, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: string(EngineTypeDocker),
			Reason: "docker is not installed or not accessible, and podman fallback is also not available",
		}

	default:
		return nil, fmt.Errorf("unknown container engine type: %s", preferred)
	}
}

// AutoDetectEngine finds any available container engine, trying Podman first
// (more common in rootless setups).
func AutoDetectEngine() (Engine, error) {
	podman := NewPodmanEngine()
	if podman.Available() {
		return podman, nil
	}

	docker := NewDockerEngine()
	if docker.Available() {
		return docker, nil
	}

	return nil, &ErrEngineNotAvailable{
		Engine: "any",
		Reason: "no container engine (podman or docker) is available on this system",
	}
}

// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"stevedore-cli/internal/container"
	"stevedore-cli/pkg/recipe"
)

type (
	// LaunchOptions describe one container launch.
	LaunchOptions struct {
		// ImageTag is the built image to run.
		ImageTag string

		// HostPort is published to the recipe's container port. Zero means
		// the container port number is reused on the host.
		HostPort container.NetworkPort

		// DownloadsDir and UploadsDir optionally bind host directories over
		// the image's artifact directories, so artifacts survive the
		// container.
		DownloadsDir string
		UploadsDir   string

		// Name is the container name (optional).
		Name string

		// Stdin, Stdout, Stderr are passed through to the process.
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// Launcher runs built service images.
	Launcher struct {
		engine container.Engine
		logger *log.Logger
	}
)

// NewLauncher creates a Launcher.
func NewLauncher(engine container.Engine, logger *log.Logger) *Launcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Launcher{engine: engine, logger: logger}
}

// Launch starts the image as the container's terminal process and blocks
// until it exits. The process exit code is returned and becomes stevedore's
// own exit code; stevedore adds no supervision or restart on top.
func (l *Launcher) Launch(ctx context.Context, r *recipe.Recipe, opts LaunchOptions) (int, error) {
	runOpts := container.RunOptions{
		Image:  opts.ImageTag,
		Remove: true,
		Name:   opts.Name,
		Ports:  []container.PortMapping{publishedPort(r, opts.HostPort)},
		Stdin:  opts.Stdin,
		Stdout: opts.Stdout,
		Stderr: opts.Stderr,
	}

	if opts.DownloadsDir != "" {
		m, err := artifactMount(r, opts.DownloadsDir, "downloads")
		if err != nil {
			return 1, err
		}
		runOpts.Volumes = append(runOpts.Volumes, m)
	}
	if opts.UploadsDir != "" {
		m, err := artifactMount(r, opts.UploadsDir, "uploads")
		if err != nil {
			return 1, err
		}
		runOpts.Volumes = append(runOpts.Volumes, m)
	}

	l.logger.Info("launching container",
		"image", opts.ImageTag,
		"port", publishedPort(r, opts.HostPort).String(),
		"engine", l.engine.Name())

	result, err := l.engine.Run(ctx, runOpts)
	if err != nil {
		return 1, err
	}
	if result.Error != nil {
		return result.ExitCode, result.Error
	}

	l.logger.Debug("container exited", "code", result.ExitCode)
	return result.ExitCode, nil
}

// publishedPort maps the requested host port (or, by default, the recipe's
// own port number) to the recipe's container port.
func publishedPort(r *recipe.Recipe, hostPort container.NetworkPort) container.PortMapping {
	if hostPort == 0 {
		hostPort = container.NetworkPort(r.Port)
	}
	return container.PortMapping{
		HostPort:      hostPort,
		ContainerPort: container.NetworkPort(r.Port),
	}
}

// ErrArtifactDirNotProvisioned reports a mount request for a directory the
// recipe does not declare, so the image has nothing at the target path.
var ErrArtifactDirNotProvisioned = errors.New("artifact directory not provisioned")

// artifactMount binds a host directory over one of the image's provisioned
// artifact directories.
func artifactMount(r *recipe.Recipe, hostDir string, dir recipe.RelativeDir) (container.VolumeMount, error) {
	if !slices.Contains(r.ArtifactDirs, dir) {
		return container.VolumeMount{}, fmt.Errorf("%w: %q (recipe declares %v)",
			ErrArtifactDirNotProvisioned, dir, r.ArtifactDirs)
	}
	return container.VolumeMount{
		HostPath:      container.HostPath(hostDir),
		ContainerPath: container.TargetPath(r.Workdir.Join(dir)),
	}, nil
}

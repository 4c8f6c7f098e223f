// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"stevedore-cli/internal/container"
	"stevedore-cli/internal/launch"
)

var (
	runHostPort       uint16
	runName           string
	runMountDownloads string
	runMountUploads   string

	// runCmd builds (if needed) and runs the service container
	runCmd = &cobra.Command{
		Use:   "run [dir]",
		Short: "Run the service container",
		Long: `Build the image if needed, then run the service as the container's
terminal process. The service's exit code becomes stevedore's exit code,
unchanged.

The container's port is published to the host (same port number unless
--publish says otherwise). Host directories can be bound over the
image's downloads and uploads directories so artifacts outlive the
container. There is no supervision or restart: when the service stops,
so does stevedore.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRunCmd,
	}
)

func init() {
	runCmd.Flags().Uint16VarP(&runHostPort, "publish", "p", 0, "host port to publish (default: the recipe's port)")
	runCmd.Flags().StringVar(&runName, "name", "", "container name")
	runCmd.Flags().StringVar(&runMountDownloads, "mount-downloads", "", "host directory to bind over the downloads directory")
	runCmd.Flags().StringVar(&runMountUploads, "mount-uploads", "", "host directory to bind over the uploads directory")
}

func runRunCmd(cmd *cobra.Command, args []string) error {
	build, err := buildImage(cmd, args)
	if err != nil {
		return err
	}

	hostPort := runHostPort
	if hostPort == 0 && cfg != nil {
		hostPort = cfg.Run.HostPort
	}

	launcher := launch.NewLauncher(build.Engine, log.Default())

	exitCode, err := launcher.Launch(cmd.Context(), build.Recipe, launch.LaunchOptions{
		ImageTag:     build.Result.ImageTag,
		HostPort:     container.NetworkPort(hostPort),
		DownloadsDir: runMountDownloads,
		UploadsDir:   runMountUploads,
		Name:         runName,
		Stdin:        os.Stdin,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
	})
	if err != nil {
		return err
	}

	if exitCode != 0 {
		// The service's exit status propagates verbatim.
		return &ExitError{Code: exitCode, Err: fmt.Errorf("service exited with code %d", exitCode)}
	}

	return nil
}

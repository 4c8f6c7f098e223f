// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"stevedore-cli/internal/container"
	"stevedore-cli/pkg/recipe"
)

type (
	// Probe is one named property check executed in a short-lived container
	// against a built image.
	Probe struct {
		// Name identifies the probe in reports.
		Name string

		// Command is the argv run in place of the image's start command.
		Command []string

		// Check evaluates the probe outcome from the process exit code and
		// trimmed stdout. Nil Check means "exit code zero is a pass".
		Check func(exitCode int, output string) error
	}

	// ProbeResult is the outcome of a single probe.
	ProbeResult struct {
		Name string
		Err  error
	}

	// Report collects probe results for one image.
	Report struct {
		ImageTag string
		Results  []ProbeResult
	}

	// Verifier checks a built image against the build contract's testable
	// properties.
	Verifier struct {
		engine container.Engine
		logger *log.Logger
	}
)

// OK reports whether every probe passed.
func (r *Report) OK() bool {
	for _, res := range r.Results {
		if res.Err != nil {
			return false
		}
	}
	return true
}

// Failed returns the probes that did not hold.
func (r *Report) Failed() []ProbeResult {
	var failed []ProbeResult
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// NewVerifier creates a Verifier.
func NewVerifier(engine container.Engine, logger *log.Logger) *Verifier {
	if logger == nil {
		logger = log.Default()
	}
	return &Verifier{engine: engine, logger: logger}
}

// Probes returns the property checks for a recipe, in contract order:
// runtime identity, tree ownership, artifact directories, package cache,
// installed dependencies.
func Probes(r *recipe.Recipe) []Probe {
	uid := fmt.Sprintf("%d", r.Owner.UID)

	probes := []Probe{
		{
			// The effective uid must equal the fixed non-root account.
			Name:    "runtime-uid",
			Command: []string{"id", "-u"},
			Check: func(exitCode int, output string) error {
				if exitCode != 0 {
					return fmt.Errorf("id -u exited with code %d", exitCode)
				}
				if output != uid {
					return fmt.Errorf("process runs as uid %s, want %s", output, uid)
				}
				return nil
			},
		},
		{
			// Every file under the workdir must belong to the service
			// account; one stray path is enough to fail.
			Name:    "tree-ownership",
			Command: shell(fmt.Sprintf("find %s ! -user %s -print -quit", r.Workdir, uid)),
			Check: func(exitCode int, output string) error {
				if exitCode != 0 {
					return fmt.Errorf("ownership scan exited with code %d", exitCode)
				}
				if output != "" {
					return fmt.Errorf("%s is not owned by uid %s", output, uid)
				}
				return nil
			},
		},
	}

	for _, dir := range r.ArtifactDirs {
		path := r.Workdir.Join(dir)
		probes = append(probes, Probe{
			Name:    "artifact-dir-" + string(dir),
			Command: shell(fmt.Sprintf(`[ -d %s ] && [ -z "$(ls -A %s)" ]`, path, path)),
			Check: func(exitCode int, output string) error {
				if exitCode != 0 {
					return fmt.Errorf("%s is missing or not empty", path)
				}
				return nil
			},
		})
	}

	probes = append(probes,
		Probe{
			Name:    "cache-verify",
			Command: shell("npm cache verify --cache " + r.CachePath()),
		},
		Probe{
			Name:    "dependencies-present",
			Command: shell(fmt.Sprintf("[ -d %s/node_modules ]", r.Workdir)),
		},
	)

	return probes
}

// Verify runs every probe against the image and collects the outcomes. A
// failing probe does not stop the remaining ones; the report carries all
// failures. The returned error covers infrastructure problems only.
func (v *Verifier) Verify(ctx context.Context, imageTag string, r *recipe.Recipe) (*Report, error) {
	report := &Report{ImageTag: imageTag}

	for _, probe := range Probes(r) {
		var out bytes.Buffer

		result, err := v.engine.Run(ctx, container.RunOptions{
			Image:   imageTag,
			Command: probe.Command,
			Remove:  true,
			Stdout:  &out,
		})
		if err != nil {
			return nil, err
		}
		if result.Error != nil {
			return nil, result.Error
		}

		probeErr := evalProbe(probe, result.ExitCode, strings.TrimSpace(out.String()))
		if probeErr != nil {
			v.logger.Warn("probe failed", "probe", probe.Name, "err", probeErr)
		} else {
			v.logger.Debug("probe passed", "probe", probe.Name)
		}

		report.Results = append(report.Results, ProbeResult{Name: probe.Name, Err: probeErr})
	}

	return report, nil
}

func evalProbe(p Probe, exitCode int, output string) error {
	if p.Check != nil {
		return p.Check(exitCode, output)
	}
	if exitCode != 0 {
		return fmt.Errorf("probe exited with code %d", exitCode)
	}
	return nil
}

func shell(script string) []string {
	return []string{"/bin/sh", "-c", script}
}

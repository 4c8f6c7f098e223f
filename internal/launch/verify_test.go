// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"stevedore-cli/internal/container"
	"stevedore-cli/pkg/recipe"
)

// probeOutcome is one scripted probe container result.
type probeOutcome struct {
	exitCode int
	stdout   string
}

// probeEngine plays back one outcome per Run call, writing the scripted
// stdout the way a real probe container would.
type probeEngine struct {
	outcomes []probeOutcome
	runs     []container.RunOptions
}

func (p *probeEngine) Name() string                            { return "probe" }
func (p *probeEngine) Available() bool                         { return true }
func (p *probeEngine) Version(context.Context) (string, error) { return "0.0.0-test", nil }
func (p *probeEngine) Build(context.Context, container.BuildOptions) error { return nil }
func (p *probeEngine) ImageExists(context.Context, string) (bool, error)   { return true, nil }
func (p *probeEngine) RemoveImage(context.Context, string, bool) error     { return nil }
func (p *probeEngine) Remove(context.Context, string, bool) error          { return nil }

func (p *probeEngine) Run(_ context.Context, opts container.RunOptions) (*container.RunResult, error) {
	idx := len(p.runs)
	p.runs = append(p.runs, opts)
	if idx >= len(p.outcomes) {
		return &container.RunResult{}, nil
	}
	outcome := p.outcomes[idx]
	if opts.Stdout != nil && outcome.stdout != "" {
		fmt.Fprintln(opts.Stdout, outcome.stdout)
	}
	return &container.RunResult{ExitCode: outcome.exitCode}, nil
}

// allPass scripts a passing outcome for every probe of the recipe.
func allPass(r *recipe.Recipe) []probeOutcome {
	probes := Probes(r)
	outcomes := make([]probeOutcome, len(probes))
	for i, p := range probes {
		switch p.Name {
		case "runtime-uid":
			outcomes[i] = probeOutcome{stdout: fmt.Sprintf("%d", r.Owner.UID)}
		default:
			outcomes[i] = probeOutcome{}
		}
	}
	return outcomes
}

func TestProbes_ContractOrder(t *testing.T) {
	t.Parallel()

	probes := Probes(recipe.DefaultRecipe("api"))

	expected := []string{
		"runtime-uid",
		"tree-ownership",
		"artifact-dir-downloads",
		"artifact-dir-uploads",
		"cache-verify",
		"dependencies-present",
	}

	if len(probes) != len(expected) {
		t.Fatalf("got %d probes, want %d", len(probes), len(expected))
	}
	for i, name := range expected {
		if probes[i].Name != name {
			t.Errorf("probe[%d] = %q, want %q", i, probes[i].Name, name)
		}
	}
}

func TestProbes_Commands(t *testing.T) {
	t.Parallel()

	probes := Probes(recipe.DefaultRecipe("api"))
	byName := make(map[string]Probe, len(probes))
	for _, p := range probes {
		byName[p.Name] = p
	}

	if cmd := byName["runtime-uid"].Command; len(cmd) != 2 || cmd[0] != "id" || cmd[1] != "-u" {
		t.Errorf("runtime-uid command = %v", cmd)
	}

	ownership := strings.Join(byName["tree-ownership"].Command, " ")
	if !strings.Contains(ownership, "find /usr/src/app ! -user 1000 -print -quit") {
		t.Errorf("tree-ownership command = %q", ownership)
	}
	if strings.Contains(ownership, "|") {
		t.Errorf("ownership scan must surface find's own exit status, got %q", ownership)
	}

	cache := strings.Join(byName["cache-verify"].Command, " ")
	if !strings.Contains(cache, "npm cache verify --cache /usr/src/app/.npm-cache") {
		t.Errorf("cache-verify command = %q", cache)
	}

	deps := strings.Join(byName["dependencies-present"].Command, " ")
	if !strings.Contains(deps, "/usr/src/app/node_modules") {
		t.Errorf("dependencies-present command = %q", deps)
	}

	dl := strings.Join(byName["artifact-dir-downloads"].Command, " ")
	if !strings.Contains(dl, "/usr/src/app/downloads") {
		t.Errorf("artifact-dir-downloads command = %q", dl)
	}
}

func TestEvalProbe(t *testing.T) {
	t.Parallel()

	t.Run("nil check passes on zero exit", func(t *testing.T) {
		t.Parallel()
		if err := evalProbe(Probe{Name: "x"}, 0, ""); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("nil check fails on non-zero exit", func(t *testing.T) {
		t.Parallel()
		if err := evalProbe(Probe{Name: "x"}, 1, ""); err == nil {
			t.Error("expected error for non-zero exit")
		}
	})

	t.Run("custom check decides", func(t *testing.T) {
		t.Parallel()
		p := Probe{
			Name: "x",
			Check: func(exitCode int, output string) error {
				if output != "1000" {
					return fmt.Errorf("got %q", output)
				}
				return nil
			},
		}
		if err := evalProbe(p, 0, "1000"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if err := evalProbe(p, 0, "0"); err == nil {
			t.Error("expected error from custom check")
		}
	})
}

func TestVerifier_Verify(t *testing.T) {
	t.Parallel()

	r := recipe.DefaultRecipe("api")

	t.Run("all probes pass", func(t *testing.T) {
		t.Parallel()
		engine := &probeEngine{outcomes: allPass(r)}
		v := NewVerifier(engine, nil)

		report, err := v.Verify(context.Background(), "stevedore/api:abc123def456", r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !report.OK() {
			t.Errorf("report should pass, failures: %+v", report.Failed())
		}
		if len(report.Results) != len(Probes(r)) {
			t.Errorf("got %d results, want %d", len(report.Results), len(Probes(r)))
		}
		if len(engine.runs) != len(Probes(r)) {
			t.Errorf("every probe should run, got %d runs", len(engine.runs))
		}
	})

	t.Run("wrong uid fails the identity probe", func(t *testing.T) {
		t.Parallel()
		outcomes := allPass(r)
		outcomes[0] = probeOutcome{stdout: "0"} // runtime-uid reports root
		engine := &probeEngine{outcomes: outcomes}
		v := NewVerifier(engine, nil)

		report, err := v.Verify(context.Background(), "stevedore/api:abc123def456", r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		failed := report.Failed()
		if len(failed) != 1 || failed[0].Name != "runtime-uid" {
			t.Errorf("expected only runtime-uid to fail, got %+v", failed)
		}
	})

	t.Run("stray ownership fails but later probes still run", func(t *testing.T) {
		t.Parallel()
		outcomes := allPass(r)
		outcomes[1] = probeOutcome{stdout: "/usr/src/app/secret"} // tree-ownership finds a stray path
		engine := &probeEngine{outcomes: outcomes}
		v := NewVerifier(engine, nil)

		report, err := v.Verify(context.Background(), "stevedore/api:abc123def456", r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if report.OK() {
			t.Fatal("report should fail")
		}
		if len(engine.runs) != len(Probes(r)) {
			t.Errorf("a failing probe must not stop the rest, got %d runs", len(engine.runs))
		}
		failed := report.Failed()
		if len(failed) != 1 || failed[0].Name != "tree-ownership" {
			t.Errorf("expected only tree-ownership to fail, got %+v", failed)
		}
	})

	t.Run("non-empty artifact dir fails its probe", func(t *testing.T) {
		t.Parallel()
		outcomes := allPass(r)
		outcomes[2] = probeOutcome{exitCode: 1} // downloads missing or not empty
		engine := &probeEngine{outcomes: outcomes}
		v := NewVerifier(engine, nil)

		report, err := v.Verify(context.Background(), "stevedore/api:abc123def456", r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		failed := report.Failed()
		if len(failed) != 1 || failed[0].Name != "artifact-dir-downloads" {
			t.Errorf("expected only artifact-dir-downloads to fail, got %+v", failed)
		}
	})

	t.Run("probes override the image start command", func(t *testing.T) {
		t.Parallel()
		engine := &probeEngine{outcomes: allPass(r)}
		v := NewVerifier(engine, nil)

		if _, err := v.Verify(context.Background(), "stevedore/api:abc123def456", r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for i, run := range engine.runs {
			if len(run.Command) == 0 {
				t.Errorf("run[%d] should override the start command", i)
			}
			if !run.Remove {
				t.Errorf("run[%d] probe containers must be removed", i)
			}
		}
	})
}

// SPDX-License-Identifier: MPL-2.0

package assemble

import (
	"fmt"
	"strings"

	"stevedore-cli/pkg/recipe"
)

// Dockerfile renders the build manifest for a recipe. Step order is the
// contract: ownership runs after the tree copy so no file keeps build-time
// ownership, and the privilege drop comes last before the start command so
// nothing after it can regain elevated rights.
func Dockerfile(r *recipe.Recipe) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "FROM %s\n\n", r.Image)

	sb.WriteString("# Root for all subsequent relative operations\n")
	fmt.Fprintf(&sb, "WORKDIR %s\n\n", r.Workdir)

	sb.WriteString("# Install dependencies from the manifest pair\n")
	fmt.Fprintf(&sb, "COPY %s ./\n", strings.Join(recipe.ManifestPair(), " "))
	sb.WriteString("RUN npm ci\n\n")

	sb.WriteString("# Project-local package cache, verified before use\n")
	fmt.Fprintf(&sb, "RUN mkdir -p %s && \\\n", r.CacheDir)
	fmt.Fprintf(&sb, "    npm config set cache %s --location=project && \\\n", r.CachePath())
	fmt.Fprintf(&sb, "    npm cache verify --cache %s\n\n", r.CachePath())

	sb.WriteString("# Runtime artifact directories\n")
	fmt.Fprintf(&sb, "RUN mkdir -p %s\n\n", joinDirs(r.ArtifactDirs))

	sb.WriteString("# Application tree, overlaying anything created above\n")
	sb.WriteString("COPY . .\n\n")

	sb.WriteString("# Ownership and mode must be fixed after the copy\n")
	fmt.Fprintf(&sb, "RUN chown -R %s %s && chmod -R %s %s\n\n", r.Owner, r.Workdir, r.Mode, r.Workdir)

	fmt.Fprintf(&sb, "EXPOSE %s\n\n", r.Port)

	sb.WriteString("# Least-privilege boundary: nothing below runs as root\n")
	fmt.Fprintf(&sb, "USER %d\n\n", r.Owner.UID)

	fmt.Fprintf(&sb, "CMD %s\n", execForm(r.Start))

	return sb.String()
}

// execForm renders an argv in Dockerfile exec form, so the start command is
// launched directly rather than through a shell.
func execForm(argv recipe.StartCommand) string {
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		quoted[i] = fmt.Sprintf("%q", arg)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func joinDirs(dirs []recipe.RelativeDir) string {
	parts := make([]string, len(dirs))
	for i, d := range dirs {
		parts[i] = string(d)
	}
	return strings.Join(parts, " ")
}

// SPDX-License-Identifier: MPL-2.0

package recipe

import (
	"fmt"
	"strings"
)

// GenerateCUE renders a recipe as a stevedore.cue file. The output parses
// back to an equivalent recipe; it is what `stevedore init` writes.
func GenerateCUE(r *Recipe) string {
	var sb strings.Builder

	sb.WriteString("// Packaging recipe for the " + string(r.Service) + " service.\n")
	sb.WriteString("// Run `stevedore build` in this directory to assemble the image.\n\n")

	fmt.Fprintf(&sb, "service: %q\n", r.Service)
	fmt.Fprintf(&sb, "image:   %q\n", r.Image)
	fmt.Fprintf(&sb, "workdir: %q\n\n", r.Workdir)

	fmt.Fprintf(&sb, "cache_dir:     %q\n", r.CacheDir)
	fmt.Fprintf(&sb, "artifact_dirs: %s\n\n", cueStringList(relativeDirStrings(r.ArtifactDirs)))

	sb.WriteString("owner: {\n")
	fmt.Fprintf(&sb, "\tuid: %d\n", r.Owner.UID)
	fmt.Fprintf(&sb, "\tgid: %d\n", r.Owner.GID)
	sb.WriteString("}\n")
	fmt.Fprintf(&sb, "mode: %q\n\n", r.Mode)

	fmt.Fprintf(&sb, "port:  %d\n", r.Port)
	fmt.Fprintf(&sb, "start: %s\n", cueStringList(r.Start))

	return sb.String()
}

func cueStringList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func relativeDirStrings(dirs []RelativeDir) []string {
	out := make([]string, len(dirs))
	for i, d := range dirs {
		out[i] = string(d)
	}
	return out
}

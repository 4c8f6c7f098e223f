// SPDX-License-Identifier: MPL-2.0

// Package launch owns the runtime side of the pipeline: starting a built
// service image as the container's terminal process with its exit code
// propagated verbatim, and verifying a built image's properties (runtime
// identity, tree ownership, artifact directories, package cache) with
// short-lived probe containers.
//
// No supervision, restart, or health checking happens here; that belongs to
// an external orchestrator.
package launch

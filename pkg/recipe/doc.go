// SPDX-License-Identifier: MPL-2.0

// Package recipe defines the declarative packaging recipe for a Node.js
// service image.
//
// A recipe (stevedore.cue) names everything the build pipeline needs: the
// base image, the working directory, the service account that owns the
// application tree, the artifact directories provisioned for downloads and
// uploads, the local package cache, the exposed port, and the start command.
// The dependency manifest pair (package.json + package-lock.json) is fixed
// and not configurable; the application tree itself is opaque to stevedore.
//
// Recipes are validated twice: structurally against the embedded CUE schema
// at parse time, and semantically via Validate() on the decoded struct
// (absolute workdir, non-root service account, non-escaping directory names).
package recipe

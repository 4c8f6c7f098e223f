// SPDX-License-Identifier: MPL-2.0

// Package container abstracts the container engines (Docker and Podman)
// that stevedore drives through their CLI binaries.
//
// Both engines share BaseCLIEngine, which builds argument lists and executes
// commands; the concrete types only implement the parts that differ
// (availability probing, version formats, image existence checks, and
// Podman's SELinux/rootless adjustments).
package container

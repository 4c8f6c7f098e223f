// SPDX-License-Identifier: MPL-2.0

// Package assemble turns a packaging recipe into a built container image.
//
// The build contract is a strict, ordered pipeline: working directory,
// dependency install from the manifest pair, local cache configuration,
// artifact directory provisioning, full tree copy, recursive ownership,
// port declaration, privilege drop, start command. Each step's
// postcondition is the next step's precondition, and the rendered
// Dockerfile preserves that order exactly. Any failure aborts the build;
// no partial image is ever tagged.
package assemble

// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error presentation: structured
// actionable errors with fix suggestions, and a small catalog of known
// failure classes rendered as markdown cards.
package issue

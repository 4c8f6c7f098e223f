// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Id identifies a known failure class.
type Id int

const (
	RecipeNotFoundId Id = iota + 1
	RecipeParseErrorId
	ManifestPairMissingId
	EngineNotFoundId
	ImageBuildFailedId
	VerificationFailedId
)

type (
	// MarkdownMsg is the markdown body of an issue card.
	MarkdownMsg string

	// Issue is a known failure class with a rendered explanation.
	Issue struct {
		id    Id
		mdMsg MarkdownMsg
	}
)

// Id returns the issue identifier.
func (i *Issue) Id() Id {
	return i.id
}

// MarkdownMsg returns the raw markdown body.
func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// Render renders the issue card with the given glamour style.
func (i *Issue) Render(stylePath string) (string, error) {
	return render(string(i.mdMsg), stylePath)
}

var (
	render = glamour.Render

	recipeNotFoundIssue = &Issue{
		id: RecipeNotFoundId,
		mdMsg: `
# No recipe found!

We looked for a ` + "`stevedore.cue`" + ` recipe but couldn't find one.

## Things you can try:
- Create a starter recipe in your service directory:
~~~
$ stevedore init my-service
~~~

- Or point stevedore at the directory that has one:
~~~
$ stevedore build /path/to/service
~~~`,
	}

	recipeParseErrorIssue = &Issue{
		id: RecipeParseErrorId,
		mdMsg: `
# Failed to parse the recipe!

Your ` + "`stevedore.cue`" + ` contains syntax errors or invalid values.

## Common issues:
- Invalid CUE syntax (missing quotes, braces)
- A relative or empty ` + "`workdir`" + ` (it must be an absolute path)
- A root service account (` + "`owner.uid`" + ` and ` + "`owner.gid`" + ` must be non-zero)
- An empty ` + "`start`" + ` command

## Things you can try:
- Check the error message above for the exact field
- Compare against a fresh recipe from:
~~~
$ stevedore init --force my-service
~~~`,
	}

	manifestPairMissingIssue = &Issue{
		id: ManifestPairMissingId,
		mdMsg: `
# Dependency manifest pair missing!

The build installs dependencies from ` + "`package.json`" + ` and
` + "`package-lock.json`" + `, and at least one of them is not in the
source directory.

## Things you can try:
- Generate the lockfile next to your package.json:
~~~
$ npm install --package-lock-only
~~~
- Double-check you are building the right directory`,
	}

	engineNotFoundIssue = &Issue{
		id: EngineNotFoundId,
		mdMsg: `
# No container engine available!

stevedore drives Docker or Podman and found neither on this system.

## Things you can try:
- Install Podman or Docker and make sure the daemon/service is running
- If the engine is installed, check it answers:
~~~
$ docker version
$ podman version
~~~
- Pin a specific engine in your config:
~~~
$ stevedore config init
# then set container_engine = "podman"
~~~`,
	}

	imageBuildFailedIssue = &Issue{
		id: ImageBuildFailedId,
		mdMsg: `
# Image build failed!

The engine rejected one of the build steps. The pipeline is all-or-nothing:
no partial image was tagged.

## Things you can try:
- Read the build output above for the failing step
- Confirm the base image is reachable (try pulling it by hand)
- Re-run with full output:
~~~
$ stevedore --verbose build
~~~`,
	}

	verificationFailedIssue = &Issue{
		id: VerificationFailedId,
		mdMsg: `
# Image verification failed!

One or more post-build probes did not hold against the built image (runtime
identity, tree ownership, artifact directories, or the package cache).

## Things you can try:
- Check the per-probe report above for the failing property
- Rebuild without the cache in case a stale image was reused:
~~~
$ stevedore build --no-cache
~~~`,
	}

	issues = map[Id]*Issue{
		RecipeNotFoundId:      recipeNotFoundIssue,
		RecipeParseErrorId:    recipeParseErrorIssue,
		ManifestPairMissingId: manifestPairMissingIssue,
		EngineNotFoundId:      engineNotFoundIssue,
		ImageBuildFailedId:    imageBuildFailedIssue,
		VerificationFailedId:  verificationFailedIssue,
	}
)

// Lookup returns the issue for the given id, or nil if unknown.
func Lookup(id Id) *Issue {
	return issues[id]
}

// All returns every known issue id in ascending order.
func All() []Id {
	ids := maps.Keys(issues)
	slices.Sort(ids)
	return ids
}

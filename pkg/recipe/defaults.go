// SPDX-License-Identifier: MPL-2.0

package recipe

// DefaultRecipe returns the canonical recipe for the given service: node
// base image, /usr/src/app workdir, project-local npm cache, downloads and
// uploads artifact directories, the 1000:1000 service account, mode 755,
// port 8080, npm start. These match the schema defaults in
// recipe_schema.cue.
func DefaultRecipe(service ServiceName) *Recipe {
	return &Recipe{
		Service:      service,
		Image:        "node:20-alpine",
		Workdir:      "/usr/src/app",
		CacheDir:     ".npm-cache",
		ArtifactDirs: []RelativeDir{"downloads", "uploads"},
		Owner:        ServiceAccount{UID: 1000, GID: 1000},
		Mode:         "755",
		Port:         8080,
		Start:        StartCommand{"npm", "start"},
	}
}

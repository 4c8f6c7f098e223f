// SPDX-License-Identifier: MPL-2.0

package assemble

import (
	"strings"
	"testing"

	"stevedore-cli/pkg/recipe"
)

func TestDockerfile_Content(t *testing.T) {
	t.Parallel()

	r := recipe.DefaultRecipe("api")
	df := Dockerfile(r)

	for _, want := range []string{
		"FROM node:20-alpine",
		"WORKDIR /usr/src/app",
		"COPY package.json package-lock.json ./",
		"RUN npm ci",
		"RUN mkdir -p .npm-cache",
		"npm config set cache /usr/src/app/.npm-cache --location=project",
		"npm cache verify --cache /usr/src/app/.npm-cache",
		"RUN mkdir -p downloads uploads",
		"COPY . .",
		"RUN chown -R 1000:1000 /usr/src/app && chmod -R 755 /usr/src/app",
		"EXPOSE 8080",
		"USER 1000",
		`CMD ["npm", "start"]`,
	} {
		if !strings.Contains(df, want) {
			t.Errorf("Dockerfile missing %q\ncontent:\n%s", want, df)
		}
	}
}

// The step order is the build contract: each instruction must appear after
// the ones it depends on.
func TestDockerfile_StepOrder(t *testing.T) {
	t.Parallel()

	df := Dockerfile(recipe.DefaultRecipe("api"))

	steps := []string{
		"FROM ",
		"WORKDIR ",
		"COPY package.json package-lock.json ./",
		"RUN npm ci",
		"npm config set cache",
		"npm cache verify",
		"RUN mkdir -p downloads uploads",
		"COPY . .",
		"RUN chown -R",
		"EXPOSE ",
		"USER ",
		"CMD ",
	}

	last := -1
	for _, step := range steps {
		idx := strings.Index(df, step)
		if idx == -1 {
			t.Fatalf("step %q not found\ncontent:\n%s", step, df)
		}
		if idx < last {
			t.Errorf("step %q appears out of order\ncontent:\n%s", step, df)
		}
		last = idx
	}
}

func TestDockerfile_OwnershipAfterFullCopy(t *testing.T) {
	t.Parallel()

	df := Dockerfile(recipe.DefaultRecipe("api"))

	copyIdx := strings.Index(df, "COPY . .")
	chownIdx := strings.Index(df, "chown -R")
	userIdx := strings.Index(df, "USER ")
	cmdIdx := strings.Index(df, "CMD ")

	if chownIdx < copyIdx {
		t.Error("chown must run after the full tree copy, or copied files keep build-time ownership")
	}
	if userIdx < chownIdx {
		t.Error("privilege drop must come after ownership normalization")
	}
	if cmdIdx < userIdx {
		t.Error("start command must come after the privilege drop")
	}
}

func TestDockerfile_CustomRecipe(t *testing.T) {
	t.Parallel()

	r := &recipe.Recipe{
		Service:      "file-server",
		Image:        "node:22-bookworm",
		Workdir:      "/srv/app",
		CacheDir:     ".cache",
		ArtifactDirs: []recipe.RelativeDir{"incoming"},
		Owner:        recipe.ServiceAccount{UID: 1234, GID: 4321},
		Mode:         "750",
		Port:         3000,
		Start:        recipe.StartCommand{"node", "server.js"},
	}

	df := Dockerfile(r)

	for _, want := range []string{
		"FROM node:22-bookworm",
		"WORKDIR /srv/app",
		"RUN mkdir -p incoming",
		"chown -R 1234:4321 /srv/app",
		"chmod -R 750 /srv/app",
		"EXPOSE 3000",
		"USER 1234",
		`CMD ["node", "server.js"]`,
	} {
		if !strings.Contains(df, want) {
			t.Errorf("Dockerfile missing %q\ncontent:\n%s", want, df)
		}
	}
}

func TestExecForm(t *testing.T) {
	t.Parallel()

	got := execForm(recipe.StartCommand{"npm", "run", "start:prod"})
	want := `["npm", "run", "start:prod"]`
	if got != want {
		t.Errorf("execForm() = %q, want %q", got, want)
	}
}

// SPDX-License-Identifier: MPL-2.0

package assemble

import (
	"os"
	"path/filepath"
	"testing"

	"stevedore-cli/pkg/recipe"
)

func writeManifestPair(t *testing.T, dir, manifest, lock string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, recipe.ManifestFile), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, recipe.LockFile), []byte(lock), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestHashFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	// sha256("hello")
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	got, err := HashFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("HashFile() = %q, want %q", got, want)
	}

	if _, err := HashFile(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestContentKey_StableForUnchangedInputs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeManifestPair(t, dir, `{"name":"api"}`, `{"lockfileVersion":3}`)
	r := recipe.DefaultRecipe("api")

	key1, err := contentKey(r, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	key2, err := contentKey(r, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if key1 != key2 {
		t.Errorf("key changed without input changes: %q vs %q", key1, key2)
	}
	if len(key1) != 64 {
		t.Errorf("key should be a hex sha256, got %q", key1)
	}
}

func TestContentKey_ChangesWithInputs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeManifestPair(t, dir, `{"name":"api"}`, `{"lockfileVersion":3}`)
	r := recipe.DefaultRecipe("api")

	base, err := contentKey(r, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("lockfile change", func(t *testing.T) {
		other := t.TempDir()
		writeManifestPair(t, other, `{"name":"api"}`, `{"lockfileVersion":2}`)
		key, err := contentKey(r, other)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if key == base {
			t.Error("key should change when the lockfile changes")
		}
	})

	t.Run("recipe change", func(t *testing.T) {
		changed := recipe.DefaultRecipe("api")
		changed.Port = 9090
		key, err := contentKey(changed, dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if key == base {
			t.Error("key should change when the recipe changes")
		}
	})

	t.Run("missing manifest fails", func(t *testing.T) {
		if _, err := contentKey(r, t.TempDir()); err == nil {
			t.Error("expected error when the manifest pair is missing")
		}
	})
}

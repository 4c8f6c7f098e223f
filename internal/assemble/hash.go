// SPDX-License-Identifier: MPL-2.0

package assemble

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"stevedore-cli/pkg/recipe"
)

// HashFile returns the hex SHA-256 of a file's contents.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }() // read-only file; close error non-critical

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// contentKey derives a stable key from everything that shapes the image:
// the manifest pair's contents and the rendered build manifest (which
// captures every recipe field that matters). Unchanged inputs hash to the
// same key, so an already-built image can be reused.
func contentKey(r *recipe.Recipe, srcDir string) (string, error) {
	h := sha256.New()

	for _, name := range recipe.ManifestPair() {
		fileHash, err := HashFile(filepath.Join(srcDir, name))
		if err != nil {
			return "", fmt.Errorf("failed to hash %s: %w", name, err)
		}
		fmt.Fprintf(h, "manifest:%s:%s\n", name, fileHash)
	}

	fmt.Fprintf(h, "dockerfile:%s", Dockerfile(r))

	return hex.EncodeToString(h.Sum(nil)), nil
}

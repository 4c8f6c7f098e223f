// SPDX-License-Identifier: MPL-2.0

package recipe

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// Manifest pair consumed by the dependency install step. The pair is part of
// the build contract and is deliberately not configurable.
const (
	ManifestFile = "package.json"
	LockFile     = "package-lock.json"
)

// DefaultFileName is the recipe file stevedore looks for in a source tree.
const DefaultFileName = "stevedore.cue"

var (
	// ErrInvalidServiceName is the sentinel error wrapped by InvalidServiceNameError.
	ErrInvalidServiceName = errors.New("invalid service name")

	// ErrInvalidImageRef is the sentinel error wrapped by InvalidImageRefError.
	ErrInvalidImageRef = errors.New("invalid image reference")

	// ErrInvalidWorkdir is the sentinel error wrapped by InvalidWorkdirError.
	ErrInvalidWorkdir = errors.New("invalid working directory")

	// ErrInvalidRelativeDir is the sentinel error wrapped by InvalidRelativeDirError.
	ErrInvalidRelativeDir = errors.New("invalid relative directory")

	// ErrRootServiceAccount is the sentinel error wrapped by RootServiceAccountError.
	ErrRootServiceAccount = errors.New("service account must not be root")

	// ErrInvalidTreeMode is the sentinel error wrapped by InvalidTreeModeError.
	ErrInvalidTreeMode = errors.New("invalid permission mode")

	// ErrInvalidPort is the sentinel error wrapped by InvalidPortError.
	ErrInvalidPort = errors.New("invalid network port")

	// ErrEmptyStartCommand is the sentinel error wrapped by EmptyStartCommandError.
	ErrEmptyStartCommand = errors.New("empty start command")
)

type (
	// ServiceName identifies the packaged service. It becomes the repository
	// part of the image tag, so it must be a valid image name component.
	ServiceName string

	// InvalidServiceNameError is returned when a ServiceName is not a valid
	// image name component.
	InvalidServiceNameError struct {
		Value ServiceName
	}

	// ImageRef is a container base image reference (e.g. "node:20-alpine").
	ImageRef string

	// InvalidImageRefError is returned when an ImageRef is empty or contains
	// whitespace.
	InvalidImageRefError struct {
		Value ImageRef
	}

	// WorkdirPath is the absolute working directory inside the image. All
	// later build steps resolve relative paths against it.
	WorkdirPath string

	// InvalidWorkdirError is returned when a WorkdirPath is not absolute.
	InvalidWorkdirError struct {
		Value WorkdirPath
	}

	// RelativeDir is a directory name resolved under the workdir (the cache
	// directory and the artifact directories). It must stay inside the
	// workdir: no absolute paths, no parent traversal.
	RelativeDir string

	// InvalidRelativeDirError is returned when a RelativeDir is empty,
	// absolute, or escapes the workdir.
	InvalidRelativeDirError struct {
		Value RelativeDir
	}

	// UserID is a numeric uid inside the image.
	UserID uint32

	// GroupID is a numeric gid inside the image.
	GroupID uint32

	// ServiceAccount is the fixed non-root identity that owns the
	// application tree and runs the process. Uid 0 and gid 0 are rejected:
	// the privilege drop is the point of the account.
	ServiceAccount struct {
		UID UserID  `json:"uid"`
		GID GroupID `json:"gid"`
	}

	// RootServiceAccountError is returned when a ServiceAccount resolves to
	// root (uid or gid zero).
	RootServiceAccountError struct {
		Value ServiceAccount
	}

	// TreeMode is the octal permission mode applied recursively to the
	// application tree after the copy step (e.g. "755").
	TreeMode string

	// InvalidTreeModeError is returned when a TreeMode is not a 3- or
	// 4-digit octal string.
	InvalidTreeModeError struct {
		Value TreeMode
	}

	// NetworkPort is the port the service process listens on. The EXPOSE
	// declaration is informational metadata; binding is the application's
	// business.
	NetworkPort uint16

	// InvalidPortError is returned when a NetworkPort is zero.
	InvalidPortError struct {
		Value NetworkPort
	}

	// StartCommand is the argv handed to the container as its terminal
	// process. It is executed directly, never through a shell.
	StartCommand []string

	// EmptyStartCommandError is returned when a StartCommand has no
	// arguments or contains an empty argument.
	EmptyStartCommandError struct {
		Value StartCommand
	}

	// Recipe is the complete packaging recipe for one service image.
	Recipe struct {
		Service      ServiceName    `json:"service"`
		Image        ImageRef       `json:"image"`
		Workdir      WorkdirPath    `json:"workdir"`
		CacheDir     RelativeDir    `json:"cache_dir"`
		ArtifactDirs []RelativeDir  `json:"artifact_dirs"`
		Owner        ServiceAccount `json:"owner"`
		Mode         TreeMode       `json:"mode"`
		Port         NetworkPort    `json:"port"`
		Start        StartCommand   `json:"start"`

		// FilePath is where the recipe was loaded from. Set by Parse, not
		// part of the recipe itself.
		FilePath string `json:"-"`
	}
)

// --- ServiceName ---

// String returns the string representation of the ServiceName.
func (n ServiceName) String() string { return string(n) }

// Validate returns an error if the ServiceName is not usable as an image
// name component: lowercase alphanumerics and hyphens, starting with a
// letter.
func (n ServiceName) Validate() error {
	s := string(n)
	if s == "" {
		return &InvalidServiceNameError{Value: n}
	}
	if s[0] < 'a' || s[0] > 'z' {
		return &InvalidServiceNameError{Value: n}
	}
	for _, c := range s {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '-' {
			return &InvalidServiceNameError{Value: n}
		}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidServiceNameError) Error() string {
	return fmt.Sprintf("invalid service name %q: must match [a-z][a-z0-9-]*", e.Value)
}

// Unwrap returns ErrInvalidServiceName for errors.Is compatibility.
func (e *InvalidServiceNameError) Unwrap() error { return ErrInvalidServiceName }

// --- ImageRef ---

// String returns the string representation of the ImageRef.
func (r ImageRef) String() string { return string(r) }

// Validate returns an error if the ImageRef is empty or contains whitespace.
func (r ImageRef) Validate() error {
	s := string(r)
	if strings.TrimSpace(s) == "" || strings.ContainsAny(s, " \t\n") {
		return &InvalidImageRefError{Value: r}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidImageRefError) Error() string {
	return fmt.Sprintf("invalid image reference %q: must be non-empty without whitespace", e.Value)
}

// Unwrap returns ErrInvalidImageRef for errors.Is compatibility.
func (e *InvalidImageRefError) Unwrap() error { return ErrInvalidImageRef }

// --- WorkdirPath ---

// String returns the string representation of the WorkdirPath.
func (w WorkdirPath) String() string { return string(w) }

// Validate returns an error if the WorkdirPath is not an absolute path.
// Container paths always use forward slashes regardless of the host OS.
func (w WorkdirPath) Validate() error {
	s := string(w)
	if !strings.HasPrefix(s, "/") || path.Clean(s) != s || s == "/" {
		return &InvalidWorkdirError{Value: w}
	}
	return nil
}

// Join resolves a relative directory under the workdir.
func (w WorkdirPath) Join(dir RelativeDir) string {
	return path.Join(string(w), string(dir))
}

// Error implements the error interface.
func (e *InvalidWorkdirError) Error() string {
	return fmt.Sprintf("invalid working directory %q: must be a clean absolute path below /", e.Value)
}

// Unwrap returns ErrInvalidWorkdir for errors.Is compatibility.
func (e *InvalidWorkdirError) Unwrap() error { return ErrInvalidWorkdir }

// --- RelativeDir ---

// String returns the string representation of the RelativeDir.
func (d RelativeDir) String() string { return string(d) }

// Validate returns an error if the RelativeDir is empty, absolute, or
// escapes the workdir via parent traversal.
func (d RelativeDir) Validate() error {
	s := string(d)
	if strings.TrimSpace(s) == "" || strings.HasPrefix(s, "/") {
		return &InvalidRelativeDirError{Value: d}
	}
	clean := path.Clean(s)
	if clean != s || clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return &InvalidRelativeDirError{Value: d}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidRelativeDirError) Error() string {
	return fmt.Sprintf("invalid relative directory %q: must stay inside the working directory", e.Value)
}

// Unwrap returns ErrInvalidRelativeDir for errors.Is compatibility.
func (e *InvalidRelativeDirError) Unwrap() error { return ErrInvalidRelativeDir }

// --- ServiceAccount ---

// String returns the account in "uid:gid" form, as used by chown.
func (a ServiceAccount) String() string {
	return fmt.Sprintf("%d:%d", a.UID, a.GID)
}

// Validate returns an error if the account resolves to root. The runtime
// identity must be non-root before the process launch; anything else defeats
// the privilege drop.
func (a ServiceAccount) Validate() error {
	if a.UID == 0 || a.GID == 0 {
		return &RootServiceAccountError{Value: a}
	}
	return nil
}

// Error implements the error interface.
func (e *RootServiceAccountError) Error() string {
	return fmt.Sprintf("service account %s resolves to root: uid and gid must be non-zero", e.Value)
}

// Unwrap returns ErrRootServiceAccount for errors.Is compatibility.
func (e *RootServiceAccountError) Unwrap() error { return ErrRootServiceAccount }

// --- TreeMode ---

// String returns the string representation of the TreeMode.
func (m TreeMode) String() string { return string(m) }

// Validate returns an error if the TreeMode is not a 3- or 4-digit octal
// string.
func (m TreeMode) Validate() error {
	s := string(m)
	if len(s) < 3 || len(s) > 4 {
		return &InvalidTreeModeError{Value: m}
	}
	for _, c := range s {
		if c < '0' || c > '7' {
			return &InvalidTreeModeError{Value: m}
		}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidTreeModeError) Error() string {
	return fmt.Sprintf("invalid permission mode %q: must be 3 or 4 octal digits", e.Value)
}

// Unwrap returns ErrInvalidTreeMode for errors.Is compatibility.
func (e *InvalidTreeModeError) Unwrap() error { return ErrInvalidTreeMode }

// --- NetworkPort ---

// String returns the string representation of the NetworkPort.
func (p NetworkPort) String() string { return fmt.Sprintf("%d", p) }

// Validate returns an error if the NetworkPort is zero.
func (p NetworkPort) Validate() error {
	if p == 0 {
		return &InvalidPortError{Value: p}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidPortError) Error() string {
	return fmt.Sprintf("invalid network port %d: must be greater than zero", e.Value)
}

// Unwrap returns ErrInvalidPort for errors.Is compatibility.
func (e *InvalidPortError) Unwrap() error { return ErrInvalidPort }

// --- StartCommand ---

// Validate returns an error if the StartCommand is empty or any argument is
// blank.
func (c StartCommand) Validate() error {
	if len(c) == 0 {
		return &EmptyStartCommandError{Value: c}
	}
	for _, arg := range c {
		if strings.TrimSpace(arg) == "" {
			return &EmptyStartCommandError{Value: c}
		}
	}
	return nil
}

// Error implements the error interface.
func (e *EmptyStartCommandError) Error() string {
	return fmt.Sprintf("empty start command %v: needs at least one non-blank argument", []string(e.Value))
}

// Unwrap returns ErrEmptyStartCommand for errors.Is compatibility.
func (e *EmptyStartCommandError) Unwrap() error { return ErrEmptyStartCommand }

// --- Recipe ---

// Validate checks every typed field and collects all failures, so a broken
// recipe reports everything wrong in one pass.
func (r *Recipe) Validate() error {
	var errs []error

	if err := r.Service.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := r.Image.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := r.Workdir.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := r.CacheDir.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(r.ArtifactDirs) == 0 {
		errs = append(errs, &InvalidRelativeDirError{Value: ""})
	}
	seen := make(map[RelativeDir]bool, len(r.ArtifactDirs))
	for _, d := range r.ArtifactDirs {
		if err := d.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[d] {
			errs = append(errs, fmt.Errorf("duplicate artifact directory %q", d))
		}
		seen[d] = true
	}
	if err := r.Owner.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := r.Mode.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := r.Port.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := r.Start.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// CachePath returns the absolute cache directory inside the image.
func (r *Recipe) CachePath() string {
	return r.Workdir.Join(r.CacheDir)
}

// ManifestPair returns the dependency manifest file names consumed by the
// install step, in copy order.
func ManifestPair() []string {
	return []string{ManifestFile, LockFile}
}

// SPDX-License-Identifier: MPL-2.0

package container

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// SELinuxLabelNone means no SELinux label is applied to the mount.
	SELinuxLabelNone SELinuxLabel = ""
	// SELinuxLabelShared allows sharing the volume between containers.
	SELinuxLabelShared SELinuxLabel = "z"
	// SELinuxLabelPrivate restricts the volume to a single container.
	SELinuxLabelPrivate SELinuxLabel = "Z"
)

var (
	// ErrInvalidSELinuxLabel is the sentinel error wrapped by InvalidSELinuxLabelError.
	ErrInvalidSELinuxLabel = errors.New("invalid SELinux label")

	// ErrInvalidHostPath is the sentinel error wrapped by InvalidHostPathError.
	ErrInvalidHostPath = errors.New("invalid host filesystem path")

	// ErrInvalidTargetPath is the sentinel error wrapped by InvalidTargetPathError.
	ErrInvalidTargetPath = errors.New("invalid container filesystem path")

	// ErrInvalidVolumeMount is the sentinel error wrapped by InvalidVolumeMountError.
	ErrInvalidVolumeMount = errors.New("invalid volume mount")
)

type (
	// SELinuxLabel is an SELinux volume labeling option. The zero value ("")
	// means no label is applied.
	SELinuxLabel string

	// InvalidSELinuxLabelError is returned when an SELinuxLabel is not recognized.
	InvalidSELinuxLabelError struct {
		Value SELinuxLabel
	}

	// HostPath is a host filesystem path for a bind mount.
	HostPath string

	// InvalidHostPathError is returned when a HostPath is empty or whitespace-only.
	InvalidHostPathError struct {
		Value HostPath
	}

	// TargetPath is a filesystem path inside the container for a bind mount.
	TargetPath string

	// InvalidTargetPathError is returned when a TargetPath is empty or whitespace-only.
	InvalidTargetPathError struct {
		Value TargetPath
	}

	// VolumeMount is a bind mount specification.
	VolumeMount struct {
		HostPath      HostPath
		ContainerPath TargetPath
		ReadOnly      bool
		SELinux       SELinuxLabel
	}

	// InvalidVolumeMountError is returned when a VolumeMount has one or more
	// invalid fields. It wraps the field errors for inspection.
	InvalidVolumeMountError struct {
		Value     VolumeMount
		FieldErrs []error
	}
)

// Validate returns an error if the SELinuxLabel is not one of the defined labels.
func (s SELinuxLabel) Validate() error {
	switch s {
	case SELinuxLabelNone, SELinuxLabelShared, SELinuxLabelPrivate:
		return nil
	default:
		return &InvalidSELinuxLabelError{Value: s}
	}
}

// String returns the string representation of the SELinuxLabel.
func (s SELinuxLabel) String() string { return string(s) }

// Error implements the error interface.
func (e *InvalidSELinuxLabelError) Error() string {
	return fmt.Sprintf("invalid SELinux label %q (valid: empty, z, Z)", e.Value)
}

// Unwrap returns ErrInvalidSELinuxLabel for errors.Is compatibility.
func (e *InvalidSELinuxLabelError) Unwrap() error { return ErrInvalidSELinuxLabel }

// String returns the string representation of the HostPath.
func (p HostPath) String() string { return string(p) }

// Validate returns an error if the HostPath is empty or whitespace-only.
func (p HostPath) Validate() error {
	if strings.TrimSpace(string(p)) == "" {
		return &InvalidHostPathError{Value: p}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidHostPathError) Error() string {
	return fmt.Sprintf("invalid host filesystem path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidHostPath for errors.Is compatibility.
func (e *InvalidHostPathError) Unwrap() error { return ErrInvalidHostPath }

// String returns the string representation of the TargetPath.
func (p TargetPath) String() string { return string(p) }

// Validate returns an error if the TargetPath is empty or whitespace-only.
func (p TargetPath) Validate() error {
	if strings.TrimSpace(string(p)) == "" {
		return &InvalidTargetPathError{Value: p}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidTargetPathError) Error() string {
	return fmt.Sprintf("invalid container filesystem path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidTargetPath for errors.Is compatibility.
func (e *InvalidTargetPathError) Unwrap() error { return ErrInvalidTargetPath }

// Validate returns an error if any typed field of the VolumeMount is invalid.
func (v VolumeMount) Validate() error {
	var errs []error
	if err := v.HostPath.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := v.ContainerPath.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := v.SELinux.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidVolumeMountError{Value: v, FieldErrs: errs}
	}
	return nil
}

// String returns the mount in "host:container[:options]" format.
func (v VolumeMount) String() string {
	return FormatVolumeMount(v)
}

// Error implements the error interface.
func (e *InvalidVolumeMountError) Error() string {
	return fmt.Sprintf("invalid volume mount %s:%s: %d field error(s)",
		e.Value.HostPath, e.Value.ContainerPath, len(e.FieldErrs))
}

// Unwrap returns ErrInvalidVolumeMount for errors.Is compatibility.
func (e *InvalidVolumeMountError) Unwrap() error { return ErrInvalidVolumeMount }

// FormatVolumeMount formats a bind mount for the -v flag.
func FormatVolumeMount(mount VolumeMount) string {
	var result strings.Builder
	result.WriteString(string(mount.HostPath))
	result.WriteString(":")
	result.WriteString(string(mount.ContainerPath))

	var options []string
	if mount.ReadOnly {
		options = append(options, "ro")
	}
	if mount.SELinux != "" {
		options = append(options, string(mount.SELinux))
	}

	if len(options) > 0 {
		result.WriteString(":")
		result.WriteString(strings.Join(options, ","))
	}

	return result.String()
}

// ParseVolumeMount parses "host_path:container_path[:options]" into a
// VolumeMount and validates the result. Recognized options: ro, z, Z.
func ParseVolumeMount(volume string) (VolumeMount, error) {
	mount := VolumeMount{}

	parts := strings.Split(volume, ":")

	if len(parts) >= 1 {
		mount.HostPath = HostPath(parts[0])
	}
	if len(parts) >= 2 {
		mount.ContainerPath = TargetPath(parts[1])
	}
	if len(parts) >= 3 {
		for opt := range strings.SplitSeq(parts[2], ",") {
			switch opt {
			case "ro":
				mount.ReadOnly = true
			case "z", "Z":
				mount.SELinux = SELinuxLabel(opt)
			}
		}
	}

	if err := mount.Validate(); err != nil {
		return mount, err
	}
	return mount, nil
}

// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing utilities.
//
// It implements the schema-first parsing flow used by the recipe package:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify with the schema
//  3. Validate and decode to a Go struct
//
// # Usage
//
//	//go:embed recipe_schema.cue
//	var schemaBytes []byte
//
//	result, err := cueutil.ParseAndDecode[Recipe](
//	    schemaBytes,
//	    userFileBytes,
//	    "#Recipe",
//	    cueutil.WithFilename("stevedore.cue"),
//	)
//	if err != nil {
//	    return nil, err // error carries the CUE path of the offending field
//	}
//	return result.Value, nil
package cueutil

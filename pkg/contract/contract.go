// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package contract holds the canonical resource list shared by the runtime
// bootstrap chain and the static include checker. Both sides read the same
// ordered values from here; a divergence between them is a contract bug.
package contract

import (
	"fmt"
	"strings"

	"github.com/jllopis/surveyshell/pkg/errors"
)

// Resource is one logical resource of the header chrome feature.
type Resource struct {
	// Path is the root-relative path a document references.
	Path string
	// Role describes what the resource provides.
	Role string
}

const (
	// BasePath is the base component capability every later step builds on.
	BasePath = "assets/js/lit-base.js"
	// HeaderPath defines the header element and needs BasePath loaded.
	HeaderPath = "assets/js/components/app-header.js"
	// ThemePath is the theming utility.
	ThemePath = "assets/js/theme-utils.js"
	// SettingsPath is the global settings manager utility.
	SettingsPath = "assets/js/settings-manager.js"
	// StylesheetPath is the header stylesheet. Presence only.
	StylesheetPath = "assets/css/app-header.css"

	// HeaderElement is the element registration confirmed after loading.
	HeaderElement = "app-header"
	// Marker opts a document into include checking.
	Marker = "<" + HeaderElement
)

var required = []Resource{
	{Path: BasePath, Role: "base component capability"},
	{Path: HeaderPath, Role: "header element definition"},
	{Path: ThemePath, Role: "theming utility"},
	{Path: SettingsPath, Role: "settings manager"},
}

var optional = []Resource{
	{Path: StylesheetPath, Role: "header stylesheet"},
}

// Required returns the canonical ordered resources.
func Required() []Resource {
	out := make([]Resource, len(required))
	copy(out, required)
	return out
}

// Optional returns the presence-only resources.
func Optional() []Resource {
	out := make([]Resource, len(optional))
	copy(out, optional)
	return out
}

// RequiredPaths returns the canonical paths in load order.
func RequiredPaths() []string {
	return paths(required)
}

// OptionalPaths returns the presence-only paths.
func OptionalPaths() []string {
	return paths(optional)
}

func paths(in []Resource) []string {
	out := make([]string, len(in))
	for i, r := range in {
		out[i] = r.Path
	}
	return out
}

// Verify checks that names lists exactly the canonical paths in canonical order.
func Verify(names []string) error {
	want := RequiredPaths()
	if len(names) != len(want) {
		return errors.New(errors.CodeContractMismatch,
			fmt.Sprintf("chain has %d steps, canonical list has %d", len(names), len(want)), nil).
			WithContext("steps", strings.Join(names, ","))
	}
	for i := range want {
		if names[i] != want[i] {
			return errors.New(errors.CodeContractMismatch,
				fmt.Sprintf("step %d is %q, canonical order expects %q", i, names[i], want[i]), nil).
				WithContext("index", i)
		}
	}
	return nil
}

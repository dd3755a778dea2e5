// Package shell wires the concrete settings bootstrap chain and owns the
// process-wide orchestrator.
package shell

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/jllopis/surveyshell/pkg/bootstrap"
	"github.com/jllopis/surveyshell/pkg/contract"
	"github.com/jllopis/surveyshell/pkg/elements"
	"github.com/jllopis/surveyshell/pkg/settings"
	"github.com/jllopis/surveyshell/pkg/theme"
)

// HeaderAttributes are the attributes the header element observes.
var HeaderAttributes = []string{"survey-name", "breadcrumbs", "theme"}

// Deps are the collaborators the chain loads into.
type Deps struct {
	Elements *elements.Registry
	Themes   *theme.Registry
	Store    settings.Store
	// Element is the header registration name. Empty means
	// contract.HeaderElement.
	Element string
}

// Chain returns the four canonical steps: the base capability, the header
// definition (which needs the base), the theme palettes and finally the
// settings manager. The header step defines deps.Element, the same name
// the orchestrator waits for.
func Chain(deps Deps) []bootstrap.Step {
	var base atomic.Bool
	element := deps.Element
	if element == "" {
		element = contract.HeaderElement
	}
	return []bootstrap.Step{
		{
			Name: contract.BasePath,
			Load: func(context.Context) error {
				if deps.Elements == nil {
					return fmt.Errorf("element registry unavailable")
				}
				base.Store(true)
				return nil
			},
		},
		{
			Name: contract.HeaderPath,
			Load: func(context.Context) error {
				if !base.Load() {
					return fmt.Errorf("%s needs %s", contract.HeaderPath, contract.BasePath)
				}
				if deps.Elements.IsDefined(element) {
					return nil
				}
				return deps.Elements.Define(element, elements.Definition{
					Module:             contract.HeaderPath,
					ObservedAttributes: append([]string(nil), HeaderAttributes...),
				})
			},
		},
		{
			Name: contract.ThemePath,
			Load: func(context.Context) error {
				if deps.Themes == nil {
					return fmt.Errorf("theme registry unavailable")
				}
				deps.Themes.LoadDefaults()
				return nil
			},
		},
		{
			Name: contract.SettingsPath,
			Produce: func(context.Context) (*settings.Manager, error) {
				if deps.Store == nil {
					return nil, fmt.Errorf("settings store unavailable")
				}
				return settings.NewManager(deps.Store, deps.Themes), nil
			},
		},
	}
}

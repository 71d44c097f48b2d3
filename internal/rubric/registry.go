package rubric

import (
	"encoding/json"
	"fmt"
	"os"
)

// Registry holds the validated rubric definitions for all modules.
// Definitions are loaded once at startup; a malformed definition fails the
// load rather than being silently defaulted.
type Registry struct {
	defs map[string]*Definition
}

// NewRegistry builds a registry from the given definitions, validating each.
func NewRegistry(defs ...*Definition) (*Registry, error) {
	registry := &Registry{defs: make(map[string]*Definition, len(defs))}

	for _, def := range defs {
		if def == nil {
			return nil, fmt.Errorf("%w: definition is nil", ErrRubricConfig)
		}

		if err := def.Validate(); err != nil {
			return nil, err
		}

		if _, exists := registry.defs[def.ModuleID]; exists {
			return nil, fmt.Errorf("%w: duplicate rubric for module %q",
				ErrRubricConfig, def.ModuleID)
		}

		registry.defs[def.ModuleID] = def
	}

	return registry, nil
}

// LoadRegistry reads rubric definitions from a JSON file containing an array
// of definitions.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read rubric file %s: %v", ErrRubricConfig, path, err)
	}

	var defs []*Definition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("%w: failed to parse rubric file %s: %v", ErrRubricConfig, path, err)
	}

	return NewRegistry(defs...)
}

// ForModule returns the rubric definition for the module.
// Returns ErrRubricNotFound if no definition exists.
func (r *Registry) ForModule(moduleID string) (*Definition, error) {
	def, ok := r.defs[moduleID]
	if !ok {
		return nil, fmt.Errorf("%w: module %q", ErrRubricNotFound, moduleID)
	}

	return def, nil
}

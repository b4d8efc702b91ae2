// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"os"
	"strings"
)

func LoadRegistry(path string) (*ActionRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActionRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// Lookup finds an action by ID. Dynamic actions carry a trailing
// underscore in their registered ID and match by prefix, so
// "show_guide_" covers "show_guide_paris".
func (r *ActionRegistry) Lookup(id string) (Action, bool) {
	for _, a := range r.Actions {
		if a.Dynamic {
			if strings.HasPrefix(id, a.ID) {
				return a, true
			}
			continue
		}
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

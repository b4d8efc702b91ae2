// pkg/registry/schema.go
package registry

// ActionRegistry catalogs every hint action the engine may emit, so
// downstream consumers can validate actions against a published list.
type ActionRegistry struct {
	Version     string   `json:"version"`
	LastUpdated string   `json:"lastUpdated"`
	Actions     []Action `json:"actions"`
}

type Action struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Description string   `json:"description"`
	HintType    string   `json:"hintType"`
	States      []string `json:"states"`
	Dynamic     bool     `json:"dynamic"`
	Tags        []string `json:"tags"`
}

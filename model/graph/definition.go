package graph

import (
	"fmt"
	"strings"
)

// Definition represents a deployed process definition: a directed graph of
// user-task activities starting at Initial.
type Definition struct {
	ID          string      `json:"id,omitempty" yaml:"id,omitempty"`
	Key         string      `json:"key" yaml:"key"`
	Name        string      `json:"name,omitempty" yaml:"name,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Version     int         `json:"version,omitempty" yaml:"version,omitempty"`
	Initial     string      `json:"initial,omitempty" yaml:"initial,omitempty"`
	Activities  []*Activity `json:"activities,omitempty" yaml:"activities,omitempty"`
}

// NewDefinition creates a definition with the given key and display name
func NewDefinition(key, name string) *Definition {
	return &Definition{Key: key, Name: name, Version: 1}
}

// NewActivity creates an activity and adds it to the definition. The first
// added activity becomes the initial one unless Initial was set explicitly.
func (d *Definition) NewActivity(key, name string) *Activity {
	ret := &Activity{Key: key, Name: name}
	d.Activities = append(d.Activities, ret)
	if d.Initial == "" {
		d.Initial = key
	}
	return ret
}

// Activity returns activity by key or nil
func (d *Definition) Activity(key string) *Activity {
	for _, candidate := range d.Activities {
		if candidate.Key == key {
			return candidate
		}
	}
	return nil
}

// InitialActivity returns the entry activity
func (d *Definition) InitialActivity() *Activity {
	if d.Initial == "" && len(d.Activities) > 0 {
		return d.Activities[0]
	}
	return d.Activity(d.Initial)
}

// Incoming returns keys of activities flowing into key
func (d *Definition) Incoming(key string) []string {
	var result []string
	for _, candidate := range d.Activities {
		for _, next := range candidate.Next {
			if next == key {
				result = append(result, candidate.Key)
				break
			}
		}
	}
	return result
}

// EnsureID derives the deployment id from key and version when not set
func (d *Definition) EnsureID() {
	if d.Version == 0 {
		d.Version = 1
	}
	if d.ID == "" {
		d.ID = fmt.Sprintf("%s:%d", d.Key, d.Version)
	}
}

// Validate performs a structural validation of the definition. The returned
// slice is empty when the definition is sound.
func (d *Definition) Validate() []error {
	var issues []error
	if strings.TrimSpace(d.Key) == "" {
		issues = append(issues, fmt.Errorf("definition key was empty"))
	}
	if len(d.Activities) == 0 {
		issues = append(issues, fmt.Errorf("definition %s has no activities", d.Key))
		return issues
	}

	seen := map[string]bool{}
	for _, activity := range d.Activities {
		if activity.Key == "" {
			issues = append(issues, fmt.Errorf("definition %s has activity without key", d.Key))
			continue
		}
		if seen[activity.Key] {
			issues = append(issues, fmt.Errorf("duplicate activity key %s", activity.Key))
		}
		seen[activity.Key] = true
	}

	initial := d.InitialActivity()
	if initial == nil {
		issues = append(issues, fmt.Errorf("initial activity %s is not defined", d.Initial))
		return issues
	}

	for _, activity := range d.Activities {
		for _, next := range activity.Next {
			if next == activity.Key {
				issues = append(issues, fmt.Errorf("activity %s flows into itself", activity.Key))
			}
			if !seen[next] {
				issues = append(issues, fmt.Errorf("activity %s flows into unknown activity %s", activity.Key, next))
			}
		}
		if mi := activity.MultiInstance; mi != nil {
			if mi.Collection == "" {
				issues = append(issues, fmt.Errorf("activity %s multi-instance collection was empty", activity.Key))
			}
			if mi.ElementVariable == "" {
				issues = append(issues, fmt.Errorf("activity %s multi-instance element variable was empty", activity.Key))
			}
		}
	}

	// unreachable activities = those never visited from the initial one
	visited := map[string]bool{}
	var walk func(key string)
	walk = func(key string) {
		if visited[key] {
			return
		}
		visited[key] = true
		activity := d.Activity(key)
		if activity == nil {
			return
		}
		for _, next := range activity.Next {
			walk(next)
		}
	}
	walk(initial.Key)
	for _, activity := range d.Activities {
		if activity.Key != "" && !visited[activity.Key] {
			issues = append(issues, fmt.Errorf("activity %s is unreachable from %s", activity.Key, initial.Key))
		}
	}
	return issues
}

package definition

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"github.com/viant/taskflow/internal/yml"
	"github.com/viant/taskflow/model/graph"
	"github.com/viant/taskflow/model/types"
	"github.com/viant/taskflow/service/meta"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Service loads process definitions
type Service struct {
	fs      afs.Service
	baseURL string
	options []storage.Option
}

// Load loads a definition from URL; ".yaml" is assumed when URL has no
// extension and relative URLs resolve against the base URL.
func (s *Service) Load(ctx context.Context, URL string) (*graph.Definition, error) {
	URL = s.resolve(URL)
	data, err := s.fs.DownloadWithURL(ctx, URL, s.options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load definition from %s: %w", URL, err)
	}
	return s.Decode(URL, data)
}

// LoadAll loads every YAML definition found under location
func (s *Service) LoadAll(ctx context.Context, location string) ([]*graph.Definition, error) {
	if location == "" {
		location = s.baseURL
	}
	objects, err := s.fs.List(ctx, location, s.options...)
	if err != nil {
		return nil, fmt.Errorf("failed to list definitions in %s: %w", location, err)
	}
	var result []*graph.Definition
	for _, object := range objects {
		if object.IsDir() || !isYAML(object.Name()) {
			continue
		}
		definition, err := s.Load(ctx, object.URL())
		if err != nil {
			return nil, err
		}
		result = append(result, definition)
	}
	return result, nil
}

// Decode parses a YAML definition; source names the definition when the
// document has no key. ${env.NAME} references are expanded before parsing.
func (s *Service) Decode(source string, data []byte) (*graph.Definition, error) {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(meta.ExpandEnv(string(data))), &node); err != nil {
		return nil, types.NewConfigurationError("invalid definition %s: %v", source, err)
	}
	ret := &graph.Definition{}
	if err := parseDefinition((*yml.Node)(&node).Root(), ret); err != nil {
		return nil, types.NewConfigurationError("invalid definition %s: %v", source, err)
	}
	if ret.Key == "" {
		base := path.Base(source)
		ret.Key = strings.TrimSuffix(base, path.Ext(base))
	}
	if ret.Name == "" {
		ret.Name = ret.Key
	}
	ret.EnsureID()
	if issues := ret.Validate(); len(issues) > 0 {
		return nil, types.NewConfigurationError("invalid definition %s: %v", ret.Key, multierr.Combine(issues...))
	}
	return ret, nil
}

func (s *Service) resolve(URL string) string {
	if path.Ext(URL) == "" {
		URL += ".yaml"
	}
	if s.baseURL != "" && url.IsRelative(URL) {
		URL = url.Join(s.baseURL, URL)
	}
	return URL
}

func parseDefinition(node *yml.Node, definition *graph.Definition) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected mapping", node.Line)
	}
	return node.Pairs(func(key string, value *yml.Node) error {
		switch strings.ToLower(key) {
		case "id":
			definition.ID = value.Value
		case "key":
			definition.Key = value.Value
		case "name":
			definition.Name = value.Value
		case "description":
			definition.Description = value.Value
		case "version":
			return value.Decode(&definition.Version)
		case "initial":
			definition.Initial = value.Value
		case "activities":
			return parseActivities(value, definition)
		default:
			return fmt.Errorf("line %d: unsupported definition attribute %s", value.Line, key)
		}
		return nil
	})
}

// parseActivities accepts a sequence of activities or a mapping keyed by
// activity key; the first activity is initial unless set explicitly
func parseActivities(node *yml.Node, definition *graph.Definition) error {
	add := func(key string, body *yml.Node) error {
		activity, err := parseActivity(key, body)
		if err != nil {
			return err
		}
		definition.Activities = append(definition.Activities, activity)
		if definition.Initial == "" {
			definition.Initial = activity.Key
		}
		return nil
	}
	switch node.Kind {
	case yaml.MappingNode:
		return node.Pairs(add)
	case yaml.SequenceNode:
		return node.Items(func(_ int, item *yml.Node) error {
			return add("", item)
		})
	}
	return fmt.Errorf("line %d: activities should be a sequence or a mapping", node.Line)
}

func parseActivity(key string, node *yml.Node) (*graph.Activity, error) {
	ret := &graph.Activity{Key: key}
	if node.Kind == yaml.ScalarNode {
		ret.Name = ret.Key
		return ret, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: activity %s should be a mapping", node.Line, key)
	}
	err := node.Pairs(func(attribute string, value *yml.Node) (err error) {
		switch strings.ToLower(attribute) {
		case "key":
			ret.Key = value.Value
		case "name":
			ret.Name = value.Value
		case "assignee":
			ret.Assignee = value.Value
		case "candidateusers":
			ret.CandidateUsers, err = value.Strings()
		case "candidategroups":
			ret.CandidateGroups, err = value.Strings()
		case "skipexpression", "skip":
			ret.SkipExpression = value.Value
		case "join":
			err = value.Decode(&ret.Join)
		case "next":
			ret.Next, err = value.Strings()
		case "multiinstance":
			ret.MultiInstance = &graph.MultiInstance{}
			err = value.Decode(ret.MultiInstance)
		default:
			err = fmt.Errorf("line %d: unsupported activity attribute %s", value.Line, attribute)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if ret.Name == "" {
		ret.Name = ret.Key
	}
	return ret, nil
}

func isYAML(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// New creates a definition loader
func New(options ...Option) *Service {
	ret := &Service{}
	for _, option := range options {
		option(ret)
	}
	if ret.fs == nil {
		ret.fs = afs.New()
	}
	return ret
}

package evergreen

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/animus-labs/evergreen-matrix/internal/domain"
)

const Header = "# Generated by matrixgen. DO NOT EDIT.\n"

// Document is the serialized task list.
type Document struct {
	Tasks []Record `yaml:"tasks"`
}

// Record is the serialized form of one task.
type Record struct {
	Name      string
	Tags      []string
	Options   domain.Options
	DependsOn []string
	Commands  []domain.Command
}

// NewRecord assigns a task its serialized record.
func NewRecord(task domain.Task) (Record, error) {
	cmds, err := Commands(task)
	if err != nil {
		return Record{}, err
	}
	return Record{
		Name:      task.Name,
		Tags:      task.Tags.Sorted(),
		Options:   task.Options.Clone(),
		DependsOn: append([]string(nil), task.DependsOn...),
		Commands:  cmds,
	}, nil
}

// NewDocument keeps compile tasks in catalog order and sorts the generated
// tasks by name so the output does not depend on enumeration order.
func NewDocument(tasks []domain.Task) (Document, error) {
	var compile, generated []domain.Task
	for _, task := range tasks {
		if task.Kind == domain.KindCompile {
			compile = append(compile, task)
		} else {
			generated = append(generated, task)
		}
	}
	sort.SliceStable(generated, func(i, j int) bool { return generated[i].Name < generated[j].Name })

	doc := Document{Tasks: make([]Record, 0, len(tasks))}
	for _, task := range append(compile, generated...) {
		record, err := NewRecord(task)
		if err != nil {
			return Document{}, err
		}
		doc.Tasks = append(doc.Tasks, record)
	}
	return doc, nil
}

// Render serializes the document with the generated-file header.
func Render(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(Header)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return buf.Bytes(), nil
}

// Digest is the hex SHA-256 of rendered document bytes.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// MarshalYAML writes keys in a fixed order: name, tags, options, depends_on,
// commands.
func (r Record) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	appendPair(node, "name", str(r.Name))

	tags := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, tag := range r.Tags {
		tags.Content = append(tags.Content, str(tag))
	}
	appendPair(node, "tags", tags)

	keys := make([]string, 0, len(r.Options))
	for k := range r.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		value := &yaml.Node{}
		if err := value.Encode(r.Options[k]); err != nil {
			return nil, fmt.Errorf("task %q option %s: %w", r.Name, k, err)
		}
		appendPair(node, k, value)
	}

	if len(r.DependsOn) > 0 {
		deps := &yaml.Node{Kind: yaml.SequenceNode}
		for _, dep := range r.DependsOn {
			entry := &yaml.Node{Kind: yaml.MappingNode}
			appendPair(entry, "name", str(dep))
			deps.Content = append(deps.Content, entry)
		}
		appendPair(node, "depends_on", deps)
	}

	cmds := &yaml.Node{Kind: yaml.SequenceNode}
	for _, cmd := range r.Commands {
		cmds.Content = append(cmds.Content, commandNode(cmd))
	}
	appendPair(node, "commands", cmds)
	return node, nil
}

func commandNode(cmd domain.Command) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}
	if cmd.Func != "" {
		appendPair(node, "func", str(cmd.Func))
	}
	if cmd.Command != "" {
		appendPair(node, "command", str(cmd.Command))
	}
	if cmd.Type != "" {
		appendPair(node, "type", str(cmd.Type))
	}
	if len(cmd.Vars) > 0 {
		vars := &yaml.Node{Kind: yaml.MappingNode}
		for _, v := range cmd.Vars {
			appendPair(vars, v.Name, str(v.Value))
		}
		appendPair(node, "vars", vars)
	}
	if cmd.Params != nil {
		params := &yaml.Node{Kind: yaml.MappingNode}
		if cmd.Params.WorkingDir != "" {
			appendPair(params, "working_dir", str(cmd.Params.WorkingDir))
		}
		if cmd.Params.ContinueOnErr {
			appendPair(params, "continue_on_err", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"})
		}
		appendPair(params, "script", str(cmd.Params.Script))
		appendPair(node, "params", params)
	}
	return node
}

func appendPair(mapping *yaml.Node, key string, value *yaml.Node) {
	mapping.Content = append(mapping.Content, str(key), value)
}

// str builds a string scalar; the encoder quotes values that would otherwise
// resolve to another type (e.g. "3.6") and uses literal style for multiline.
func str(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AddSensor appends a sensor to the config file's sensors list.
// It preserves the existing YAML structure and comments.
// If a sensor with the same name already exists its id is updated in place.
func AddSensor(configPath string, sensor Sensor) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse as yaml.Node to preserve structure
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return fmt.Errorf("invalid YAML document structure")
	}

	docNode := root.Content[0]
	if docNode.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping at document root")
	}

	sensorsNode := findMapValue(docNode, "sensors")
	if sensorsNode == nil {
		sensorsNode = &yaml.Node{
			Kind:    yaml.SequenceNode,
			Tag:     "!!seq",
			Content: []*yaml.Node{},
		}
		docNode.Content = append(docNode.Content, scalarNode("sensors"), sensorsNode)
	}
	if sensorsNode.Kind != yaml.SequenceNode {
		return fmt.Errorf("'sensors' must be a list")
	}

	for _, item := range sensorsNode.Content {
		nameNode := findMapValue(item, "name")
		if nameNode == nil || nameNode.Value != sensor.Name {
			continue
		}
		if idNode := findMapValue(item, "id"); idNode != nil {
			idNode.Value = sensor.ID
		} else {
			item.Content = append(item.Content, scalarNode("id"), scalarNode(sensor.ID))
		}
		return writeNode(configPath, &root)
	}

	sensorsNode.Content = append(sensorsNode.Content, &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
		Content: []*yaml.Node{
			scalarNode("name"), scalarNode(sensor.Name),
			scalarNode("id"), scalarNode(sensor.ID),
		},
	})

	return writeNode(configPath, &root)
}

func writeNode(configPath string, root *yaml.Node) error {
	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(root); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	encoder.Close()

	if err := os.WriteFile(configPath, []byte(buf.String()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func scalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// findMapValue finds a value in a mapping node by key name.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.Value == key {
			return valueNode
		}
	}

	return nil
}

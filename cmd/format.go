package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/env-store/envcli/internal/secrets"

	"gopkg.in/yaml.v3"
)

const (
	formatDotenv = "dotenv"
	formatJSON   = "json"
	formatYAML   = "yaml"
)

func validFormat(format string) bool {
	switch format {
	case formatDotenv, formatJSON, formatYAML:
		return true
	}
	return false
}

// formatVariables renders decrypted pairs for output. Order is kept in every
// format.
func formatVariables(pairs []secrets.KVPair, format string) (string, error) {
	switch format {
	case formatDotenv:
		var b strings.Builder
		for _, pair := range pairs {
			b.WriteString(pair.Key + "=" + dotenvValue(pair.Value) + "\n")
		}
		return b.String(), nil

	case formatJSON:
		if pairs == nil {
			pairs = []secrets.KVPair{}
		}
		data, err := json.MarshalIndent(pairs, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil

	case formatYAML:
		// A mapping node keeps insertion order, unlike a Go map.
		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, pair := range pairs {
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: pair.Key},
				&yaml.Node{Kind: yaml.ScalarNode, Value: pair.Value, Style: yamlStyle(pair.Value)},
			)
		}
		data, err := yaml.Marshal(node)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return "", fmt.Errorf("unknown format %q", format)
}

// dotenvValue quotes values a shell would otherwise split or expand.
func dotenvValue(value string) string {
	if value == "" || !strings.ContainsAny(value, " \t\n\"'`$#\\;&|<>()*?!") {
		return value
	}
	if !strings.Contains(value, "'") {
		return "'" + value + "'"
	}
	replacer := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`", "\n", `\n`)
	return `"` + replacer.Replace(value) + `"`
}

// yamlStyle forces quoting for values YAML would read back as another type.
func yamlStyle(value string) yaml.Style {
	var decoded interface{}
	if err := yaml.Unmarshal([]byte(value), &decoded); err != nil {
		return yaml.DoubleQuotedStyle
	}
	if s, ok := decoded.(string); ok && s == value {
		return 0
	}
	return yaml.DoubleQuotedStyle
}

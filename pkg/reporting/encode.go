/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: encode.go
Description: Report encoders. JSON and YAML keep property insertion order by encoding
the ordered dictionary form of the report; the text form mirrors the terminal listing.
*/

package reporting

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Velocidex/ordereddict"
	"gopkg.in/yaml.v3"

	"github.com/kleascm/hexaminer/pkg/core"
)

// EncodeJSON writes the report as indented JSON
func EncodeJSON(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report.Dict())
}

// EncodeYAML writes the report as a YAML document
func EncodeYAML(w io.Writer, report *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(YAMLNode(report.Dict())); err != nil {
		return err
	}
	return enc.Close()
}

// YAMLNode converts plain values, as produced by Dict, into a YAML node tree.
// Mapping keys keep their dictionary order.
func YAMLNode(v interface{}) *yaml.Node {
	switch val := v.(type) {
	case *ordereddict.Dict:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, key := range val.Keys() {
			item, _ := val.Get(key)
			node.Content = append(node.Content, scalar("!!str", key), YAMLNode(item))
		}
		return node
	case []interface{}:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range val {
			node.Content = append(node.Content, YAMLNode(item))
		}
		return node
	case string:
		return scalar("!!str", val)
	case int:
		return scalar("!!int", strconv.Itoa(val))
	case int64:
		return scalar("!!int", strconv.FormatInt(val, 10))
	case uint64:
		return scalar("!!int", strconv.FormatUint(val, 10))
	case float64:
		return scalar("!!float", strconv.FormatFloat(val, 'f', -1, 64))
	case bool:
		return scalar("!!bool", strconv.FormatBool(val))
	case nil:
		return scalar("!!null", "null")
	default:
		return scalar("!!str", fmt.Sprint(val))
	}
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

// WriteText writes the terminal listing of the report. Properties and structures are
// included when verbose is set.
func WriteText(w io.Writer, report *Report, verbose bool) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("=== Analysis Results for %s ===\n", report.Source))
	if len(report.Results) == 0 {
		sb.WriteString("\nNo analyzer recognised the data.\n")
	}

	for _, result := range report.Results {
		sb.WriteString(fmt.Sprintf("\nAnalyzer: %s\n", result.AnalyzerName))
		sb.WriteString(fmt.Sprintf("Data Type: %s\n", result.DataType))
		sb.WriteString(fmt.Sprintf("Confidence: %.1f%%\n", result.Confidence*100))

		if !verbose {
			continue
		}
		for _, key := range result.Properties.Keys() {
			v, _ := result.Properties.Get(key)
			sb.WriteString(fmt.Sprintf("  %s: %s\n", key, v.String()))
		}
		if len(result.Structures) > 0 {
			sb.WriteString("  Structures:\n")
			writeStructures(&sb, result.Structures, 2)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeStructures(sb *strings.Builder, structures []core.Structure, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, s := range structures {
		sb.WriteString(indent + s.String() + "\n")
		writeStructures(sb, s.Children, depth+1)
	}
}

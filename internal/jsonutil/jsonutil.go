// Package jsonutil holds small JSON serialization helpers shared by the CLI
// harness.
package jsonutil

import "encoding/json"

// JsonIndentDumps constructs a JSON string of data using a four-space
// indent, for printing run results and metadata to stdout or a plain file.
func JsonIndentDumps(data any) (string, error) {
	jsn, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return "", err
	}
	return string(jsn), nil
}

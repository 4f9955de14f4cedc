package llm

import (
	"fmt"
	"regexp"
)

var (
	reFencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	reRawJSON    = regexp.MustCompile(`(?s)\{.*\}`)
)

// ExtractJSON locates the JSON object inside free-form model output:
// fenced code blocks first, then raw braces anywhere. First match wins.
func ExtractJSON(text string) ([]byte, error) {
	if m := reFencedJSON.FindStringSubmatch(text); m != nil {
		return []byte(m[1]), nil
	}
	if m := reRawJSON.FindString(text); m != "" {
		return []byte(m), nil
	}
	return nil, fmt.Errorf("no JSON object found in model response")
}

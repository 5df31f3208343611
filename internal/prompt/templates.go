// Package prompt expands a user's search query into the set of prompts
// used to probe brand visibility. Each template phrases the same intent
// differently so a single run samples several ways a user might ask.
package prompt

import "fmt"

var templates = []string{
	"List top 10 companies/websites for %s",
	"What are the best options for %s?",
	"Name the leading providers of %s",
	"Who are the most trusted companies for %s?",
	"List the market leaders in %s",
}

// Expand returns the visibility probe prompts for a search query
func Expand(searchQuery string) []string {
	prompts := make([]string, len(templates))
	for i, tmpl := range templates {
		prompts[i] = fmt.Sprintf(tmpl, searchQuery)
	}
	return prompts
}

// Count reports how many prompts Expand generates per search query
func Count() int {
	return len(templates)
}

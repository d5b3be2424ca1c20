package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntent(t *testing.T) {
	tests := []struct {
		query      string
		categories []string
		paths      []string
		languages  []string
	}{
		{
			query:      "Check JWT secret handling in the API routes",
			categories: []string{"security"},
			paths:      []string{"api", "routes"},
			languages:  []string{},
		},
		{
			query:      "Slow database queries and Exception handling",
			categories: []string{"performance", "reliability"},
			paths:      []string{"database"},
			languages:  []string{},
		},
		{
			query:      "python lint",
			categories: []string{"style"},
			paths:      []string{},
			languages:  []string{"python"},
		},
		{
			query:      "javascript frontend",
			categories: []string{},
			paths:      []string{"frontend"},
			languages:  []string{"javascript", "java"},
		},
		{
			query:      "",
			categories: []string{},
			paths:      []string{},
			languages:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			intent := ParseIntent(tt.query)

			assert.Equal(t, tt.query, intent.Name)
			assert.Equal(t, tt.categories, intent.Categories)
			assert.Equal(t, tt.paths, intent.FocusPaths)
			assert.Equal(t, tt.languages, intent.Languages)
		})
	}
}

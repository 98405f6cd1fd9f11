package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdown(t *testing.T) {
	testCases := []struct {
		name     string
		rows     [][]string
		expected string
	}{
		{
			name:     "empty",
			rows:     nil,
			expected: "",
		},
		{
			name:     "header only",
			rows:     [][]string{{"Author", "Duration"}},
			expected: "| Author | Duration |\n| ------ | -------- |",
		},
		{
			name: "pads columns and escapes pipes",
			rows: [][]string{{"a", "bb"}, {"c|d", "e"}},
			expected: "| a    | bb  |\n" +
				"| ---- | --- |\n" +
				"| c\\|d | e   |",
		},
		{
			name: "short rows are filled",
			rows: [][]string{{"a", "b"}, {"x"}},
			expected: "| a   | b   |\n" +
				"| --- | --- |\n" +
				"| x   |     |",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Markdown(tc.rows))
		})
	}
}

func TestFields(t *testing.T) {
	assert.Equal(t, `<img src="https://avatars/alice" alt="alice" width="12" height="12">`, ImageField("alice", "https://avatars/alice"))
	assert.Equal(t, "[abc123](https://example.com)", LinkField("abc123", "https://example.com"))
	assert.Equal(t, "[#12](https://example.com/12)", NumberField("12", "https://example.com/12"))
}

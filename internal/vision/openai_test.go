package vision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIAnnotateWithoutKey(t *testing.T) {
	client := NewOpenAIClient("", "gpt-4o")

	result, err := client.Annotate(context.Background(), []byte("jpeg-bytes"))
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Nil(t, result)
}

func TestParseLabelList(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "plain array",
			content: `[{"label": "Dog", "score": 0.9}, {"label": "Grass", "score": 0.6}]`,
			want:    []string{"Dog", "Grass"},
		},
		{
			name: "fenced json",
			content: "```json\n" +
				`[{"label": "Golden Retriever", "score": 0.87}]` +
				"\n```",
			want: []string{"Golden Retriever"},
		},
		{
			name: "bare fence",
			content: "```\n" +
				`[{"label": "Cat"}]` +
				"\n```",
			want: []string{"Cat"},
		},
		{
			name:    "prose instead of json",
			content: "I see a dog in the photo.",
			want:    nil,
		},
		{
			name:    "empty array",
			content: `[]`,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseLabelList(tt.content)

			if tt.want == nil {
				assert.Nil(t, got)
				return
			}

			require.Len(t, got, len(tt.want))
			for i, text := range tt.want {
				assert.Equal(t, text, got[i].Text)
			}
		})
	}
}

func TestParseLabelListMissingScore(t *testing.T) {
	got := parseLabelList(`[{"label": "Cat"}]`)
	require.Len(t, got, 1)
	assert.Equal(t, "Cat", got[0].Text)
	assert.Nil(t, got[0].Score)
}

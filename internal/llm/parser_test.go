package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendfolio/spendfolio/internal/common"
)

func TestParseStockPicks(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []StockPick
		wantErr bool
	}{
		{
			name:  "well formed response",
			input: "Samsung Electronics:85, LG Chem:78, Naver:82",
			want: []StockPick{
				{Name: "Samsung Electronics", Score: 85},
				{Name: "LG Chem", Score: 78},
				{Name: "Naver", Score: 82},
			},
		},
		{
			name:  "whitespace and markdown fencing",
			input: "```\n Samsung Electronics : 85 , LG Chem:78, Naver:82 \n```",
			want: []StockPick{
				{Name: "Samsung Electronics", Score: 85},
				{Name: "LG Chem", Score: 78},
				{Name: "Naver", Score: 82},
			},
		},
		{
			name:  "out of range score falls back to default",
			input: "Samsung Electronics:150, LG Chem:-5, Naver:82",
			want: []StockPick{
				{Name: "Samsung Electronics", Score: 50},
				{Name: "LG Chem", Score: 50},
				{Name: "Naver", Score: 82},
			},
		},
		{
			name:  "non numeric score falls back to default",
			input: "Samsung Electronics:high, LG Chem:78, Naver:82",
			want: []StockPick{
				{Name: "Samsung Electronics", Score: 50},
				{Name: "LG Chem", Score: 78},
				{Name: "Naver", Score: 82},
			},
		},
		{
			name:  "name containing colon splits on final colon",
			input: "Alphabet: Class A:90, LG Chem:78, Naver:82",
			want: []StockPick{
				{Name: "Alphabet: Class A", Score: 90},
				{Name: "LG Chem", Score: 78},
				{Name: "Naver", Score: 82},
			},
		},
		{
			name:  "item without colon gets default score",
			input: "Samsung Electronics, LG Chem:78, Naver:82",
			want: []StockPick{
				{Name: "Samsung Electronics", Score: 50},
				{Name: "LG Chem", Score: 78},
				{Name: "Naver", Score: 82},
			},
		},
		{
			name:  "extra picks beyond three are ignored",
			input: "A:10, B:20, C:30, D:40",
			want: []StockPick{
				{Name: "A", Score: 10},
				{Name: "B", Score: 20},
				{Name: "C", Score: 30},
			},
		},
		{
			name:  "empty items are skipped",
			input: "A:10, , B:20, C:30",
			want: []StockPick{
				{Name: "A", Score: 10},
				{Name: "B", Score: 20},
				{Name: "C", Score: 30},
			},
		},
		{
			name:  "long names are truncated to twenty runes",
			input: "Extremely Long Company Name Incorporated:70, B:20, C:30",
			want: []StockPick{
				{Name: "Extremely Long Compa", Score: 70},
				{Name: "B", Score: 20},
				{Name: "C", Score: 30},
			},
		},
		{
			name:    "too few picks rejected",
			input:   "Samsung Electronics:85, LG Chem:78",
			wantErr: true,
		},
		{
			name:    "empty response rejected",
			input:   "",
			wantErr: true,
		},
		{
			name:    "only separators rejected",
			input:   ", , ,",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			picks, err := ParseStockPicks(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, common.ErrMalformedResponse))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, picks)
		})
	}
}

func TestRepairBriefingJSON(t *testing.T) {
	t.Run("clean json", func(t *testing.T) {
		payload, err := RepairBriefingJSON(`{"reason":"fits your spending","contents":"steady quarter","news":[{"link":"https://example.com/a","summary":"earnings beat"}]}`)
		require.NoError(t, err)
		assert.Equal(t, "fits your spending", payload.Reason)
		assert.Equal(t, "steady quarter", payload.Contents)
		require.Len(t, payload.News, 1)
		assert.Equal(t, "https://example.com/a", payload.News[0].Link)
	})

	t.Run("markdown fenced json with trailing chatter", func(t *testing.T) {
		input := "```json\n{\"reason\":\"r\",\"contents\":\"c\",\"news\":[]}\n```\nHope this helps!"
		payload, err := RepairBriefingJSON(input)
		require.NoError(t, err)
		assert.Equal(t, "r", payload.Reason)
		assert.Equal(t, "c", payload.Contents)
	})

	t.Run("trailing prose after closing brace is discarded", func(t *testing.T) {
		payload, err := RepairBriefingJSON(`{"reason":"r","contents":"c"} and that is my analysis`)
		require.NoError(t, err)
		assert.Equal(t, "r", payload.Reason)
	})

	t.Run("missing contents rejected", func(t *testing.T) {
		_, err := RepairBriefingJSON(`{"reason":"r","contents":""}`)
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrMalformedResponse))
	})

	t.Run("not json rejected", func(t *testing.T) {
		_, err := RepairBriefingJSON("I cannot answer that.")
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrMalformedResponse))
	})
}

func TestCleanMarkdownWrapper(t *testing.T) {
	assert.Equal(t, "hello", cleanMarkdownWrapper("```\nhello\n```"))
	assert.Equal(t, "hello", cleanMarkdownWrapper("```json\nhello\n```"))
	assert.Equal(t, "hello", cleanMarkdownWrapper("  hello  "))
	assert.Equal(t, "", cleanMarkdownWrapper("```"))
}

package talklog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatLine struct {
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func TestWriteFineTuneJSONL(t *testing.T) {
	t.Parallel()

	pairs := []TurnPair{
		{
			First:  turnAt("Alice", 10, 0, "おはよう<pbr>起きた?", CategoryText),
			Second: turnAt("Bob", 10, 5, "起きてる<br>いま<tab>準備中 <3", CategoryText),
		},
		{
			First:  turnAt("Bob", 10, 5, "B", CategoryText),
			Second: turnAt("Alice", 10, 6, "A", CategoryText),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteFineTuneJSONL(&buf, pairs, FineTuneOptions{SystemPrompt: "You are Bob."}))

	var lines []chatLine
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var l chatLine
		require.NoError(t, json.Unmarshal(sc.Bytes(), &l), sc.Text())
		lines = append(lines, l)
	}
	require.NoError(t, sc.Err())
	require.Len(t, lines, 2)

	first := lines[0].Messages
	require.Len(t, first, 3)
	assert.Equal(t, "system", first[0].Role)
	assert.Equal(t, "You are Bob.", first[0].Content)
	assert.Equal(t, "user", first[1].Role)
	assert.Equal(t, "おはよう\n\n起きた?", first[1].Content)
	assert.Equal(t, "assistant", first[2].Role)
	assert.Equal(t, "起きてる\nいま\t準備中 <3", first[2].Content)
}

func TestNewFineTuneExample_NoSystemPromptKeepTokens(t *testing.T) {
	t.Parallel()

	ex := NewFineTuneExample(TurnPair{
		First:  turnAt("Alice", 10, 0, "a<pbr>b", CategoryText),
		Second: turnAt("Bob", 10, 1, "c", CategoryText),
	}, FineTuneOptions{KeepTokens: true})

	b, err := json.Marshal(ex)
	require.NoError(t, err)

	var l chatLine
	require.NoError(t, json.Unmarshal(b, &l))
	require.Len(t, l.Messages, 2)
	assert.Equal(t, "user", l.Messages[0].Role)
	assert.Equal(t, "a<pbr>b", l.Messages[0].Content)
	assert.Equal(t, "assistant", l.Messages[1].Role)
}

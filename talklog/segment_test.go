package talklog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExport = "[LINE] Aliceとのトーク履歴\n" +
	"保存日時：2024/02/01 09:00\n" +
	"\n" +
	"2024/01/30(火)\n" +
	"10:00\tAlice\tおはよう\n" +
	"10:05\tBob\t[スタンプ]\n" +
	"10:06\tBob\t長い\n" +
	"メッセージ\n" +
	"\n" +
	"2024/01/31(水)\n" +
	"09:00\tAlice\thttps://example.com/a を見て\n" +
	"09:01\tAliceが退出しました\n"

func TestSplitDateBlocks_SkipsPreambleAndCapturesFields(t *testing.T) {
	t.Parallel()

	blocks := SplitDateBlocks(sampleExport)
	require.Len(t, blocks, 2)

	b := blocks[0]
	assert.Equal(t, "2024/01/30(火)", b.Heading)
	assert.Equal(t, "2024", b.Year)
	assert.Equal(t, "01", b.Month)
	assert.Equal(t, "30", b.Day)
	assert.Equal(t, "火", b.Weekday)
	y, m, d := b.Date()
	assert.Equal(t, [3]int{2024, 1, 30}, [3]int{y, m, d})

	assert.Equal(t, []string{
		"10:00\tAlice\tおはよう",
		"10:05\tBob\t[スタンプ]",
		"10:06\tBob\t長い",
		"メッセージ",
	}, b.Lines)

	assert.Equal(t, "2024/01/31(水)", blocks[1].Heading)
}

func TestSplitTimeBlocks_MultiLinePayload(t *testing.T) {
	t.Parallel()

	blocks := SplitDateBlocks(sampleExport)
	require.Len(t, blocks, 2)

	tbs := SplitTimeBlocks(blocks[0])
	require.Len(t, tbs, 3)
	assert.Equal(t, "10:00", tbs[0].Heading)
	assert.Equal(t, "Alice\tおはよう", tbs[0].Payload)
	assert.Equal(t, "Bob\t[スタンプ]", tbs[1].Payload)
	// The blank separator line before the next date heading is not part of the last payload.
	assert.Equal(t, "Bob\t長い\nメッセージ", tbs[2].Payload)

	h, m := tbs[2].Clock()
	assert.Equal(t, 10, h)
	assert.Equal(t, 6, m)

	last := SplitTimeBlocks(blocks[1])
	require.Len(t, last, 2)
	assert.Equal(t, "Aliceが退出しました", last[1].Payload)
}

func TestSplitDateBlocks_HeadingWithoutMessagesIsAbsorbed(t *testing.T) {
	t.Parallel()

	text := "2024/01/01(月)\n" +
		"12:00\tAlice\thi\n" +
		"2024/01/02(火)\n" + // no time line follows: not a boundary
		"2024/01/03(水)\n" +
		"08:00\tBob\tyo"

	blocks := SplitDateBlocks(text)
	require.Len(t, blocks, 2)
	assert.Equal(t, "2024/01/01(月)", blocks[0].Heading)
	assert.Equal(t, "2024/01/03(水)", blocks[1].Heading)

	tbs := SplitTimeBlocks(blocks[0])
	require.Len(t, tbs, 1)
	assert.Equal(t, "Alice\thi\n2024/01/02(火)", tbs[0].Payload)
}

func TestSplitDateBlocks_MalformedHeadingsAreNotBoundaries(t *testing.T) {
	t.Parallel()

	text := "2024/01/01(月)\n" +
		"12:00\tAlice\thi\n" +
		"2024/1/02(火)\n" + // single-digit month
		"13:00\tAlice\tstill day one\n" +
		"2024/01/02(X)\n" + // unknown weekday label
		"14:00\tBob\talso day one\n" +
		"1:05\tBob\tnot a time heading"

	blocks := SplitDateBlocks(text)
	require.Len(t, blocks, 1)

	tbs := SplitTimeBlocks(blocks[0])
	require.Len(t, tbs, 3)
	assert.Equal(t, "Alice\thi\n2024/1/02(火)", tbs[0].Payload)
	assert.Equal(t, "Alice\tstill day one\n2024/01/02(X)", tbs[1].Payload)
	assert.Equal(t, "Bob\talso day one\n1:05\tBob\tnot a time heading", tbs[2].Payload)
}

func TestSplitDateBlocks_CRLF(t *testing.T) {
	t.Parallel()

	text := "2024/01/01(月)\r\n12:00\tAlice\thi\r\n12:01\tBob\tho"
	blocks := SplitDateBlocks(text)
	require.Len(t, blocks, 1)

	tbs := SplitTimeBlocks(blocks[0])
	require.Len(t, tbs, 2)
	assert.Equal(t, "Alice\thi", tbs[0].Payload)
	assert.Equal(t, "Bob\tho", tbs[1].Payload)
}

func TestSplitDateBlocks_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, SplitDateBlocks(""))
	assert.Empty(t, SplitDateBlocks("just some text\nwithout headings"))
	// A trailing heading with nothing after it never opens a block.
	assert.Empty(t, SplitDateBlocks("2024/01/01(月)"))
}

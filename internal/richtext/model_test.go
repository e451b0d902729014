package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Document {
	return &Document{Blocks: []Block{
		{Type: Heading, Level: 1, Inlines: []Inline{{Text: "Title"}}},
		{Type: Paragraph, Inlines: []Inline{
			{Text: "plain "},
			{Text: "bold", Marks: MarkSet{Bold: true}},
			{Text: " tail"},
		}},
		{Type: Image, Src: "https://cdn.example/x.jpg"},
		{Type: BulletList, Inlines: []Inline{{Text: "item", Marks: MarkSet{Href: "/news"}}}},
	}}
}

func TestNewEmpty(t *testing.T) {
	doc := NewEmpty()
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, Paragraph, doc.Blocks[0].Type)
	assert.Empty(t, doc.Blocks[0].Inlines)
}

func TestIsMarkActiveFollowsSelection(t *testing.T) {
	doc := sample()

	assert.True(t, doc.IsMarkActive(Span(Position{1, 6}, Position{1, 10}), Bold))
	assert.False(t, doc.IsMarkActive(Span(Position{1, 5}, Position{1, 10}), Bold), "range starts on a plain space")
	assert.False(t, doc.IsMarkActive(Span(Position{0, 0}, Position{1, 3}), Bold))

	assert.True(t, doc.IsMarkActive(Cursor(1, 8), Bold))
	assert.True(t, doc.IsMarkActive(Cursor(1, 10), Bold), "cursor right after the bold run")
	assert.False(t, doc.IsMarkActive(Cursor(1, 11), Bold))
	assert.False(t, doc.IsMarkActive(Cursor(1, 0), Bold))

	assert.True(t, doc.IsMarkActive(Cursor(3, 2), Link))
	assert.Equal(t, "/news", doc.LinkAt(Span(Position{3, 0}, Position{3, 4})))
	assert.False(t, doc.IsMarkActive(Cursor(2, 0), Bold), "images carry no marks")
}

func TestIsBlockActive(t *testing.T) {
	doc := sample()

	assert.True(t, doc.IsBlockActive(Cursor(0, 2), Heading, 1))
	assert.True(t, doc.IsBlockActive(Cursor(0, 2), Heading, 0))
	assert.False(t, doc.IsBlockActive(Cursor(0, 2), Heading, 2))
	assert.False(t, doc.IsBlockActive(Span(Position{0, 0}, Position{1, 1}), Heading, 1))
	assert.True(t, doc.IsBlockActive(Cursor(3, 0), BulletList, 0))
	assert.False(t, doc.IsBlockActive(Cursor(3, 0), OrderedList, 0))
}

func TestClamp(t *testing.T) {
	doc := sample()

	sel := doc.Clamp(Span(Position{-1, 3}, Position{9, 9}))
	assert.Equal(t, Position{0, 0}, sel.Anchor)
	assert.Equal(t, Position{3, 4}, sel.Head)
	assert.Equal(t, Position{1, 15}, doc.Clamp(Cursor(1, 99)).Head)
}

func TestApplyMarksSplitsRuns(t *testing.T) {
	doc := sample()

	changed := doc.ApplyMarks(Position{1, 2}, Position{1, 8}, func(m MarkSet) MarkSet { return m.With(Italic, true) })

	require.True(t, changed)
	assert.Equal(t, []Inline{
		{Text: "pl"},
		{Text: "ain ", Marks: MarkSet{Italic: true}},
		{Text: "bo", Marks: MarkSet{Bold: true, Italic: true}},
		{Text: "ld", Marks: MarkSet{Bold: true}},
		{Text: " tail"},
	}, doc.Blocks[1].Inlines)

	assert.False(t, doc.ApplyMarks(Position{1, 2}, Position{1, 6}, func(m MarkSet) MarkSet { return m.With(Italic, true) }))
}

func TestInsertTextKeepsRunsCanonical(t *testing.T) {
	doc := sample()

	end := doc.InsertText(Position{1, 10}, "er", MarkSet{Bold: true})

	assert.Equal(t, Position{1, 12}, end)
	assert.Equal(t, Inline{Text: "bolder", Marks: MarkSet{Bold: true}}, doc.Blocks[1].Inlines[1])
}

func TestDeleteRangeAcrossBlocks(t *testing.T) {
	doc := sample()

	at := doc.DeleteRange(Position{0, 2}, Position{1, 6})

	assert.Equal(t, Position{0, 2}, at)
	require.Len(t, doc.Blocks, 3)
	assert.Equal(t, Heading, doc.Blocks[0].Type)
	assert.Equal(t, []Inline{{Text: "Ti"}, {Text: "bold", Marks: MarkSet{Bold: true}}, {Text: " tail"}}, doc.Blocks[0].Inlines)
}

func TestDeleteRangeOverImageAndEverything(t *testing.T) {
	doc := sample()
	at := doc.DeleteRange(Position{1, 15}, Position{3, 0})
	assert.Equal(t, Position{1, 15}, at)
	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, "plain bold tailitem", doc.Blocks[1].Text())

	doc = sample()
	doc.DeleteRange(Position{0, 0}, doc.End())
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, "", doc.Blocks[0].Text())
}

func TestSplitAndJoin(t *testing.T) {
	doc := sample()

	at := doc.SplitBlock(Position{1, 6})
	assert.Equal(t, Position{2, 0}, at)
	require.Len(t, doc.Blocks, 5)
	assert.Equal(t, "plain ", doc.Blocks[1].Text())
	assert.Equal(t, "bold tail", doc.Blocks[2].Text())

	back := doc.JoinWithPrevious(2)
	assert.Equal(t, Position{1, 6}, back)
	assert.True(t, Equal(sample(), doc))
}

func TestSetBlockTypeSkipsImages(t *testing.T) {
	doc := sample()

	assert.True(t, doc.SetBlockType(1, 3, OrderedList, 0))
	assert.Equal(t, OrderedList, doc.Blocks[1].Type)
	assert.Equal(t, Image, doc.Blocks[2].Type)
	assert.Equal(t, OrderedList, doc.Blocks[3].Type)
	assert.False(t, doc.SetBlockType(1, 3, OrderedList, 0))
	assert.False(t, doc.SetBlockType(0, 0, Image, 0))
}

func TestCloneIsDeep(t *testing.T) {
	doc := sample()
	c := doc.Clone()
	c.Blocks[1].Inlines[0].Text = "changed"
	assert.Equal(t, "plain ", doc.Blocks[1].Inlines[0].Text)
}

func TestParseNames(t *testing.T) {
	bt, ok := ParseBlockType("orderedList")
	assert.True(t, ok)
	assert.Equal(t, OrderedList, bt)
	_, ok = ParseBlockType("table")
	assert.False(t, ok)

	mt, ok := ParseMarkType("underline")
	assert.True(t, ok)
	assert.Equal(t, Underline, mt)
}

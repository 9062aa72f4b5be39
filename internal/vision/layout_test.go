package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func annWord(text string, x, y, w, h int) Word {
	symbols := make([]Symbol, 0, len(text))
	for _, r := range text {
		symbols = append(symbols, Symbol{Text: string(r)})
	}
	return Word{
		Symbols: symbols,
		BoundingBox: &BoundingBox{Vertices: []Vertex{
			{X: x, Y: y},
			{X: x + w, Y: y},
			{X: x + w, Y: y + h},
			{X: x, Y: y + h},
		}},
	}
}

func annPage(words ...Word) Page {
	return Page{Blocks: []Block{{Paragraphs: []Paragraph{{Words: words}}}}}
}

func TestLinesFromAnnotationGroupsByBaseline(t *testing.T) {
	full := &FullTextAnnotation{Pages: []Page{annPage(
		annWord("Họ", 0, 100, 40, 20),
		annWord("tên:", 50, 102, 60, 20),
		annWord("Nguyễn", 120, 98, 100, 20),
		annWord("Số", 0, 200, 40, 20),
		annWord("điện", 50, 201, 60, 20),
		annWord("thoại:", 120, 199, 80, 20),
		annWord("0901234567", 210, 200, 160, 20),
	)}}

	lines := LinesFromAnnotation(full)
	assert.Equal(t, []string{
		"Họ tên: Nguyễn",
		"Số điện thoại: 0901234567",
	}, lines)
}

func TestLinesFromAnnotationSortsLeftToRight(t *testing.T) {
	// Detection order interleaves the line; x positions restore it.
	full := &FullTextAnnotation{Pages: []Page{annPage(
		annWord("Lượn", 200, 100, 80, 20),
		annWord("Nguyễn", 0, 100, 100, 20),
		annWord("Thị", 110, 100, 60, 20),
	)}}

	lines := LinesFromAnnotation(full)
	assert.Equal(t, []string{"Nguyễn Thị Lượn"}, lines)
}

func TestLinesFromAnnotationSplitsPages(t *testing.T) {
	full := &FullTextAnnotation{Pages: []Page{
		annPage(annWord("trang", 0, 100, 80, 20), annWord("một", 90, 100, 60, 20)),
		annPage(annWord("trang", 0, 100, 80, 20), annWord("hai", 90, 100, 60, 20)),
	}}

	lines := LinesFromAnnotation(full)
	assert.Equal(t, []string{"trang một", "trang hai"}, lines)
}

func TestLinesFromAnnotationEmpty(t *testing.T) {
	assert.Nil(t, LinesFromAnnotation(nil))
	assert.Nil(t, LinesFromAnnotation(&FullTextAnnotation{}))
}

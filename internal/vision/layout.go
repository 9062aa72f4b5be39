package vision

import (
	"sort"
	"strings"
)

// The provider's fullTextAnnotation.text concatenates blocks in detection
// order, which for scanned résumés often interleaves columns. LinesFromAnnotation
// instead rebuilds reading order from word bounding boxes: words are
// bucketed into lines by vertical center against a threshold derived from
// the median word height, then each line is sorted left to right.

type wordBox struct {
	text string
	minX float64
	cy   float64
	h    float64
	page int
}

// LinesFromAnnotation returns the document's text lines in reading order.
func LinesFromAnnotation(full *FullTextAnnotation) []string {
	words := collectWordBoxes(full)
	if len(words) == 0 {
		return nil
	}

	sort.SliceStable(words, func(i, j int) bool {
		if words[i].page != words[j].page {
			return words[i].page < words[j].page
		}
		if words[i].cy != words[j].cy {
			return words[i].cy < words[j].cy
		}
		return words[i].minX < words[j].minX
	})

	threshold := lineThreshold(words)

	var lines [][]wordBox
	current := []wordBox{words[0]}
	for _, w := range words[1:] {
		if w.page != current[len(current)-1].page || absFloat(w.cy-lineCenter(current)) > threshold {
			lines = append(lines, current)
			current = []wordBox{w}
		} else {
			current = append(current, w)
		}
	}
	lines = append(lines, current)

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].minX < line[j].minX })
		var parts []string
		for _, w := range line {
			if strings.TrimSpace(w.text) != "" {
				parts = append(parts, w.text)
			}
		}
		if len(parts) > 0 {
			out = append(out, strings.Join(parts, " "))
		}
	}
	return out
}

func collectWordBoxes(full *FullTextAnnotation) []wordBox {
	var words []wordBox
	if full == nil {
		return words
	}
	for pageIdx, page := range full.Pages {
		for _, block := range page.Blocks {
			for _, para := range block.Paragraphs {
				for _, word := range para.Words {
					var sb strings.Builder
					for _, s := range word.Symbols {
						sb.WriteString(s.Text)
					}
					minX, minY, maxY := boxBounds(word.BoundingBox)
					h := maxY - minY
					if h <= 0 {
						h = 10
					}
					words = append(words, wordBox{
						text: sb.String(),
						minX: minX,
						cy:   (minY + maxY) / 2.0,
						h:    h,
						page: pageIdx,
					})
				}
			}
		}
	}
	return words
}

func boxBounds(box *BoundingBox) (minX, minY, maxY float64) {
	if box == nil || len(box.Vertices) == 0 {
		return 0, 0, 0
	}
	minX = float64(box.Vertices[0].X)
	minY = float64(box.Vertices[0].Y)
	maxY = minY
	for _, v := range box.Vertices[1:] {
		if x := float64(v.X); x < minX {
			minX = x
		}
		if y := float64(v.Y); y < minY {
			minY = y
		} else if y > maxY {
			maxY = y
		}
	}
	return minX, minY, maxY
}

// lineThreshold derives the vertical grouping tolerance from the median
// word height, floored at 10px.
func lineThreshold(words []wordBox) float64 {
	heights := make([]float64, 0, len(words))
	for _, w := range words {
		if w.h > 0 {
			heights = append(heights, w.h)
		}
	}
	median := 12.0
	if len(heights) > 0 {
		sort.Float64s(heights)
		mid := len(heights) / 2
		if len(heights)%2 == 1 {
			median = heights[mid]
		} else {
			median = (heights[mid-1] + heights[mid]) / 2.0
		}
	}
	if t := median * 0.8; t > 10 {
		return t
	}
	return 10
}

func lineCenter(line []wordBox) float64 {
	var sum float64
	for _, w := range line {
		sum += w.cy
	}
	return sum / float64(len(line))
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

package dialog

import (
	"html"
	"strings"
)

// Segment is a run of text drawn in one color. An empty Color means the
// default text color.
type Segment struct {
	Text  string
	Color string
}

// lineWriter receives a line-by-line walk of colored text. close(i) ends
// the i-th span opened on the current line and still open; spans may
// close out of order.
type lineWriter interface {
	text(s string)
	open(color string)
	close(i int)
	endLine()
}

// walk splits the text visible at cutoff into lines and reports color
// spans to w. Spans still open at the end of a line are closed there and
// reopened at the start of the next. A negative cutoff means all text.
func (d *Dialog) walk(cutoff int, w lineWriter) {
	runes := []rune(d.Text)
	if cutoff >= 0 && cutoff < len(runes) {
		runes = runes[:cutoff]
	} else {
		cutoff = len(runes)
	}

	var markers []ColorMarker
	for _, m := range d.Markers {
		if m.Position < cutoff {
			markers = append(markers, m)
		}
	}

	var open []string
	next := 0
	lineStart := 0
	for {
		lineEnd := lineStart
		for lineEnd < len(runes) && runes[lineEnd] != '\n' {
			lineEnd++
		}

		for _, c := range open {
			w.open(c)
		}
		cursor := lineStart
		for next < len(markers) {
			m := markers[next]
			if m.IsEnd && m.Position > lineEnd || !m.IsEnd && m.Position >= lineEnd {
				break
			}
			at := max(m.Position, cursor)
			if at > cursor {
				w.text(string(runes[cursor:at]))
				cursor = at
			}
			if m.IsEnd {
				if i := lastIndex(open, m.Color); i >= 0 {
					open = append(open[:i], open[i+1:]...)
					w.close(i)
				}
			} else {
				open = append(open, m.Color)
				w.open(m.Color)
			}
			next++
		}
		if lineEnd > cursor {
			w.text(string(runes[cursor:lineEnd]))
		}
		for i := len(open) - 1; i >= 0; i-- {
			w.close(i)
		}
		w.endLine()

		if lineEnd >= len(runes) {
			return
		}
		lineStart = lineEnd + 1
	}
}

// HTMLLines returns the text visible at cutoff as one HTML string per line,
// with aside and emphasis spans rendered as colored <span> elements. A
// negative cutoff renders all text.
func (d *Dialog) HTMLLines(cutoff int) []string {
	w := &htmlWriter{}
	d.walk(cutoff, w)
	return w.lines
}

// Segments returns the text visible at cutoff as colored segments per line.
func (d *Dialog) Segments(cutoff int) [][]Segment {
	w := &segmentWriter{}
	d.walk(cutoff, w)
	return w.lines
}

type htmlWriter struct {
	b     strings.Builder
	spans []string
	lines []string
}

func (w *htmlWriter) text(s string) { w.b.WriteString(html.EscapeString(s)) }

func (w *htmlWriter) open(c string) {
	w.spans = append(w.spans, c)
	w.b.WriteString(`<span style="color:` + c + `">`)
}

// close ends span i. HTML spans nest, so the spans above it are closed
// with it and reopened.
func (w *htmlWriter) close(i int) {
	if i < 0 || i >= len(w.spans) {
		return
	}
	above := append([]string(nil), w.spans[i+1:]...)
	for range w.spans[i:] {
		w.b.WriteString("</span>")
	}
	w.spans = w.spans[:i]
	for _, c := range above {
		w.open(c)
	}
}

func (w *htmlWriter) endLine() {
	w.lines = append(w.lines, w.b.String())
	w.b.Reset()
	w.spans = nil
}

type segmentWriter struct {
	colors []string
	line   []Segment
	lines  [][]Segment
}

func (w *segmentWriter) text(s string) {
	c := ""
	if len(w.colors) > 0 {
		c = w.colors[len(w.colors)-1]
	}
	w.line = append(w.line, Segment{Text: s, Color: c})
}

func (w *segmentWriter) open(c string) { w.colors = append(w.colors, c) }

func (w *segmentWriter) close(i int) {
	if i >= 0 && i < len(w.colors) {
		w.colors = append(w.colors[:i], w.colors[i+1:]...)
	}
}

func (w *segmentWriter) endLine() {
	w.lines = append(w.lines, w.line)
	w.line = nil
	w.colors = nil
}

func lastIndex(s []string, v string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == v {
			return i
		}
	}
	return -1
}

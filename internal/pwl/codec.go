package pwl

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"pwl-editor/internal/engfmt"
)

// FormatError reports where a PWL text parse failed: the 1-based line
// and pair numbers, the offending token, and the reason.
type FormatError struct {
	Line   int
	Pair   int
	Token  string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("pwl: line %d, pair %d: %s: %q", e.Line, e.Pair, e.Reason, e.Token)
	}
	return fmt.Sprintf("pwl: line %d, pair %d: %s", e.Line, e.Pair, e.Reason)
}

// Serialize writes the waveform as bare "<time> <voltage>" pairs, one
// per line, in increasing time order. Values use shortest round-trip
// formatting so Parse(Serialize(w)) reproduces w exactly.
func Serialize(out io.Writer, w *Waveform) error {
	bw := bufio.NewWriter(out)
	for _, p := range w.Points() {
		if _, err := fmt.Fprintf(bw, "%s %s\n",
			strconv.FormatFloat(p.Time, 'g', -1, 64),
			strconv.FormatFloat(p.Voltage, 'g', -1, 64)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// SerializeBlock renders the waveform as the editor's PWL(...) text
// pane format with engineering-notation values:
//
//	PWL(
//	    1m 0,
//	    2m 1.5
//	)
//
// An empty waveform renders as an empty string.
func SerializeBlock(w *Waveform) string {
	pts := w.Points()
	if len(pts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("PWL(\n")
	for i, p := range pts {
		sep := ","
		if i == len(pts)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "    %s %s%s\n", engfmt.Format(p.Time), engfmt.Format(p.Voltage), sep)
	}
	b.WriteString(")")
	return b.String()
}

// Parse reads whitespace-separated time/voltage pairs into a new
// waveform. Commas and an optional PWL(...) wrapper are tolerated so
// the editor's own pane output and SPICE-deck fragments both load.
// Values may use engineering suffixes. Fails with a *FormatError
// naming the line and pair on malformed tokens, an unpaired value,
// negative time, or a non-increasing time sequence.
func Parse(r io.Reader) (*Waveform, error) {
	type token struct {
		text string
		line int
	}
	var tokens []token

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		// Strip the block wrapper; values never contain parens.
		text = strings.ReplaceAll(text, "PWL(", " ")
		text = strings.ReplaceAll(text, "(", " ")
		text = strings.ReplaceAll(text, ")", " ")
		text = strings.ReplaceAll(text, ",", " ")
		for _, f := range strings.Fields(text) {
			tokens = append(tokens, token{text: f, line: line})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if len(tokens)%2 != 0 {
		last := tokens[len(tokens)-1]
		return nil, &FormatError{
			Line:   last.line,
			Pair:   len(tokens)/2 + 1,
			Token:  last.text,
			Reason: "unpaired value",
		}
	}

	w := New()
	prev := -1.0
	for i := 0; i < len(tokens); i += 2 {
		pair := i/2 + 1
		tTok, vTok := tokens[i], tokens[i+1]

		t, err := engfmt.Parse(tTok.text)
		if err != nil {
			return nil, &FormatError{Line: tTok.line, Pair: pair, Token: tTok.text, Reason: "invalid time"}
		}
		v, err := engfmt.Parse(vTok.text)
		if err != nil {
			return nil, &FormatError{Line: vTok.line, Pair: pair, Token: vTok.text, Reason: "invalid voltage"}
		}
		if t < 0 {
			return nil, &FormatError{Line: tTok.line, Pair: pair, Token: tTok.text, Reason: "negative time"}
		}
		if t <= prev {
			return nil, &FormatError{Line: tTok.line, Pair: pair, Token: tTok.text, Reason: "time not increasing"}
		}
		prev = t

		id := w.nextID
		w.nextID++
		w.points = append(w.points, Point{ID: id, Time: t, Voltage: v})
	}

	w.points = EnsureMinSpacing(w.points)
	return w, nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(s string) (*Waveform, error) {
	return Parse(strings.NewReader(s))
}

package score

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/james-see/wavetone/pkg/music"
)

const measuresPerLine = 4

// String returns the step in score text form
func (st Step) String() string {
	var b strings.Builder
	switch st.Kind {
	case StepRest:
		b.WriteString("R")
	case StepChord:
		names := make([]string, len(st.Notes))
		for i, n := range st.Notes {
			names[i] = n.String()
		}
		b.WriteString("[" + strings.Join(names, ",") + "]")
	default:
		if len(st.Notes) > 0 {
			b.WriteString(st.Notes[0].String())
		}
	}
	b.WriteString("/" + st.Length.Symbol())
	if st.Slur {
		b.WriteString("~")
	}
	return b.String()
}

// Format renders a score as text that Parse reads back into the same score
func Format(s *Score) string {
	var b strings.Builder
	if s.Title != "" {
		fmt.Fprintf(&b, "title %s\n", s.Title)
	}
	fmt.Fprintf(&b, "tempo %s\n", strconv.FormatFloat(s.BPM, 'f', -1, 64))
	fmt.Fprintf(&b, "time %s\n", s.TimeSignature)
	fmt.Fprintf(&b, "waveform %s\n", s.Waveform)
	fmt.Fprintf(&b, "volume %d\n", s.Volume)

	for _, p := range s.Parts {
		fmt.Fprintf(&b, "\npart %s\n", p.Name)
		if p.Waveform != s.Waveform {
			fmt.Fprintf(&b, "waveform %s\n", p.Waveform)
		}
		if p.Volume != s.Volume {
			fmt.Fprintf(&b, "volume %d\n", p.Volume)
		}
		writeSteps(&b, p.Steps, s.Settings())
	}
	return b.String()
}

func writeSteps(b *strings.Builder, steps []Step, settings music.BeatSettings) {
	counter := music.NewBeatCounter(settings)
	measures := 0
	lineStart := true
	for _, step := range steps {
		if !lineStart {
			b.WriteString(" ")
		}
		b.WriteString(step.String())
		lineStart = false

		counter.Increment(step.Length)
		m := counter.TotalMeasures()
		if m == math.Trunc(m) && int(m) > measures {
			measures = int(m)
			if measures%measuresPerLine == 0 {
				b.WriteString(" |\n")
				lineStart = true
			} else {
				b.WriteString(" |")
			}
		}
	}
	if !lineStart {
		b.WriteString("\n")
	}
}

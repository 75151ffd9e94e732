package score

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/james-see/wavetone/pkg/music"
	"github.com/james-see/wavetone/pkg/synth"
)

// ParseError reports a problem at a specific line of score text
type ParseError struct {
	Line  int
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("line %d: %q: %v", e.Line, e.Token, e.Err)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseString parses score text
func ParseString(text string) (*Score, error) {
	return Parse(strings.NewReader(text))
}

// Parse reads score text
//
//	title Ode to Joy
//	tempo 100
//	time 4/4
//	waveform triangle
//	part melody
//	E4/q E4/q F4/q G4/q | [C4,E4,G4]/h R/h
func Parse(r io.Reader) (*Score, error) {
	s := New("")
	var current *Part

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := stripComment(raw)
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		directive := strings.ToLower(fields[0])
		if directive == "title" || directive == "part" {
			// names run to the end of the line, # included
			line = raw
		}
		rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))

		switch directive {
		case "title":
			s.Title = rest
			continue
		case "tempo", "bpm":
			bpm, err := strconv.ParseFloat(rest, 64)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Token: rest, Err: music.ErrInvalidBPM}
			}
			if err := music.ValidateBPM(bpm); err != nil {
				return nil, &ParseError{Line: lineNo, Token: rest, Err: err}
			}
			s.BPM = bpm
			continue
		case "time":
			ts, err := music.ParseTimeSignature(rest)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Token: rest, Err: err}
			}
			s.TimeSignature = ts
			continue
		case "waveform", "wave":
			w, err := synth.ParseWaveform(rest)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Token: rest, Err: err}
			}
			if current != nil {
				current.Waveform = w
			} else {
				s.Waveform = w
			}
			continue
		case "volume":
			v, err := strconv.ParseUint(rest, 10, 8)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Token: rest, Err: errors.New("volume must be 0-255")}
			}
			if current != nil {
				current.Volume = uint8(v)
			} else {
				s.Volume = uint8(v)
			}
			continue
		case "part":
			if rest == "" {
				return nil, &ParseError{Line: lineNo, Err: errors.New("part needs a name")}
			}
			current = s.AddPart(rest)
			continue
		}

		for _, tok := range fields {
			if tok == "|" {
				continue
			}
			step, err := ParseStep(tok)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Token: tok, Err: err}
			}
			if current == nil {
				current = s.AddPart(DefaultPart)
			}
			current.Steps = append(current.Steps, step)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read score: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// stripComment removes a # comment; a # inside a token such as C#4 is a sharp
func stripComment(line string) string {
	for i, r := range line {
		if r == '#' && (i == 0 || line[i-1] == ' ' || line[i-1] == '\t') {
			return line[:i]
		}
	}
	return line
}

// ParseStep parses a single step token such as C4/q, R/h, [C4,E4]/w or D4/e~
func ParseStep(tok string) (Step, error) {
	slur := strings.HasSuffix(tok, "~")
	body := strings.TrimSuffix(tok, "~")

	head, lengthText, ok := strings.Cut(body, "/")
	if !ok {
		return Step{}, errors.New("step needs a length, e.g. C4/q")
	}
	length, err := music.ParseBeat(lengthText)
	if err != nil {
		return Step{}, err
	}

	if strings.EqualFold(head, "R") {
		if slur {
			return Step{}, errors.New("rests cannot be slurred")
		}
		return Rest(length), nil
	}

	if strings.HasPrefix(head, "[") {
		if !strings.HasSuffix(head, "]") {
			return Step{}, errors.New("unterminated chord")
		}
		inner := strings.TrimSpace(head[1 : len(head)-1])
		if inner == "" {
			return Step{}, errors.New("empty chord")
		}
		var notes []music.Note
		for _, name := range strings.Split(inner, ",") {
			n, err := music.ParseNote(strings.TrimSpace(name))
			if err != nil {
				return Step{}, err
			}
			notes = append(notes, n)
		}
		step := Chord(notes, length)
		step.Slur = slur
		return step, nil
	}

	n, err := music.ParseNote(head)
	if err != nil {
		return Step{}, err
	}
	step := Note(n, length)
	step.Slur = slur
	return step, nil
}

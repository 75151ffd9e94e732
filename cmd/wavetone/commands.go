package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/james-see/wavetone/pkg/api"
	"github.com/james-see/wavetone/pkg/audio"
	"github.com/james-see/wavetone/pkg/converter"
	"github.com/james-see/wavetone/pkg/library"
	"github.com/james-see/wavetone/pkg/logger"
	"github.com/james-see/wavetone/pkg/music"
	"github.com/james-see/wavetone/pkg/pieces"
	"github.com/james-see/wavetone/pkg/score"
	"github.com/james-see/wavetone/pkg/sequencer"
	"github.com/james-see/wavetone/pkg/synth"
	"github.com/james-see/wavetone/pkg/tui"
)

const (
	defaultTonic    = "C4"
	defaultScale    = "major"
	defaultScaleBPM = 60
)

func (a *app) runScale(cmd *cobra.Command, args []string) error {
	tonicName, scaleName, bpm := defaultTonic, defaultScale, float64(defaultScaleBPM)
	if len(args) > 0 {
		tonicName = args[0]
	}
	if len(args) > 1 {
		scaleName = args[1]
	}
	if len(args) > 2 {
		v, err := strconv.ParseFloat(args[2], 64)
		if err != nil || v <= 0 {
			return fmt.Errorf("invalid bpm %q", args[2])
		}
		bpm = v
	}

	tonic, err := music.ParseNote(tonicName)
	if err != nil {
		return err
	}
	scale, err := music.LookupScale(scaleName)
	if err != nil {
		return err
	}
	settings, err := a.cfg.Settings()
	if err != nil {
		return err
	}
	settings.BPM = bpm

	s, err := score.ScaleScore(tonic, scale, settings, a.cfg.Waveform(), a.cfg.Volume())
	if err != nil {
		return err
	}
	return a.output(cmd, s)
}

func (a *app) runTone(cmd *cobra.Command, args []string) error {
	n, err := music.ParseNote(args[0])
	if err != nil {
		return err
	}
	length, err := music.ParseBeat(a.beat)
	if err != nil {
		return err
	}
	settings, err := a.cfg.Settings()
	if err != nil {
		return err
	}
	if a.bpm > 0 {
		settings.BPM = a.bpm
	}

	s, err := score.ToneScore(n, length, settings, a.cfg.Waveform(), a.cfg.Volume())
	if err != nil {
		return err
	}
	return a.output(cmd, s)
}

func (a *app) runPlay(cmd *cobra.Command, args []string) error {
	s, err := a.resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if a.bpm > 0 {
		s.BPM = a.bpm
	}
	return a.output(cmd, s)
}

func (a *app) runRender(cmd *cobra.Command, args []string) error {
	s, err := a.resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if a.bpm > 0 {
		s.BPM = a.bpm
	}
	return a.write(cmd, s, a.outputFile)
}

func (a *app) runImport(cmd *cobra.Command, args []string) error {
	input := args[0]
	if converter.DetectFormat(input) != converter.FormatMIDI {
		return fmt.Errorf("%s: not a MIDI file", input)
	}
	s, err := a.converter().LoadScore(input)
	if err != nil {
		return err
	}

	output := a.outputFile
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".score"
	}
	return a.write(cmd, s, output)
}

func (a *app) runPieces(cmd *cobra.Command, args []string) error {
	list, err := pieces.List()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTITLE\tPARTS\tBPM\tLENGTH")
	for _, info := range list {
		s, err := pieces.Get(info.Name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%g\t%s\n", info.Name, info.Title, info.Parts, info.BPM, s.Duration().Round(time.Second))
	}
	return w.Flush()
}

func (a *app) runScales(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tINTERVALS")
	for _, s := range music.Scales() {
		steps := make([]string, len(s.Intervals))
		for i, iv := range s.Intervals {
			steps[i] = strconv.Itoa(int(iv))
		}
		fmt.Fprintf(w, "%s\t%s\n", s.Name, strings.Join(steps, " "))
	}
	return w.Flush()
}

func (a *app) runWaveforms(cmd *cobra.Command, args []string) error {
	for _, w := range synth.Waveforms() {
		marker := " "
		if w == a.cfg.Waveform() {
			marker = "*"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, w)
	}
	return nil
}

func (a *app) runTUI(cmd *cobra.Command, args []string) error {
	settings, err := a.cfg.Settings()
	if err != nil {
		return err
	}
	settings.BPM = defaultScaleBPM

	conv := a.converter()
	return tui.Run(tui.Config{
		Play: func(ctx context.Context, s *score.Score, waveform synth.Waveform) error {
			return a.play(ctx, s, &waveform)
		},
		Load:     conv.LoadScore,
		Tonic:    music.MustParseNote(defaultTonic),
		Settings: settings,
		Waveform: a.cfg.Waveform(),
		Volume:   a.cfg.Volume(),
	})
}

func (a *app) runServe(cmd *cobra.Command, args []string) error {
	port := a.serverPort
	if port == 0 {
		port = a.cfg.Server.Port
	}
	settings, err := a.cfg.Settings()
	if err != nil {
		return err
	}
	settings.BPM = api.DefaultScaleBPM

	opts := api.Options{
		Converter: a.converter().GetOptions(),
		Settings:  settings,
		Waveform:  a.cfg.Waveform(),
		Volume:    a.cfg.Volume(),
	}
	lib, err := library.Open(a.cfg.Library.Path)
	if err != nil {
		logger.Warnf("library disabled: %v", err)
	} else {
		defer lib.Close()
		opts.Library = lib
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Starting wavetone API server on port %d...\n", port)
	return api.StartServer(port, opts)
}

// resolve finds a built-in piece, a score or MIDI file, or a saved score
func (a *app) resolve(ctx context.Context, target string) (*score.Score, error) {
	if pieces.Exists(target) {
		return pieces.Get(target)
	}
	if _, err := os.Stat(target); err == nil {
		return a.converter().LoadScore(target)
	}

	lib, err := library.Open(a.cfg.Library.Path)
	if err != nil {
		return nil, err
	}
	defer lib.Close()

	entry, err := lib.Get(ctx, target)
	if errors.Is(err, library.ErrNotFound) {
		return nil, fmt.Errorf("%q is not a piece, a file or a saved score", target)
	}
	if err != nil {
		return nil, err
	}
	s, err := entry.Score()
	if err != nil {
		return nil, err
	}
	if err := lib.MarkPlayed(ctx, entry.ID); err != nil {
		logger.Warnf("failed to update play count: %v", err)
	}
	return s, nil
}

// converter builds a converter from config and the --waveform flag
func (a *app) converter() *converter.Converter {
	opts := converter.DefaultOptions()
	opts.Render = a.cfg.Render()
	opts.Sequence.Release = a.cfg.Release()
	if a.waveform != "" {
		w := a.cfg.Waveform()
		opts.Sequence.Waveform = &w
	}
	return converter.New(opts)
}

// output plays the score, or writes it when --output is set
func (a *app) output(cmd *cobra.Command, s *score.Score) error {
	if a.outputFile != "" {
		return a.write(cmd, s, a.outputFile)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Playing %s (%s) on %s\n", s.Title, s.Duration().Round(time.Millisecond), a.cfg.Audio.Backend)
	err := a.play(ctx, s, nil)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// play sequences and renders a score to the configured backend
func (a *app) play(ctx context.Context, s *score.Score, waveform *synth.Waveform) error {
	opts := a.converter().GetOptions()
	if waveform != nil {
		opts.Sequence.Waveform = waveform
	}

	tl, err := sequencer.Sequence(s, opts.Sequence)
	if err != nil {
		return err
	}
	r, err := sequencer.NewRenderer(tl, opts.Render)
	if err != nil {
		return err
	}

	backend, err := audio.NewBackend(a.cfg.Audio.Backend)
	if err != nil {
		return err
	}
	defer backend.Close()

	logger.Debugf("playing %q: %d events, %d frames on %s", s.Title, tl.Len(), r.Len(), backend.Name())
	if err := backend.Play(ctx, r); err != nil {
		return err
	}
	return r.Err()
}

// write encodes the score in the format given by the file extension
func (a *app) write(cmd *cobra.Command, s *score.Score, path string) error {
	format := converter.DetectFormat(path)
	if format == converter.FormatUnknown {
		return fmt.Errorf("%s: unknown output format, use .wav, .mid or .score", path)
	}
	data, err := a.converter().Encode(s, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, %s)\n", path, humanize.Bytes(uint64(len(data))), s.Duration().Round(time.Millisecond))
	return nil
}

func (a *app) openLibrary() (*library.Library, error) {
	lib, err := library.Open(a.cfg.Library.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open library: %w", err)
	}
	return lib, nil
}

func (a *app) runLibraryAdd(cmd *cobra.Command, args []string) error {
	s, err := a.converter().LoadScore(args[0])
	if err != nil {
		return err
	}
	title := a.title
	if title == "" {
		title = s.Title
	}

	lib, err := a.openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	entry, err := lib.Save(cmd.Context(), title, score.Format(s))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %q as %s\n", entry.Title, entry.ID)
	return nil
}

func (a *app) runLibraryList(cmd *cobra.Command, args []string) error {
	lib, err := a.openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	entries, err := lib.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No saved scores")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPARTS\tBPM\tLENGTH\tPLAYS\tADDED")
	for _, e := range entries {
		length := time.Duration(e.Seconds * float64(time.Second)).Round(time.Second)
		fmt.Fprintf(w, "%s\t%s\t%d\t%g\t%s\t%s\t%s\n",
			e.ID[:8], e.Title, e.Parts, e.BPM, length, humanize.Comma(int64(e.PlayCount)), humanize.Time(e.CreatedAt))
	}
	return w.Flush()
}

func (a *app) runLibraryShow(cmd *cobra.Command, args []string) error {
	lib, err := a.openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	entry, err := lib.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), entry.Source)
	return nil
}

func (a *app) runLibraryRemove(cmd *cobra.Command, args []string) error {
	lib, err := a.openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	if err := lib.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
	return nil
}

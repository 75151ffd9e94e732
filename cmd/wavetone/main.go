// Package main is the entry point for the wavetone CLI
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/james-see/wavetone/pkg/config"
	"github.com/james-see/wavetone/pkg/logger"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	err := newRootCmd().Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds flag values and the loaded configuration
type app struct {
	configPath string
	logLevel   string
	backend    string
	waveform   string
	outputFile string
	bpm        float64
	beat       string
	title      string
	serverPort int

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "wavetone",
		Short: "A waveform synthesizer that plays scales and simple piano pieces",
		Long: `wavetone synthesizes sine, square, triangle and sawtooth waves and
sequences them into scales and simple piano pieces. It plays through the
sound card or writes WAV, MIDI and score files.

Examples:
  wavetone scale
  wavetone scale A3 minor-harmonic 90 -w square
  wavetone tone A4 --beat w
  wavetone play ode-to-joy -w triangle
  wavetone render twinkle -o twinkle.wav
  wavetone import song.mid -o song.score
  wavetone tui
  wavetone serve --port 8080`,
		Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default ~/.wavetone/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&a.backend, "backend", "", "Audio backend: oto, malgo, discard")
	rootCmd.PersistentFlags().StringVarP(&a.waveform, "waveform", "w", "", "Waveform: sine, square, triangle, sawtooth")

	scaleCmd := &cobra.Command{
		Use:   "scale [note] [scale] [bpm]",
		Short: "Play a scale up and down with a second voice an octave below",
		Long: `Play a scale from the given tonic up one octave and back down, in quarter
notes, doubled an octave below. Defaults: C4 major at 60 bpm.`,
		Args: cobra.MaximumNArgs(3),
		RunE: a.runScale,
	}
	scaleCmd.Flags().StringVarP(&a.outputFile, "output", "o", "", "Write to a .wav, .mid or .score file instead of playing")

	toneCmd := &cobra.Command{
		Use:   "tone <note>",
		Short: "Play a single note",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runTone,
	}
	toneCmd.Flags().StringVar(&a.beat, "beat", "w", "Note length: w, h, q, e, s, t, x")
	toneCmd.Flags().Float64Var(&a.bpm, "bpm", 0, "Tempo (default from config)")
	toneCmd.Flags().StringVarP(&a.outputFile, "output", "o", "", "Write to a .wav, .mid or .score file instead of playing")

	playCmd := &cobra.Command{
		Use:   "play <piece|file|library title>",
		Short: "Play a built-in piece, a score or MIDI file, or a saved score",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runPlay,
	}
	playCmd.Flags().Float64Var(&a.bpm, "bpm", 0, "Override the tempo")
	playCmd.Flags().StringVarP(&a.outputFile, "output", "o", "", "Write to a .wav, .mid or .score file instead of playing")

	renderCmd := &cobra.Command{
		Use:   "render <piece|file|library title>",
		Short: "Render to a WAV, MIDI or score file",
		Long:  `Renders the input to the format given by the output file extension.`,
		Args:  cobra.ExactArgs(1),
		RunE:  a.runRender,
	}
	renderCmd.Flags().StringVarP(&a.outputFile, "output", "o", "", "Output file path (required)")
	renderCmd.Flags().Float64Var(&a.bpm, "bpm", 0, "Override the tempo")
	_ = renderCmd.MarkFlagRequired("output")

	importCmd := &cobra.Command{
		Use:   "import <input.mid>",
		Short: "Convert a MIDI file to score text",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runImport,
	}
	importCmd.Flags().StringVarP(&a.outputFile, "output", "o", "", "Output .score file path")

	piecesCmd := &cobra.Command{
		Use:   "pieces",
		Short: "List built-in pieces",
		Args:  cobra.NoArgs,
		RunE:  a.runPieces,
	}

	scalesCmd := &cobra.Command{
		Use:   "scales",
		Short: "List scales",
		Args:  cobra.NoArgs,
		RunE:  a.runScales,
	}

	waveformsCmd := &cobra.Command{
		Use:   "waveforms",
		Short: "List waveforms",
		Args:  cobra.NoArgs,
		RunE:  a.runWaveforms,
	}

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "Launch interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE:  a.runTUI,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Args:  cobra.NoArgs,
		RunE:  a.runServe,
	}
	serveCmd.Flags().IntVarP(&a.serverPort, "port", "p", 0, "Server port (default from config, 8080)")

	// Add commands
	rootCmd.AddCommand(scaleCmd)
	rootCmd.AddCommand(toneCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(piecesCmd)
	rootCmd.AddCommand(scalesCmd)
	rootCmd.AddCommand(waveformsCmd)
	rootCmd.AddCommand(a.newLibraryCmd())
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)

	return rootCmd
}

func (a *app) newLibraryCmd() *cobra.Command {
	libraryCmd := &cobra.Command{
		Use:   "library",
		Short: "Manage saved scores",
	}

	addCmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Save a score or MIDI file",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runLibraryAdd,
	}
	addCmd.Flags().StringVar(&a.title, "title", "", "Title (default from the score or file name)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved scores",
		Args:  cobra.NoArgs,
		RunE:  a.runLibraryList,
	}

	showCmd := &cobra.Command{
		Use:   "show <id|title>",
		Short: "Print a saved score",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runLibraryShow,
	}

	removeCmd := &cobra.Command{
		Use:     "remove <id|title>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved score",
		Args:    cobra.ExactArgs(1),
		RunE:    a.runLibraryRemove,
	}

	libraryCmd.AddCommand(addCmd, listCmd, showCmd, removeCmd)
	return libraryCmd
}

// setup loads the config and applies global flags
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.backend != "" {
		cfg.Audio.Backend = a.backend
	}
	if a.waveform != "" {
		cfg.Synth.Waveform = a.waveform
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	if err := logger.Init(logger.Config{Level: cfg.Log.Level, File: cfg.Log.File}); err != nil {
		return err
	}
	a.cfg = cfg
	logger.Debugf("config loaded: backend=%s waveform=%s rate=%d", cfg.Audio.Backend, cfg.Synth.Waveform, cfg.Audio.SampleRate)
	return nil
}

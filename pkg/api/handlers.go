package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/james-see/wavetone/pkg/converter"
	"github.com/james-see/wavetone/pkg/music"
	"github.com/james-see/wavetone/pkg/pieces"
	"github.com/james-see/wavetone/pkg/score"
	"github.com/james-see/wavetone/pkg/sequencer"
	"github.com/james-see/wavetone/pkg/synth"
)

// DefaultScaleBPM is the scale tempo when the request gives none
const DefaultScaleBPM = 60

const (
	defaultScaleTonic = "C4"
	maxUploadBytes    = 4 << 20
)

// RenderRequest asks for a piece or score text to be rendered
type RenderRequest struct {
	Piece    string  `json:"piece,omitempty"`
	Score    string  `json:"score,omitempty"`
	Waveform string  `json:"waveform,omitempty"`
	BPM      float64 `json:"bpm,omitempty"`
	Format   string  `json:"format,omitempty"` // wav (default), midi or score
}

// ScaleRequest asks for a scale to be rendered
type ScaleRequest struct {
	Tonic    string  `json:"tonic,omitempty"`
	Scale    string  `json:"scale,omitempty"`
	BPM      float64 `json:"bpm,omitempty"`
	Waveform string  `json:"waveform,omitempty"`
	Format   string  `json:"format,omitempty"`
}

// listWaveforms godoc
// @Summary List waveforms
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /waveforms [get]
func listWaveforms(c *gin.Context) {
	names := make([]string, 0, 4)
	for _, w := range synth.Waveforms() {
		names = append(names, w.String())
	}
	c.JSON(http.StatusOK, gin.H{"waveforms": names})
}

// listScales godoc
// @Summary List scales
// @Tags info
// @Produce json
// @Router /scales [get]
func listScales(c *gin.Context) {
	type scaleInfo struct {
		Name      string `json:"name"`
		Intervals []int  `json:"intervals"`
	}
	var out []scaleInfo
	for _, s := range music.Scales() {
		intervals := make([]int, len(s.Intervals))
		for i, v := range s.Intervals {
			intervals[i] = int(v)
		}
		out = append(out, scaleInfo{Name: s.Name, Intervals: intervals})
	}
	c.JSON(http.StatusOK, gin.H{"scales": out})
}

// listFormats godoc
// @Summary List supported formats
// @Description Returns a list of supported file formats
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /formats [get]
func listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats":     []string{"score", "midi", "wav"},
		"conversions": converter.GetSupportedConversions(),
	})
}

// listPieces godoc
// @Summary List built-in pieces
// @Tags pieces
// @Produce json
// @Router /pieces [get]
func listPieces(c *gin.Context) {
	list, err := pieces.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pieces": list})
}

// getPiece godoc
// @Summary Get the score text of a built-in piece
// @Tags pieces
// @Produce plain
// @Param name path string true "Piece name"
// @Failure 404 {object} map[string]string
// @Router /pieces/{name} [get]
func getPiece(c *gin.Context) {
	text, err := pieces.Source(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

// handleRender godoc
// @Summary Render a piece or score text
// @Tags render
// @Accept json
// @Produce audio/wav
// @Param request body RenderRequest true "What to render"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /render [post]
func (s *Server) handleRender(c *gin.Context) {
	var req RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	var sc *score.Score
	var err error
	switch {
	case req.Piece != "" && req.Score != "":
		c.JSON(http.StatusBadRequest, gin.H{"error": "set either piece or score, not both"})
		return
	case req.Piece != "":
		sc, err = pieces.Get(req.Piece)
		if errors.Is(err, pieces.ErrUnknownPiece) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
	case req.Score != "":
		sc, err = score.ParseString(req.Score)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "piece or score is required"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.render(c, sc, req.Waveform, req.BPM, req.Format)
}

// handleScale godoc
// @Summary Render a scale walked up and down
// @Tags render
// @Accept json
// @Produce audio/wav
// @Param request body ScaleRequest true "Scale to render"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /scale [post]
func (s *Server) handleScale(c *gin.Context) {
	var req ScaleRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if req.Tonic == "" {
		req.Tonic = defaultScaleTonic
	}
	if req.Scale == "" {
		req.Scale = music.Major.Name
	}

	tonic, err := music.ParseNote(req.Tonic)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	scale, err := music.LookupScale(req.Scale)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	waveform, err := s.waveform(req.Waveform)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sc, err := score.ScaleScore(tonic, scale, s.opts.Settings, waveform, s.opts.Volume)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.render(c, sc, "", req.BPM, req.Format)
}

func (s *Server) waveform(name string) (synth.Waveform, error) {
	if name == "" {
		return s.opts.Waveform, nil
	}
	return synth.ParseWaveform(name)
}

func parseFormat(name string) (converter.Format, error) {
	switch strings.ToLower(name) {
	case "", "wav":
		return converter.FormatWAV, nil
	case "midi", "mid":
		return converter.FormatMIDI, nil
	case "score", "text":
		return converter.FormatScore, nil
	default:
		return converter.FormatUnknown, fmt.Errorf("unsupported format %q", name)
	}
}

func contentType(f converter.Format) (string, string) {
	switch f {
	case converter.FormatMIDI:
		return "audio/midi", ".mid"
	case converter.FormatScore:
		return "text/plain; charset=utf-8", ".score"
	default:
		return "audio/wav", ".wav"
	}
}

// render encodes a score with per-request waveform and tempo overrides
func (s *Server) render(c *gin.Context, sc *score.Score, waveformName string, bpm float64, formatName string) {
	format, err := parseFormat(formatName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if bpm != 0 {
		if err := music.ValidateBPM(bpm); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	opts := s.opts.Converter
	if waveformName != "" {
		w, err := synth.ParseWaveform(waveformName)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		opts.Sequence.Waveform = &w
	}
	if bpm > 0 {
		opts.Sequence.BPM = bpm
		// MIDI and score output carry the tempo in the score itself
		sc.BPM = bpm
	}

	timer := prometheus.NewTimer(s.metrics.renderSeconds)
	data, err := converter.New(opts).Encode(sc, format)
	timer.ObserveDuration()
	if err != nil {
		s.metrics.renderErrors.WithLabelValues(string(format)).Inc()
		c.JSON(renderStatus(err), gin.H{"error": err.Error()})
		return
	}
	s.metrics.renders.WithLabelValues(string(format)).Inc()

	ct, ext := contentType(format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fileName(sc.Title, ext)))
	c.Data(http.StatusOK, ct, data)
}

// renderStatus maps render failures caused by the request to 400
func renderStatus(err error) int {
	switch {
	case errors.Is(err, sequencer.ErrTooLong),
		errors.Is(err, sequencer.ErrNothingToRender),
		errors.Is(err, converter.ErrTempoOutOfRange),
		errors.Is(err, music.ErrInvalidBPM):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func fileName(title, ext string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + 'a' - 'A'
		case r == ' ' || r == '-' || r == '_':
			return '-'
		}
		return -1
	}, title)
	if name == "" {
		name = "wavetone"
	}
	return name + ext
}

// handleMIDIToScore godoc
// @Summary Convert MIDI to score text
// @Tags convert
// @Accept multipart/form-data
// @Produce plain
// @Param file formData file true "MIDI file to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /convert/midi2score [post]
func (s *Server) handleMIDIToScore(c *gin.Context) {
	s.handleConversion(c, converter.FormatMIDI, converter.FormatScore)
}

// handleScoreToMIDI godoc
// @Summary Convert score text to MIDI
// @Tags convert
// @Accept multipart/form-data
// @Produce audio/midi
// @Param file formData file true "Score file to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /convert/score2midi [post]
func (s *Server) handleScoreToMIDI(c *gin.Context) {
	s.handleConversion(c, converter.FormatScore, converter.FormatMIDI)
}

// handleMIDIToWAV godoc
// @Summary Render MIDI to WAV
// @Tags convert
// @Accept multipart/form-data
// @Produce audio/wav
// @Param file formData file true "MIDI file to render"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /convert/midi2wav [post]
func (s *Server) handleMIDIToWAV(c *gin.Context) {
	s.handleConversion(c, converter.FormatMIDI, converter.FormatWAV)
}

// handleScoreToWAV godoc
// @Summary Render score text to WAV
// @Tags convert
// @Accept multipart/form-data
// @Produce audio/wav
// @Param file formData file true "Score file to render"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /convert/score2wav [post]
func (s *Server) handleScoreToWAV(c *gin.Context) {
	s.handleConversion(c, converter.FormatScore, converter.FormatWAV)
}

func (s *Server) handleConversion(c *gin.Context, from, to converter.Format) {
	// Get uploaded file
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer func() { _ = file.Close() }()

	// Read file content
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	conv := converter.New(s.opts.Converter)

	var sc *score.Score
	switch from {
	case converter.FormatMIDI:
		if converter.DetectFormatFromContent(data) != converter.FormatMIDI {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is not a MIDI file"})
			return
		}
		sc, err = conv.MIDIToScore(data)
	default:
		sc, err = score.ParseString(string(data))
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if sc.Title == "" || sc.Title == converter.ImportedTitle {
		sc.Title = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}

	s.render(c, sc, "", 0, string(to))
}

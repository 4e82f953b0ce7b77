// Command glyphdemo draws a text scene with glyphbrush on a headless
// device and reports what was drawn.
//
// Without -scene it draws a centered title in front of a wrapped
// paragraph, relying on the depth buffer rather than queue order. With
// -watch it redraws whenever the scene file changes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/glyphbrush"
)

func main() {
	var (
		scenePath = flag.String("scene", "", "TOML scene file (default: built-in depth scene)")
		frames    = flag.Int("frames", 2, "frames to draw per scene load")
		watch     = flag.Bool("watch", false, "redraw when the scene file changes")
		debug     = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "glyphdemo",
	})
	if *debug {
		logger.SetLevel(log.DebugLevel)
	}
	glyphbrush.SetLogger(slog.New(logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	d := &demo{log: logger, frames: max(*frames, 1)}
	if err := d.run(ctx, *scenePath, *watch); err != nil {
		logger.Fatal("demo failed", "err", err)
	}
}

// demo owns the headless device and the renderer of the current scene.
type demo struct {
	log    *log.Logger
	frames int

	device hal.Device
	queue  hal.Queue
	r      *renderer
}

func (d *demo) run(ctx context.Context, scenePath string, watch bool) error {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	defer instance.Destroy()

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return errors.New("no adapter")
	}
	open, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	defer open.Device.Destroy()
	d.device, d.queue = open.Device, open.Queue
	defer d.closeRenderer()

	if err := d.load(scenePath); err != nil {
		return err
	}
	if !watch {
		return nil
	}
	if scenePath == "" {
		return errors.New("-watch needs -scene")
	}
	return d.watch(ctx, scenePath)
}

// load (re)reads the scene and draws it.
func (d *demo) load(path string) error {
	sc := defaultScene()
	if path != "" {
		var err error
		if sc, err = loadScene(path); err != nil {
			return err
		}
	}
	sections, err := sc.sections()
	if err != nil {
		return err
	}
	fonts, err := readFonts(sc.Fonts)
	if err != nil {
		return err
	}

	d.closeRenderer()
	if d.r, err = newRenderer(d.device, d.queue, sc, fonts); err != nil {
		return err
	}

	for frame := range d.frames {
		if err := d.drawFrame(sc, fonts, sections); err != nil {
			return err
		}
		d.log.Info("frame drawn", "frame", frame, "sections", len(sections))
	}
	for i, s := range sections {
		if r, ok := d.r.brush.GlyphBounds(s); ok {
			d.log.Debug("section bounds", "section", i, "min", r.Min, "max", r.Max, "z", s.Z)
		}
	}
	return nil
}

// drawFrame draws sections once. An atlas too small for the frame is
// replaced by one of the suggested size and the frame is drawn again.
func (d *demo) drawFrame(sc Scene, fonts [][]byte, sections []glyphbrush.Section) error {
	err := d.r.draw(sections)

	var tooSmall *glyphbrush.AtlasTooSmallError
	if !errors.As(err, &tooSmall) {
		return err
	}
	d.log.Warn("growing glyph atlas",
		"from", fmt.Sprintf("%dx%d", tooSmall.Width, tooSmall.Height),
		"to", fmt.Sprintf("%dx%d", tooSmall.SuggestedWidth, tooSmall.SuggestedHeight))

	sc.Atlas = max(tooSmall.SuggestedWidth, tooSmall.SuggestedHeight)
	d.closeRenderer()
	if d.r, err = newRenderer(d.device, d.queue, sc, fonts); err != nil {
		return err
	}
	return d.r.draw(sections)
}

func (d *demo) closeRenderer() {
	if d.r != nil {
		d.r.destroy()
		d.r = nil
	}
}

// watch redraws the scene every time its file is written or replaced.
// The directory is watched since editors often save by renaming.
func (d *demo) watch(ctx context.Context, path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	d.log.Info("watching scene", "path", abs)

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(e.Name) != abs || e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if err := d.load(abs); err != nil {
				d.log.Error("reload failed", "err", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			d.log.Error("watcher", "err", err)
		}
	}
}

func readFonts(paths []string) ([][]byte, error) {
	fonts := [][]byte{goregular.TTF}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read font: %w", err)
		}
		fonts = append(fonts, data)
	}
	return fonts, nil
}

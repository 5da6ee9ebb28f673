package segment

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/config"
	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/detection"
	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/imaging"
)

// PageLoader loads a normalized page. *imaging.PageCache satisfies it.
type PageLoader interface {
	Load(path string, opts imaging.LoadOptions) (*imaging.Page, error)
}

type directLoader struct{}

func (directLoader) Load(path string, opts imaging.LoadOptions) (*imaging.Page, error) {
	return imaging.LoadPage(path, opts)
}

// Result describes one segmented page.
type Result struct {
	Source       string   `json:"source"`
	Dir          string   `json:"dir"`
	ManifestPath string   `json:"manifest"`
	OverlayPath  string   `json:"overlay"`
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	Blocks       Manifest `json:"blocks"`
}

// Segmenter runs the full pipeline: load, detect, assemble, persist.
type Segmenter struct {
	cfg    *config.Config
	log    logrus.FieldLogger
	loader PageLoader
}

// New creates a Segmenter that loads pages straight from disk.
func New(cfg *config.Config, log logrus.FieldLogger) *Segmenter {
	return &Segmenter{cfg: cfg, log: log, loader: directLoader{}}
}

// WithLoader returns a copy of s that loads pages through l.
func (s *Segmenter) WithLoader(l PageLoader) *Segmenter {
	c := *s
	c.loader = l
	return &c
}

// LoadOptions returns the page options derived from the configuration.
func (s *Segmenter) LoadOptions() imaging.LoadOptions {
	return imaging.LoadOptions{DPI: s.cfg.Loader.DPI, MarginRatio: s.cfg.Loader.MarginRatio}
}

// Load reads and normalizes the first page of source.
func (s *Segmenter) Load(source string) (*imaging.Page, error) {
	page, err := s.loader.Load(source, s.LoadOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", source, err)
	}
	s.log.WithFields(logrus.Fields{
		"source": source,
		"dpi":    s.cfg.Loader.DPI,
		"width":  page.Width,
		"height": page.Height,
	}).Debug("page loaded")
	return page, nil
}

// Detect runs the three detectors on page and assembles the manifest.
//
// The detectors share nothing but the immutable page, so they run
// concurrently; the manifest is built once all three have finished.
func (s *Segmenter) Detect(ctx context.Context, page *imaging.Page) (Manifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		views      []detection.BoundingBox
		notes      detection.BoundingBox
		notesOK    bool
		titleBlock detection.BoundingBox
		titleOK    bool
	)

	var g errgroup.Group
	g.Go(func() error {
		views = detection.DetectViews(page.Gray, detection.ViewParamsFrom(s.cfg.Views))
		return nil
	})
	g.Go(func() error {
		notes, notesOK = detection.DetectNotes(page.Gray, detection.NotesParamsFrom(s.cfg.Notes))
		return nil
	})
	g.Go(func() error {
		titleBlock, titleOK = detection.DetectTitleBlock(page.Gray, detection.TitleBlockParamsFrom(s.cfg.TitleBlock))
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d := Detection{Views: views}
	if titleOK {
		d.TitleBlock = &titleBlock
	} else {
		s.log.Info("no title block found")
	}
	if notesOK {
		d.Notes = &notes
	} else {
		s.log.Info("no notes block found")
	}

	m := Assemble(d)
	if err := m.Validate(page.Width, page.Height); err != nil {
		return nil, err
	}
	s.log.WithField("views", len(views)).Debug("detection complete")
	return m, nil
}

// Segment loads source, detects its blocks and persists them into outDir.
func (s *Segmenter) Segment(ctx context.Context, source, outDir string) (*Result, error) {
	style, err := StyleFrom(s.cfg.Overlay)
	if err != nil {
		return nil, err
	}

	page, err := s.Load(source)
	if err != nil {
		return nil, err
	}

	m, err := s.Detect(ctx, page)
	if err != nil {
		return nil, err
	}

	if err := Persist(page, m, outDir, style); err != nil {
		return nil, err
	}
	for _, b := range m {
		s.log.WithFields(logrus.Fields{"block": b.ID, "bbox": b.BBox.String()}).Debug("block written")
	}
	s.log.WithFields(logrus.Fields{"source": source, "blocks": len(m), "dir": outDir}).Info("blocks segmented")

	return &Result{
		Source:       source,
		Dir:          outDir,
		ManifestPath: filepath.Join(outDir, ManifestFile),
		OverlayPath:  filepath.Join(outDir, OverlayFile),
		Width:        page.Width,
		Height:       page.Height,
		Blocks:       m,
	}, nil
}

package main

import (
	"context"
	"flag"
	"image"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"

	"stonktip/pkg/config"
	"stonktip/pkg/logging"
	"stonktip/pkg/reader"
	"stonktip/pkg/recognize"
	"stonktip/pkg/region"
)

// sampleLocales are the sub directories of the samples dir, read in this order.
var sampleLocales = []string{"en", "cn", "kr"}

type summary struct {
	Success int
	Fail    int
	Failed  []string
}

type dryRun struct {
	reader     *reader.Reader
	locator    region.Locator
	samplesDir string
	filter     string
	saveDir    string
	log        *logging.Logger
}

// Main: runs the tip pipeline over sample screenshots and reports success and failure counts.
func main() {
	samples := flag.String("samples", os.Getenv("SAMPLES_DIR"), "samples directory containing en/, cn/ and kr/")
	filter := flag.String("filter", "", "only read images whose path contains this substring")
	saveRegions := flag.String("save-regions", "", "write the located header and content of each image to this directory")
	flag.Parse()
	if *samples == "" {
		log.Fatalf("-samples or SAMPLES_DIR is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	closeLog, err := logging.Setup("info", cfg.LogFile)
	if err != nil {
		log.Fatalf("logging setup: %v", err)
	}
	defer closeLog()

	ctx := context.Background()
	rec, closeRec, err := recognize.New(ctx, recognize.Options{
		Backend:            cfg.Recognizer,
		VisionCredentials:  cfg.VisionCredentials,
		TesseractLanguages: cfg.TesseractLanguages,
		GeminiAPIKey:       cfg.GeminiAPIKey,
		GeminiModel:        cfg.GeminiModel,
	})
	if err != nil {
		log.Fatalf("recognizer: %v", err)
	}
	defer closeRec()
	locator, err := region.New(cfg.LocatorBackend, cfg.Threshold())
	if err != nil {
		log.Fatalf("locator: %v", err)
	}

	d := &dryRun{
		reader:     reader.New(locator, rec, logging.New("tip-reader")),
		locator:    locator,
		samplesDir: *samples,
		filter:     *filter,
		saveDir:    *saveRegions,
		log:        logging.New("dry-run"),
	}
	d.run(ctx)
}

func (d *dryRun) run(ctx context.Context) summary {
	var s summary
	for _, locale := range sampleLocales {
		for _, path := range d.images(filepath.Join(d.samplesDir, locale)) {
			if !strings.Contains(path, d.filter) {
				continue
			}
			d.log.Info("load image", "path", path)
			ok := false
			if img, err := imaging.Open(path); err != nil {
				d.log.Warn("cannot open image", "path", path, "err", err)
			} else {
				d.saveRegions(path, img)
				ok, _ = d.reader.Process(ctx, img)
			}
			if ok {
				s.Success++
				continue
			}
			s.Fail++
			s.Failed = append(s.Failed, strings.TrimPrefix(path, d.samplesDir))
		}
	}
	d.log.Info("completed all samples", "success", s.Success, "fail", s.Fail)
	if s.Fail > 0 {
		d.log.Info("failed images", "images", strings.Join(s.Failed, ", "))
	}
	return s
}

func (d *dryRun) images(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		d.log.Debug("skipping samples dir", "dir", dir, "err", err)
		return nil
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out
}

// saveRegions writes <name>.header.png and <name>.content.png for inspecting the locator.
func (d *dryRun) saveRegions(path string, img image.Image) {
	if d.saveDir == "" {
		return
	}
	header, content, err := d.locator.Locate(img)
	if err != nil {
		d.log.Warn("no regions", "path", path, "err", err)
		return
	}
	if err := os.MkdirAll(d.saveDir, 0o755); err != nil {
		d.log.Error("cannot create region dir", "err", err)
		return
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := imaging.Save(header, filepath.Join(d.saveDir, base+".header.png")); err != nil {
		d.log.Error("save header", "err", err)
	}
	if err := imaging.Save(content, filepath.Join(d.saveDir, base+".content.png")); err != nil {
		d.log.Error("save content", "err", err)
	}
}

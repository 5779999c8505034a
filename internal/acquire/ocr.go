package acquire

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/disintegration/imaging"
)

// ocrPage renders a single PDF page to an image, preprocesses it, and runs
// tesseract over the result.
func (a *Acquirer) ocrPage(ctx context.Context, path string, page int) (string, error) {
	tmpDir, err := os.MkdirTemp("", "cip-ocr-*")
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			a.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", err)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	pageArg := strconv.Itoa(page)
	// pdftoppm -f N -l N -r 300 -png <in.pdf> <tmp/page>
	_, _, err = a.runner.Run(ctx, a.cfg.Pdftoppm,
		"-f", pageArg, "-l", pageArg,
		"-r", strconv.Itoa(a.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return "", fmt.Errorf("pdftoppm: %w", err)
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return "", fmt.Errorf("pdftoppm produced no image for page %d", page)
	}

	processed, err := a.preprocess(matches[0])
	if err != nil {
		a.logger.Warn("image preprocessing failed, using raw render", "page", page, "error", err)
		processed = matches[0]
	}

	return a.tesseract(ctx, processed)
}

// preprocess prepares a rendered page for OCR: grayscale, contrast boost,
// sharpen, then binarize with an automatic threshold. Returns the path of
// the processed image.
func (a *Acquirer) preprocess(imgPath string) (string, error) {
	src, err := imaging.Open(imgPath)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}

	img := imaging.Grayscale(src)
	img = imaging.AdjustContrast(img, 30)
	img = imaging.Sharpen(img, 1.5)
	img = binarize(img)

	processed := imgPath + ".proc.png"
	if err := imaging.Save(img, processed); err != nil {
		return "", fmt.Errorf("failed to save processed image: %w", err)
	}
	return processed, nil
}

func (a *Acquirer) tesseract(ctx context.Context, imgPath string) (string, error) {
	args := []string{imgPath, "stdout", "-l", a.cfg.TesseractLang}
	if a.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(a.cfg.PSM))
	}
	out, _, err := a.runner.Run(ctx, a.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil
}

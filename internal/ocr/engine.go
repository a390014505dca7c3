package ocr

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jinjernot/wg-sub000/internal/adapter"
	"github.com/jinjernot/wg-sub000/internal/logger"
)

// Engine extracts text from receipt images
//
//go:generate mockgen -source=engine.go -destination=../mocks/ocr_engine.go -package=mocks -mock_names=Engine=MockOCREngine
type Engine interface {
	ExtractText(ctx context.Context, imagePath string) (string, error)
}

// Config holds tesseract configuration
type Config struct {
	TesseractPath string
	Language      string
	Timeout       time.Duration
}

type tesseract struct {
	runner adapter.CommandRunner
	config Config
}

// NewTesseractEngine creates an Engine running the tesseract CLI
func NewTesseractEngine(runner adapter.CommandRunner, config Config) Engine {
	if config.TesseractPath == "" {
		config.TesseractPath = "tesseract"
	}
	return &tesseract{runner: runner, config: config}
}

func (t *tesseract) ExtractText(ctx context.Context, imagePath string) (string, error) {
	if t.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.config.Timeout)
		defer cancel()
	}

	args := []string{imagePath, "stdout"}
	if t.config.Language != "" {
		args = append(args, "-l", t.config.Language)
	}

	out, err := t.runner.Run(ctx, t.config.TesseractPath, args)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from %s: %w", imagePath, err)
	}

	text := strings.TrimSpace(string(out))
	logger.DebugCtx(ctx, "Extracted receipt text", zap.String("path", imagePath), zap.Int("length", len(text)))
	return text, nil
}

package blessing

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// fileLoader implements Loader for gzipped blessing files on local disk.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based blessing loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "blessing-loader").Logger(),
	}
}

// Load reads a gzipped file containing one blessing per line.
func (l *fileLoader) Load(ctx context.Context, filePath string) ([]string, error) {
	l.logger.Info().Str("file", filePath).Msg("loading blessing file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open blessing file")
		return nil, fmt.Errorf("failed to open blessing file %s: %w", filePath, err)
	}
	defer file.Close()

	lines, err := readLines(ctx, file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("error reading blessing file")
		return nil, fmt.Errorf("error reading blessing file %s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Int("blessings_loaded", len(lines)).
		Msg("blessing file loaded successfully")

	return lines, nil
}

// readLines decompresses r and returns its non-blank, trimmed lines.
func readLines(ctx context.Context, r io.Reader) ([]string, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// LoadAll loads every path concurrently and returns the built-in blessings
// followed by the loaded ones, without duplicates. If any file fails the
// built-in list is returned on its own.
func LoadAll(ctx context.Context, loader Loader, paths []string, logger zerolog.Logger) []string {
	logger = logger.With().Str("component", "blessing-loader").Logger()

	if len(paths) == 0 {
		return DefaultBlessings()
	}

	results := make([][]string, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			lines, err := loader.Load(gctx, path)
			if err != nil {
				return fmt.Errorf("failed to load blessing file %s: %w", path, err)
			}
			results[i] = lines
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Warn().Err(err).Msg("falling back to built-in blessings")
		return DefaultBlessings()
	}

	merged := DefaultBlessings()
	seen := make(map[string]struct{}, len(merged))
	for _, b := range merged {
		seen[b] = struct{}{}
	}
	for _, lines := range results {
		for _, line := range lines {
			if _, dup := seen[line]; dup {
				continue
			}
			seen[line] = struct{}{}
			merged = append(merged, line)
		}
	}

	logger.Info().
		Int("file_count", len(paths)).
		Int("total_blessings", len(merged)).
		Msg("blessings loaded")

	return merged
}

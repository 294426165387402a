package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
)

// compressedSuffix selects xz compression for the output file.
const compressedSuffix = ".xz"

// writeArtifact writes data to path, or to stdout when path is empty.
func writeArtifact(stdout io.Writer, path string, data []byte) (err error) {
	if path == "" {
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		return nil
	}

	file, err := os.Create(path) //nolint:gosec // path is operator-supplied
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing output file: %w", closeErr)
		}
	}()

	if !strings.HasSuffix(path, compressedSuffix) {
		if _, err := file.Write(data); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
		return nil
	}

	xw, err := xz.NewWriter(file)
	if err != nil {
		return fmt.Errorf("failed to create xz writer: %w", err)
	}
	if _, err := xw.Write(data); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	if err := xw.Close(); err != nil {
		return fmt.Errorf("finishing xz stream: %w", err)
	}
	return nil
}

// digest returns the hex BLAKE3-256 of data.
func digest(data []byte) string {
	b3 := blake3.Sum256(data)
	return hex.EncodeToString(b3[:])
}

package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readYAMLFile decodes the file at path over the values already in cfg.
func readYAMLFile(path string, cfg *Config) error {
	exists, err := fileExists(path)
	if err != nil {
		return err
	}

	if !exists {
		return fmt.Errorf("config file '%s' does not exist", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file '%s': %w", path, err)
	}
	defer func() { _ = file.Close() }()

	if err := decodeYAML(file, cfg); err != nil {
		return fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	return nil
}

// decodeYAML decodes r over cfg. An empty document leaves cfg untouched.
func decodeYAML(r io.Reader, cfg *Config) error {
	decoder := yaml.NewDecoder(stripUTF8BOM(r))
	decoder.KnownFields(true)

	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode YAML: %w", err)
	}

	return nil
}

func fileExists(filePath string) (bool, error) {
	_, err := os.Stat(filePath)
	switch {
	case os.IsNotExist(err):
		return false, nil
	case err == nil:
		return true, nil
	default:
		return false, fmt.Errorf("failed to check for existence of file at path '%s': %w", filePath, err)
	}
}

// stripUTF8BOM consumes a leading UTF-8 BOM, which some editors on Windows write.
func stripUTF8BOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	return br
}

package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// position is a 1-based line and column. Columns count characters, not bytes.
type position struct {
	Line   int
	Column int
}

// parsePosition parses "LINE:COL" or "LINE" (column 1).
func parsePosition(s string) (position, error) {
	lineStr, colStr, hasCol := strings.Cut(s, ":")
	line, err := strconv.Atoi(lineStr)
	if err != nil || line < 1 {
		return position{}, fmt.Errorf("invalid line in position %q", s)
	}
	col := 1
	if hasCol {
		col, err = strconv.Atoi(colStr)
		if err != nil || col < 1 {
			return position{}, fmt.Errorf("invalid column in position %q", s)
		}
	}
	return position{Line: line, Column: col}, nil
}

// cursor converts the column to the 0-based character offset the finder uses.
func (p position) cursor() int {
	return p.Column - 1
}

// maxLineBytes bounds a single source line; data URIs make lines long.
const maxLineBytes = 16 * 1024 * 1024

// forEachLine calls fn with each line of path and its 1-based number until fn
// returns false.
func forEachLine(path string, fn func(n int, line string) bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	n := 0
	for scanner.Scan() {
		n++
		if !fn(n, strings.TrimSuffix(scanner.Text(), "\r")) {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

// readLine returns line n (1-based) of path.
func readLine(path string, n int) (string, error) {
	var (
		text  string
		found bool
	)
	err := forEachLine(path, func(i int, line string) bool {
		if i == n {
			text, found = line, true
			return false
		}
		return true
	})
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("%s has fewer than %d lines", path, n)
	}
	return text, nil
}

// sourceAt resolves the file argument to an absolute path and reads the line
// at pos.
func sourceAt(file string, pos position) (absPath, line string, err error) {
	absPath, err = filepath.Abs(file)
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve %s: %w", file, err)
	}
	line, err = readLine(absPath, pos.Line)
	if err != nil {
		return "", "", err
	}
	return absPath, line, nil
}

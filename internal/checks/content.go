package checks

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxScanLine bounds a single line read by the content helpers
const maxScanLine = 64 * 1024 * 1024

// IsTextFile reports whether the whole file decodes as UTF-8 text
func IsTextFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		c, size, err := r.ReadRune()
		if err == io.EOF {
			return true, nil
		}
		if err != nil {
			return false, err
		}

		// Invalid encodings decode as a one-byte RuneError
		if c == utf8.RuneError && size == 1 {
			return false, nil
		}
	}
}

func scanLines(path string, fn func(n int, line string) bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxScanLine)

	n := 0
	for scanner.Scan() {
		n++
		if !fn(n, scanner.Text()) {
			break
		}
	}

	return scanner.Err()
}

// LineLengthViolations describes every line longer than max characters.
// Trailing whitespace is not counted.
func LineLengthViolations(path string, max int) ([]string, error) {
	var violations []string

	err := scanLines(path, func(n int, line string) bool {
		if utf8.RuneCountInString(strings.TrimRightFunc(line, unicode.IsSpace)) > max {
			violations = append(violations, fmt.Sprintf("Line %d is longer than %d characters.", n, max))
		}
		return true
	})

	return violations, err
}

// FirstDisallowedLine returns the number of the first line holding a character
// outside allowed, compared case-insensitively, or 0 if there is none.
// Header lines starting with '>' are skipped.
func FirstDisallowedLine(path, allowed string) (int, error) {
	allowed = strings.ToUpper(allowed)
	found := 0

	err := scanLines(path, func(n int, line string) bool {
		if strings.HasPrefix(line, ">") {
			return true
		}

		for _, r := range strings.TrimSpace(line) {
			if !strings.ContainsRune(allowed, unicode.ToUpper(r)) {
				found = n
				return false
			}
		}
		return true
	})

	return found, err
}

// EndsWithNewline reports whether the last byte of the file is '\n'.
// An empty file does not end with a newline.
func EndsWithNewline(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, err
	}

	if info.Size() == 0 {
		return false, nil
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return false, err
	}

	return bytes.Equal(last, []byte{'\n'}), nil
}

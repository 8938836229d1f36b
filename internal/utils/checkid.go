package utils

import (
	"path/filepath"
	"strings"
)

// CheckIDSeparator joins a suite name and a check name into a check identifier
const CheckIDSeparator = "::"

// suiteByExtension maps input file extensions to the suite that validates them
var suiteByExtension = map[string]string{
	".fa":    "fasta",
	".fasta": "fasta",
	".fna":   "fasta",
	".faa":   "fasta",
	".vcf":   "vcf",
}

// CheckID builds the identifier for a check within a suite
func CheckID(suite, name string) string {
	return suite + CheckIDSeparator + name
}

// SplitCheckID splits a check identifier into suite and check name.
// An identifier without a separator is treated as a bare check name.
func SplitCheckID(id string) (suite, name string) {
	i := strings.Index(id, CheckIDSeparator)
	if i < 0 {
		return "", id
	}

	return id[:i], id[i+len(CheckIDSeparator):]
}

// InferSuite returns the suite for a file based on its extension, or "" if unknown
func InferSuite(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".gz" {
		ext = strings.ToLower(filepath.Ext(strings.TrimSuffix(path, filepath.Ext(path))))
	}

	return suiteByExtension[ext]
}

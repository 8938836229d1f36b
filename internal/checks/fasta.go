package checks

import (
	"context"
	"errors"
	"fmt"
)

const (
	FastaSuite = "fasta"

	// fastaAlphabet covers both nucleotide and protein sequences
	fastaAlphabet = "ABCDEFGHIKLMNPQRSTUVWXYZ*-"
)

var errNoFile = errors.New("no input file")

func fastaChecks() []Check {
	return []Check{
		{Suite: FastaSuite, Name: "check_if_text_file", Run: checkTextFile},
		{Suite: FastaSuite, Name: "check_line_length", Run: checkLineLength},
		{Suite: FastaSuite, Name: "check_allowed_character", Run: checkAllowedCharacter},
		{Suite: FastaSuite, Name: "check_ends_with_newline", Run: checkEndsWithNewline},
	}
}

func checkTextFile(_ context.Context, env *Env, _ Warn) error {
	if env.File == "" {
		return errNoFile
	}

	ok, err := IsTextFile(env.File)
	if err != nil {
		return err
	}

	if !ok {
		return errors.New("The file is not identified as a text file.")
	}

	return nil
}

// checkLineLength only warns; long lines are legal FASTA
func checkLineLength(_ context.Context, env *Env, warn Warn) error {
	if env.File == "" {
		return errNoFile
	}

	violations, err := LineLengthViolations(env.File, env.MaxLineLength)
	if err != nil {
		return err
	}

	for _, v := range violations {
		warn(v)
	}

	return nil
}

func checkAllowedCharacter(_ context.Context, env *Env, _ Warn) error {
	if env.File == "" {
		return errNoFile
	}

	line, err := FirstDisallowedLine(env.File, fastaAlphabet)
	if err != nil {
		return err
	}

	if line > 0 {
		return fmt.Errorf("Line %d does not match either nucleotide or protein configurations.", line)
	}

	return nil
}

func checkEndsWithNewline(_ context.Context, env *Env, warn Warn) error {
	if env.File == "" {
		return errNoFile
	}

	ok, err := EndsWithNewline(env.File)
	if err != nil {
		return err
	}

	if !ok {
		warn(fmt.Sprintf("The file %s does not end in a newline character.", env.File))
	}

	return nil
}

package checks

const VCFSuite = "vcf"

func vcfChecks() []Check {
	return []Check{
		{Suite: VCFSuite, Name: "check_if_text_file", Run: checkTextFile},
		{Suite: VCFSuite, Name: "check_ends_with_newline", Run: checkEndsWithNewline},
	}
}

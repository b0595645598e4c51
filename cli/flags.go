package cli

import (
	"github.com/cockroachdb/errors"
	goFlags "github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
)

// Flags represents command line flags
type Flags struct {
	Version        bool         `short:"v" long:"version"        description:"Print the program version"`
	LogLevel       logrus.Level `short:"l" long:"logLevel"       description:"Logging level. Can be from 0 (least verbose) to 6 (most verbose)"`
	ProgramCfgPath string       `short:"c" long:"programCfgPath" description:"Program config file path to read from or initialize a default"`
	Output         string       `short:"o" long:"output"         description:"Output file path. Writes to stdout if not set"`
	Zstd           bool         `short:"z" long:"zstd"           description:"Compress output with zstd"`
	Watch          bool         `short:"w" long:"watch"          description:"Re-run the conversion when the input file changes. Requires a file input"`
	Positional     struct {
		Command string `positional-arg-name:"command" description:"One of: fmt, from-yaml, to-yaml, version"`
		File    string `positional-arg-name:"file"    description:"Input file path. Reads stdin if not set or '-'"`
	} `positional-args:"yes"`
}

// Parse returns a structure initialized with command line arguments and error if parsing failed
func Parse() (Flags, error) {
	flags := Flags{
		// Set defaults
		LogLevel:       logrus.InfoLevel,
		ProgramCfgPath: "toon.yaml",
	}
	parser := goFlags.NewParser(&flags, goFlags.Options(goFlags.Default))
	_, err := parser.Parse()
	return flags, errors.Wrap(err, "Parse CLI arguments")
}

// IsErrOfType returns true if <err> is of type <t>
func IsErrOfType(err error, t goFlags.ErrorType) bool {
	goFlagsErr := &goFlags.Error{}
	if ok := errors.As(err, &goFlagsErr); ok && goFlagsErr.Type == t {
		return true
	}
	return false
}

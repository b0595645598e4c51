// toon - TOON codec CLI tool
//
// Usage:
//
//	toon fmt [file]        Reparse TOON and print it in canonical form
//	toon from-yaml [file]  Convert YAML to TOON
//	toon to-yaml [file]    Convert TOON to YAML
//	toon version           Print version info
//
// If no file is given (or the file is "-"), reads from stdin.
// Input ending in zstd-compressed form is decompressed transparently;
// --zstd compresses the output. --watch re-runs the conversion when
// the input file changes.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	goFlags "github.com/jessevdk/go-flags"
	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"

	"github.com/toon-format/toon-go/bridge"
	"github.com/toon-format/toon-go/cfg"
	"github.com/toon-format/toon-go/cli"
	"github.com/toon-format/toon-go/toon"
	"github.com/toon-format/toon-go/util/logger"
)

const version = "0.1.0"

// zstdMagic is the frame header every zstd stream starts with.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

func main() {
	flags, err := cli.Parse()
	if err != nil {
		if cli.IsErrOfType(err, goFlags.ErrHelp) {
			os.Exit(0)
		}
		fatal("%v", err)
	}
	if flags.Version || flags.Positional.Command == "version" {
		fmt.Printf("toon %v\n", version)
		return
	}

	log := logger.New(flags.LogLevel)

	cmd := flags.Positional.Command
	switch cmd {
	case "fmt", "from-yaml", "to-yaml":
	case "":
		fatal("Missing command: fmt, from-yaml, to-yaml or version")
	default:
		fatal("Unknown command: %v", cmd)
	}

	settings, created, err := cfg.Init(log, flags.ProgramCfgPath)
	if err != nil {
		fatal("%v", err)
	}
	if created {
		log.Infof("Created default config at %v", flags.ProgramCfgPath)
	}

	run := func() error {
		input, err := readInput(flags.Positional.File)
		if err != nil {
			return err
		}
		output, err := convert(cmd, input)
		if err != nil {
			return err
		}
		return writeOutput(flags.Output, output, flags.Zstd, settings.ZstdLevel)
	}

	if err := run(); err != nil {
		if !flags.Watch {
			fatal("%v", err)
		}
		log.Errorf("%v", err)
	}

	if flags.Watch {
		if flags.Positional.File == "" || flags.Positional.File == "-" {
			fatal("--watch requires a file input")
		}
		if err := watchLoop(log, flags.Positional.File, settings.WatchDebounce, run); err != nil {
			fatal("%v", err)
		}
	}
}

// convert runs one conversion command over the whole input.
func convert(cmd string, input []byte) ([]byte, error) {
	switch cmd {
	case "fmt":
		v, err := toon.Parse(string(input))
		if err != nil {
			return nil, err
		}
		out, err := toon.Emit(v)
		return []byte(out), err
	case "from-yaml":
		v, err := bridge.FromYAML(input)
		if err != nil {
			return nil, err
		}
		out, err := toon.Emit(v)
		return []byte(out), err
	case "to-yaml":
		v, err := toon.Parse(string(input))
		if err != nil {
			return nil, err
		}
		return bridge.ToYAML(v)
	default:
		return nil, errors.Newf("unknown command %v", cmd)
	}
}

// readInput reads the file (or stdin for "" / "-"), transparently
// decompressing zstd streams.
func readInput(path string) ([]byte, error) {
	var data []byte
	var err error
	if path == "" || path == "-" {
		data, err = io.ReadAll(os.Stdin)
		err = errors.Wrap(err, "Read stdin")
	} else {
		data, err = os.ReadFile(path)
		err = errors.Wrapf(err, "Read %v", path)
	}
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(data, zstdMagic) {
		return data, nil
	}
	dec, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "Open zstd stream")
	}
	defer dec.Close()
	out, err := io.ReadAll(dec)
	return out, errors.Wrap(err, "Decompress input")
}

// writeOutput writes to the path or stdout, optionally compressing.
func writeOutput(path string, data []byte, compress bool, level int) error {
	if compress {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevel(level)))
		if err != nil {
			return errors.Wrap(err, "Open zstd encoder")
		}
		data = enc.EncodeAll(data, nil)
		if err := enc.Close(); err != nil {
			return errors.Wrap(err, "Close zstd encoder")
		}
	}
	if path == "" {
		_, err := os.Stdout.Write(data)
		return errors.Wrap(err, "Write stdout")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "Write %v", path)
}

// watchLoop re-runs the conversion whenever the input file changes.
// Events are debounced since editors save in bursts of writes.
func watchLoop(log *logrus.Logger, path string, debounce time.Duration, run func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "Create file watcher")
	}
	defer watcher.Close()

	// Watch the directory: editors commonly replace the file, which
	// drops a watch registered on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return errors.Wrapf(err, "Watch %v", filepath.Dir(path))
	}
	base := filepath.Base(path)
	log.Infof("Watching %v", path)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				timer.Reset(debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorf("Watcher: %v", err)
		case <-timer.C:
			log.Info("Input changed, re-running conversion")
			if err := run(); err != nil {
				log.Errorf("%v", err)
			}
		}
	}
}

func fatal(format string, args ...any) {
	color.New(color.FgHiRed).Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

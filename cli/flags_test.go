package cli

import (
	"os"
	"testing"

	goFlags "github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	os.Args = []string{""}
	flags, err := Parse()
	assert.NoError(t, err, "should not return error")
	assert.Exactly(t, "toon.yaml", flags.ProgramCfgPath, "flag should have default value")
	assert.Exactly(t, logrus.InfoLevel, flags.LogLevel, "flag should have default value")

	os.Args = []string{"", "--help"}
	_, err = Parse()
	assert.True(t, IsErrOfType(err, goFlags.ErrHelp), "should return help error")

	os.Args = []string{"", "--version"}
	flags, err = Parse()
	assert.NoError(t, err, "should not return error")
	assert.True(t, flags.Version, "flag should be specified")

	os.Args = []string{"", "--logLevel=-1"}
	_, err = Parse()
	assert.Error(t, err, "should return error for negative log level")
	assert.True(t, IsErrOfType(err, goFlags.ErrMarshal), "should return marshal error")

	os.Args = []string{"", "--logLevel=5"}
	flags, err = Parse()
	assert.NoError(t, err, "should not return error")
	assert.Exactly(t, logrus.DebugLevel, flags.LogLevel, "flag should have this value")

	os.Args = []string{"", "--programCfgPath=/cfg/path", "--output=/out/path", "--zstd", "--watch",
		"fmt", "input.toon"}
	flags, err = Parse()
	assert.NoError(t, err, "should not return error")
	assert.Exactly(t, "/cfg/path", flags.ProgramCfgPath, "flag should have this value")
	assert.Exactly(t, "/out/path", flags.Output, "flag should have this value")
	assert.True(t, flags.Zstd, "flag should be specified")
	assert.True(t, flags.Watch, "flag should be specified")
	assert.Exactly(t, "fmt", flags.Positional.Command, "positional should have this value")
	assert.Exactly(t, "input.toon", flags.Positional.File, "positional should have this value")
}

func TestIsErrOfType(t *testing.T) {
	assert.True(t, IsErrOfType(&goFlags.Error{Type: goFlags.ErrUnknown}, goFlags.ErrUnknown))
	assert.False(t, IsErrOfType(&goFlags.Error{Type: goFlags.ErrUnknown}, goFlags.ErrHelp))
}

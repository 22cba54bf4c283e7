package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/fieldflip/internal/core/errs"
	"github.com/zeusync/fieldflip/internal/core/observation"
)

func TestRunMirror(t *testing.T) {
	raw, err := os.ReadFile("testdata/observation.json")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, runMirror(nil, bytes.NewReader(raw), &out))

	o, err := observation.Decode(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, observation.Vec3{-10, 5, 0.3}, o.Ball)
	assert.Equal(t, observation.Score{1, 2}, o.Score)

	// mirroring the file output again restores the original
	path := filepath.Join(t.TempDir(), "mirrored.json")
	require.NoError(t, os.WriteFile(path, out.Bytes(), 0o600))
	var back bytes.Buffer
	require.NoError(t, runMirror([]string{"-in", path}, nil, &back))

	orig, err := observation.Decode(raw)
	require.NoError(t, err)
	restored, err := observation.Decode(back.Bytes())
	require.NoError(t, err)
	assert.Equal(t, orig, restored)

	err = runMirror(nil, strings.NewReader(`{}`), &out)
	assert.ErrorIs(t, err, errs.ErrMissingField)
}

func TestRunMirrorOutputFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mirrored.json")
	require.NoError(t, runMirror([]string{"-in", "testdata/observation.json", "-out", path}, nil, nil))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	o, err := observation.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, observation.Vec3{-10, 5, 0.3}, o.Ball)

	missing := filepath.Join(dir, "no", "such", "dir", "out.json")
	assert.Error(t, runMirror([]string{"-in", "testdata/observation.json", "-out", missing}, nil, nil))
}

func TestRunAction(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runAction([]string{"1", "top_left", "12"}, &out))
	assert.Equal(t, "1\tright\t5\ntop_left\tbottom_right\t6\n12\tshot\t12\n", out.String())

	assert.Error(t, runAction(nil, &out))
	assert.ErrorIs(t, runAction([]string{"40"}, &out), errs.ErrInvalidArgument)

	// a set holding left without right cannot express the mirrored action
	err := runAction([]string{"-config", "testdata/lopsided.yaml", "0", "left"}, &out)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	assert.ErrorContains(t, err, "action 1")
}

func TestRunActions(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runActions(nil, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 20)
	assert.True(t, strings.HasPrefix(lines[0], "# default digest="))
	assert.Equal(t, "0\tidle\t-> idle", lines[1])
	assert.Equal(t, "2\ttop_left\t-> bottom_right\tsticky[1]", lines[3])
	assert.Equal(t, "13\tsprint\t-> sprint\tsticky[8]", lines[14])
}

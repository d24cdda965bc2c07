package main

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nibblify/internal/model"
)

func TestParse_KeepsPositionalOrder(t *testing.T) {
	tests := []struct {
		name      string
		in        []string
		wantPos   []string
		wantLimit int
		wantTitle string
	}{
		{name: "flags first", in: []string{"-title", "x", "3"}, wantPos: []string{"3"}, wantLimit: 20, wantTitle: "x"},
		{name: "id before flags", in: []string{"3", "-title", "x"}, wantPos: []string{"3"}, wantLimit: 20, wantTitle: "x"},
		{name: "words around a flag", in: []string{"foo", "-limit", "5", "bar"}, wantPos: []string{"foo", "bar"}, wantLimit: 5},
		{name: "words between flags", in: []string{"a", "-limit", "5", "b", "-title", "t", "c"}, wantPos: []string{"a", "b", "c"}, wantLimit: 5, wantTitle: "t"},
		{name: "double dash", in: []string{"a", "--", "-limit", "b"}, wantPos: []string{"a", "-limit", "b"}, wantLimit: 20},
		{name: "no args", in: nil, wantPos: nil, wantLimit: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			limit := fs.Int("limit", 20, "")
			title := fs.String("title", "", "")

			pos, err := parse(fs, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPos, pos)
			assert.Equal(t, tt.wantLimit, *limit)
			assert.Equal(t, tt.wantTitle, *title)
		})
	}
}

func TestParse_UnknownFlag(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	_, err := parse(fs, []string{"a", "-nope"})
	assert.Error(t, err)
}

func TestOneArg(t *testing.T) {
	got, err := oneArg([]string{"7"}, "document id")
	require.NoError(t, err)
	assert.Equal(t, "7", got)

	_, err = oneArg([]string{"7", "8"}, "document id")
	assert.ErrorIs(t, err, errUsage)
}

func TestIDList(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var tags idList
	fs.Var(&tags, "tag", "")
	require.NoError(t, fs.Parse([]string{"-tag", "1", "-tag", "7"}))
	assert.Equal(t, idList{model.ID("1"), model.ID("7")}, tags)
	assert.Equal(t, "1,7", tags.String())
}

func TestParseOptionalBool(t *testing.T) {
	v, err := parseOptionalBool("")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = parseOptionalBool("true")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.True(t, *v)

	_, err = parseOptionalBool("maybe")
	assert.Error(t, err)
}

func TestCommandsHaveUsage(t *testing.T) {
	for name, cmd := range commands {
		assert.NotEmpty(t, cmd.usage, name)
		assert.NotEmpty(t, cmd.start, name)
		assert.NotNil(t, cmd.run, name)
	}
}

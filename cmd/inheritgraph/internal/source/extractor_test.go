// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package source

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const robotSource = `"""Robots."""
import threading


class Machine(threading.Thread):
    pass


class LegsMixin:
    def walk(self):
        pass


class Robot(Machine, LegsMixin, metaclass=RobotMeta):
    """A robot."""

    class Config:
        pass


class Store(Generic[T], Mapping[str, int]):
    pass


class Walker(
    Robot,
    LegsMixin,
):
    pass
`

func declMap(decls []Declaration) map[string][]string {
	out := make(map[string][]string, len(decls))
	for _, d := range decls {
		out[d.Name] = d.Bases
	}
	return out
}

func TestLexicalExtractor_Extract(t *testing.T) {
	e := NewLexicalExtractor()

	decls, err := e.Extract(context.Background(), []byte(robotSource), "robots.py")
	require.NoError(t, err)

	got := declMap(decls)
	assert.Equal(t, []string{"threading.Thread"}, got["Machine"])
	assert.Nil(t, got["LegsMixin"])
	assert.Equal(t, []string{"Machine", "LegsMixin"}, got["Robot"])
	assert.Contains(t, got, "Config")
	assert.Equal(t, []string{"Generic", "Mapping"}, got["Store"])
	assert.Equal(t, []string{"Robot", "LegsMixin"}, got["Walker"])

	names := make([]string, 0, len(decls))
	for _, d := range decls {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"Machine", "LegsMixin", "Robot", "Config", "Store", "Walker"}, names)
	assert.Equal(t, 5, decls[0].Line)
	assert.Equal(t, "robots.py", decls[0].File)
}

func TestLexicalExtractor_CallInBaseList(t *testing.T) {
	src := `from collections import namedtuple


class BoardInfo(namedtuple('BoardInfo', ('name', 'pins'))):
    pass


class Foo(Bar):
    pass


class Board(Base, namedtuple("Pin", "a (b) c")):
    pass


class Grid(
    dict,
    Generic[Tuple(int)],
):
    pass
`
	decls, err := NewLexicalExtractor().Extract(context.Background(), []byte(src), "boards.py")
	require.NoError(t, err)

	got := declMap(decls)
	require.Len(t, got, 4)
	assert.Contains(t, got, "BoardInfo")
	assert.Nil(t, got["BoardInfo"])
	assert.Equal(t, []string{"Bar"}, got["Foo"])
	assert.Equal(t, []string{"Base"}, got["Board"])
	assert.Equal(t, []string{"dict", "Generic"}, got["Grid"])
	assert.Equal(t, 4, decls[0].Line)

	// Both extractors agree on call-expression bases.
	syn, err := NewSyntaxExtractor().Extract(context.Background(), []byte(src), "boards.py")
	require.NoError(t, err)
	assert.Equal(t, got, declMap(syn))
}

func TestLexicalExtractor_MalformedHeaders(t *testing.T) {
	src := "class Open(Base\nclass Next(Other):\n    pass\nclass Bare\nclass Called(Base) -> None:\n"
	decls, err := NewLexicalExtractor().Extract(context.Background(), []byte(src), "m.py")
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"Next": {"Other"}}, declMap(decls))
}

func TestScanHeader(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{":", "", true},
		{"(A, B):", "A, B", true},
		{"():", "", true},
		{"(f(x), B) :", "f(x), B", true},
		{"(f(')'), B):", "f(')'), B", true},
		{"(A", "", false},
		{"(A)", "", false},
		{"= 3", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := scanHeader([]byte(tt.in), 0)
		assert.Equalf(t, tt.wantOK, ok, "scanHeader(%q)", tt.in)
		assert.Equalf(t, tt.want, got, "scanHeader(%q)", tt.in)
	}
}

func TestLexicalExtractor_NoDeclarations(t *testing.T) {
	decls, err := NewLexicalExtractor().Extract(context.Background(), []byte("x = 1\n# class Foo(Bar)\n"), "x.py")
	require.NoError(t, err)
	assert.Empty(t, decls)
}

func TestLexicalExtractor_FileTooLarge(t *testing.T) {
	e := NewLexicalExtractor(WithLexicalMaxFileSize(4))
	_, err := e.Extract(context.Background(), []byte("class A: pass"), "a.py")
	assert.True(t, errors.Is(err, ErrFileTooLarge))
}

func TestLexicalExtractor_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLexicalExtractor().Extract(ctx, []byte("class A: pass"), "a.py")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSyntaxExtractor_Extract(t *testing.T) {
	e := NewSyntaxExtractor()

	decls, err := e.Extract(context.Background(), []byte(robotSource), "robots.py")
	require.NoError(t, err)

	got := declMap(decls)
	assert.Equal(t, []string{"threading.Thread"}, got["Machine"])
	assert.Nil(t, got["LegsMixin"])
	assert.Equal(t, []string{"Machine", "LegsMixin"}, got["Robot"])
	assert.Contains(t, got, "Config")
	assert.Equal(t, []string{"Generic", "Mapping"}, got["Store"])
	assert.Equal(t, []string{"Robot", "LegsMixin"}, got["Walker"])
	assert.Equal(t, 5, decls[0].Line)
}

func TestSyntaxExtractor_IgnoresStringsAndComments(t *testing.T) {
	src := "# class Fake(Base):\ndoc = '''\nclass AlsoFake(Base):\n'''\n\n@decorator\nclass Real(Base):\n    pass\n"

	decls, err := NewSyntaxExtractor().Extract(context.Background(), []byte(src), "r.py")
	require.NoError(t, err)
	require.Len(t, decls, 1)
	assert.Equal(t, "Real", decls[0].Name)
	assert.Equal(t, []string{"Base"}, decls[0].Bases)

	// The lexical extractor is permissive and picks up the docstring too.
	lex, err := NewLexicalExtractor().Extract(context.Background(), []byte(src), "r.py")
	require.NoError(t, err)
	assert.Len(t, lex, 2)
}

func TestSyntaxExtractor_InvalidUTF8(t *testing.T) {
	_, err := NewSyntaxExtractor().Extract(context.Background(), []byte{0xff, 0xfe, 0xfd}, "bad.py")
	assert.True(t, errors.Is(err, ErrInvalidContent))
}

func TestSyntaxExtractor_LogsThroughInjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	e, err := NewExtractor(ExtractorTreeSitter, ExtractorOptions{Logger: logger})
	require.NoError(t, err)

	src := "class Broken(:\n    pass\n\nclass Ok(Base):\n    pass\n"
	_, err = e.Extract(context.Background(), []byte(src), "broken.py")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "source contains syntax errors")
	assert.Contains(t, buf.String(), "file=broken.py")
}

func TestNewExtractor(t *testing.T) {
	tests := []struct {
		name     string
		exts     []string
		wantName string
		wantExts []string
		wantErr  bool
	}{
		{name: "", wantName: ExtractorLexical, wantExts: []string{".py", ".pyi"}},
		{name: "lexical", exts: []string{"PY", ".pyx"}, wantName: ExtractorLexical, wantExts: []string{".py", ".pyx"}},
		{name: "tree-sitter", wantName: ExtractorTreeSitter, wantExts: []string{".py", ".pyi"}},
		{name: "Tree-Sitter", exts: []string{"pyi"}, wantName: ExtractorTreeSitter, wantExts: []string{".pyi"}},
		{name: "syntax", wantErr: true},
		{name: "treesitter", wantErr: true},
		{name: "javac", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewExtractor(tt.name, ExtractorOptions{Extensions: tt.exts})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownExtractor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, e.Name())
			assert.Equal(t, tt.wantExts, e.Extensions())
		})
	}
}

func TestCleanBase(t *testing.T) {
	tests := map[string]string{
		"  Base ":              "Base",
		"abc.ABC":              "abc.ABC",
		"metaclass=ABCMeta":    "",
		"*mixins":              "",
		"**kwargs":             "",
		"":                     "",
		"Generic[T]":           "Generic",
		"namedtuple('P', 'x')": "",
		"Generic[Tuple(int)]":  "Generic",
	}
	for in, want := range tests {
		assert.Equalf(t, want, cleanBase(in), "cleanBase(%q)", in)
	}
}

func TestSplitBaseList(t *testing.T) {
	assert.Equal(t, []string{"A", " Mapping[str, int]", " B"}, splitBaseList("A, Mapping[str, int], B"))
	assert.Equal(t, []string{""}, splitBaseList(""))
	assert.Equal(t, []string{"Robot", " Leg", ""}, splitBaseList("Robot, Leg,"))
}

// Package extract pulls success and failure lines out of raw test results.
package extract

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/FUNGYICHEN/AGG/internal/domain"
	"github.com/tidwall/gjson"
)

var newlineRegex = regexp.MustCompile(`\r?\n`)

// Lines holds the flat output of an extraction
type Lines struct {
	Success []string `json:"success"`
	Errors  []string `json:"errors"`
}

// Extractor finds marker lines in structured or plain-text results
type Extractor struct {
	markers domain.Markers
}

// New creates an extractor for the given markers
func New(markers domain.Markers) *Extractor {
	return &Extractor{markers: markers}
}

// Walk calls visit for node and for every object field and array element below it.
func Walk(node gjson.Result, visit func(gjson.Result)) {
	visit(node)
	if node.IsObject() || node.IsArray() {
		node.ForEach(func(_, child gjson.Result) bool {
			Walk(child, visit)
			return true
		})
	}
}

// JSON extracts lines from a nested result tree. Any node may carry
// error.message and/or stdout[].text; nothing else is assumed about the schema.
func (e *Extractor) JSON(data []byte) (Lines, error) {
	var lines Lines
	if !gjson.ValidBytes(data) {
		return lines, fmt.Errorf("invalid JSON input")
	}

	Walk(gjson.ParseBytes(data), func(node gjson.Result) {
		if !node.IsObject() {
			return
		}

		if stdout := node.Get("stdout"); stdout.IsArray() {
			for _, item := range stdout.Array() {
				text := strings.TrimSpace(item.Get("text").String())
				if text != "" && e.markers.IsSuccess(text) {
					lines.Success = append(lines.Success, text)
				}
			}
		}

		msg := node.Get("error.message")
		if msg.Type == gjson.String && e.markers.IsFailure(msg.Str) {
			lines.Errors = append(lines.Errors, splitLines(msg.Str)...)
		}
	})

	return lines, nil
}

// Text extracts marker lines from a rendered report or log
func (e *Extractor) Text(text string) Lines {
	var lines Lines
	for _, line := range splitLines(text) {
		switch {
		case e.markers.IsSuccess(line):
			lines.Success = append(lines.Success, line)
		case e.markers.IsFailure(line):
			lines.Errors = append(lines.Errors, line)
		}
	}
	return lines
}

// File reads a results artifact and extracts it as JSON or plain text
func (e *Extractor) File(path string) (Lines, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Lines{}, fmt.Errorf("read %s: %w", path, err)
	}

	if IsJSON(path, data) {
		lines, err := e.JSON(data)
		if err != nil {
			return Lines{}, fmt.Errorf("parse %s: %w", path, err)
		}
		return lines, nil
	}
	return e.Text(string(data)), nil
}

// IsJSON decides whether an artifact should be walked as a JSON tree
func IsJSON(path string, data []byte) bool {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return true
	}
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

// splitLines returns the trimmed, non-empty lines of s
func splitLines(s string) []string {
	var out []string
	for _, line := range newlineRegex.Split(s, -1) {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Package template parses and evaluates trace message templates. A template
// is literal text with {{...}} placeholders resolving against a captured
// method invocation: {{0}}..{{N}} are arguments, {{this}} the receiver,
// {{_}} the return value and {{methodName}} the invoked method's name. A
// dotted path after the base ({{0.request.uri}}) navigates nested values.
package template

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/probeq/profiledb/pkg/logging"
)

var placeholderPattern = regexp.MustCompile(`\{\{([^}]*)}}`)

// PartType discriminates the parsed template parts.
type PartType int

const (
	PartConstant PartType = iota
	PartThisPath
	PartArgPath
	PartReturnPath
	PartMethodName
)

// Part is one parsed segment of a template.
type Part struct {
	Type     PartType
	Constant string // PartConstant only
	Path     string // remaining dotted path, may be empty
	ArgIndex int    // PartArgPath only
}

// MessageTemplate is a parsed template, ready for repeated evaluation.
type MessageTemplate struct {
	parts  []Part
	logger logging.Logger
}

// Invocation carries the captured values a template evaluates against.
type Invocation struct {
	This        any
	Args        []any
	ReturnValue any
	MethodName  string
}

// Parse compiles a template for a method with argCount parameters. Invalid
// placeholders are warned about once at parse time and render literally.
func Parse(template string, argCount int, logger logging.Logger) *MessageTemplate {
	parts := make([]Part, 0)
	curr := 0
	for _, match := range placeholderPattern.FindAllStringSubmatchIndex(template, -1) {
		if match[0] > curr {
			parts = append(parts, Part{Type: PartConstant, Constant: template[curr:match[0]]})
		}
		path := strings.TrimSpace(template[match[2]:match[3]])
		base, remaining, _ := strings.Cut(path, ".")
		switch {
		case base == "this":
			parts = append(parts, Part{Type: PartThisPath, Path: remaining})
		case isArgIndex(base):
			argNumber, _ := strconv.Atoi(base)
			if argNumber < argCount {
				parts = append(parts, Part{Type: PartArgPath, Path: remaining, ArgIndex: argNumber})
			} else {
				parts = append(parts, Part{Type: PartConstant,
					Constant: fmt.Sprintf("<requested arg index out of bounds: %d>", argNumber)})
			}
		case base == "_":
			parts = append(parts, Part{Type: PartReturnPath, Path: remaining})
		case base == "methodName":
			parts = append(parts, Part{Type: PartMethodName})
		default:
			logger.Warn("invalid template substitution", logging.String("path", path))
			parts = append(parts, Part{Type: PartConstant, Constant: "{{" + path + "}}"})
		}
		curr = match[1]
	}
	if curr < len(template) {
		parts = append(parts, Part{Type: PartConstant, Constant: template[curr:]})
	}
	return &MessageTemplate{parts: parts, logger: logger}
}

func isArgIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Evaluate renders the template against one invocation.
func (t *MessageTemplate) Evaluate(inv Invocation) string {
	var sb strings.Builder
	for _, part := range t.parts {
		switch part.Type {
		case PartConstant:
			sb.WriteString(part.Constant)
		case PartThisPath:
			sb.WriteString(t.evaluatePath(inv.This, part.Path))
		case PartArgPath:
			if part.ArgIndex < len(inv.Args) {
				sb.WriteString(t.evaluatePath(inv.Args[part.ArgIndex], part.Path))
			} else {
				sb.WriteString("null")
			}
		case PartReturnPath:
			sb.WriteString(t.evaluatePath(inv.ReturnValue, part.Path))
		case PartMethodName:
			sb.WriteString(inv.MethodName)
		}
	}
	return sb.String()
}

// Parts exposes the parsed parts, mainly for weaving layers that need to
// know which argument values have to be captured.
func (t *MessageTemplate) Parts() []Part {
	return t.parts
}

// ArgIndexes returns the distinct argument indexes the template references.
func (t *MessageTemplate) ArgIndexes() []int {
	seen := make(map[int]bool)
	indexes := make([]int, 0)
	for _, part := range t.parts {
		if part.Type == PartArgPath && !seen[part.ArgIndex] {
			seen[part.ArgIndex] = true
			indexes = append(indexes, part.ArgIndex)
		}
	}
	return indexes
}

func (t *MessageTemplate) evaluatePath(base any, path string) string {
	if base == nil {
		return "null"
	}
	value, err := resolvePath(base, path)
	if err != nil {
		t.logger.Warn("template evaluation failed",
			logging.String("path", path), logging.Error(err))
		return "<error evaluating: " + err.Error() + ">"
	}
	return valueOf(value)
}

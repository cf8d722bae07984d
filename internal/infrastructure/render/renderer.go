// Package render implements the small, closed template language used by
// the document templates: {{path}} interpolation, {{#if path}} blocks and
// {{#each path}} loops over a uniform value tree. It is intentionally not
// Turing-complete and performs no I/O, so rendering is deterministic.
package render

import (
	"fmt"
	"regexp"
	"strings"
)

// RenderError represents a failure inside the renderer. It is only
// raised for malformed block markers, never for unresolved keys.
type RenderError struct {
	Code    string
	Message string
}

func (e *RenderError) Error() string {
	return e.Message
}

// Error codes for render failures
const (
	ErrCodeUnclosedBlock = "UNCLOSED_BLOCK"
	ErrCodeMalformedTag  = "MALFORMED_TAG"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string) *RenderError {
	return &RenderError{Code: code, Message: message}
}

var interpPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// Engine renders templates against a context tree of
// map[string]any / []any / scalar values.
type Engine struct{}

// NewEngine creates a new template engine
func NewEngine() *Engine {
	return &Engine{}
}

// Render expands the template against the context. Evaluation order:
// #each blocks (inner bodies rendered recursively per element), then
// #if blocks, then remaining interpolations. Unresolved paths expand
// to the empty string.
func (e *Engine) Render(template string, ctx map[string]any) (string, error) {
	return e.render(template, ctx, nil)
}

func (e *Engine) render(s string, ctx map[string]any, this any) (string, error) {
	s, err := e.expandEach(s, ctx, this)
	if err != nil {
		return "", err
	}
	s, err = e.expandIf(s, ctx, this)
	if err != nil {
		return "", err
	}
	return e.expandInterpolations(s, ctx, this), nil
}

// expandEach replaces every {{#each path}}…{{/each}} block with the
// body rendered once per list element, the element bound to "this".
func (e *Engine) expandEach(s string, ctx map[string]any, this any) (string, error) {
	for {
		block, err := findBlock(s, "each")
		if err != nil {
			return "", err
		}
		if block == nil {
			return s, nil
		}

		var out strings.Builder
		out.WriteString(s[:block.start])

		list := toList(resolvePath(block.arg, ctx, this))
		for _, elem := range list {
			rendered, err := e.render(block.body, ctx, elem)
			if err != nil {
				return "", err
			}
			out.WriteString(rendered)
		}

		out.WriteString(s[block.end:])
		s = out.String()
	}
}

// expandIf replaces every {{#if path}}…{{/if}} block with its body when
// the path resolves truthy, or the empty string otherwise. There is no
// else branch.
func (e *Engine) expandIf(s string, ctx map[string]any, this any) (string, error) {
	for {
		block, err := findBlock(s, "if")
		if err != nil {
			return "", err
		}
		if block == nil {
			return s, nil
		}

		var out strings.Builder
		out.WriteString(s[:block.start])

		if isTruthy(resolvePath(block.arg, ctx, this)) {
			rendered, err := e.render(block.body, ctx, this)
			if err != nil {
				return "", err
			}
			out.WriteString(rendered)
		}

		out.WriteString(s[block.end:])
		s = out.String()
	}
}

func (e *Engine) expandInterpolations(s string, ctx map[string]any, this any) string {
	return interpPattern.ReplaceAllStringFunc(s, func(match string) string {
		path := interpPattern.FindStringSubmatch(match)[1]
		return stringify(resolvePath(path, ctx, this))
	})
}

// block is one located {{#tag arg}}…{{/tag}} region of a template.
// start/end span the whole block including both markers.
type block struct {
	arg   string
	body  string
	start int
	end   int
}

// findBlock locates the first block of the given tag, matching its
// closing marker with depth counting so nested blocks of the same tag
// pair up correctly.
func findBlock(s, tag string) (*block, error) {
	openMarker := "{{#" + tag
	closeMarker := "{{/" + tag + "}}"

	start := strings.Index(s, openMarker)
	if start == -1 {
		if strings.Contains(s, closeMarker) {
			return nil, NewRenderError(ErrCodeMalformedTag,
				fmt.Sprintf("closing marker %s without opening block", closeMarker))
		}
		return nil, nil
	}

	tagEnd := strings.Index(s[start:], "}}")
	if tagEnd == -1 {
		return nil, NewRenderError(ErrCodeMalformedTag,
			fmt.Sprintf("unterminated %s marker", openMarker))
	}
	tagEnd += start + 2

	arg := strings.TrimSpace(s[start+len(openMarker) : tagEnd-2])
	if arg == "" {
		return nil, NewRenderError(ErrCodeMalformedTag,
			fmt.Sprintf("%s block is missing its path argument", openMarker))
	}

	// Find the matching close marker at depth zero.
	depth := 1
	pos := tagEnd
	for depth > 0 {
		nextOpen := strings.Index(s[pos:], openMarker)
		nextClose := strings.Index(s[pos:], closeMarker)
		if nextClose == -1 {
			return nil, NewRenderError(ErrCodeUnclosedBlock,
				fmt.Sprintf("unclosed {{#%s %s}} block", tag, arg))
		}
		if nextOpen != -1 && nextOpen < nextClose {
			depth++
			pos += nextOpen + len(openMarker)
			continue
		}
		depth--
		pos += nextClose
		if depth == 0 {
			return &block{
				arg:   arg,
				body:  s[tagEnd:pos],
				start: start,
				end:   pos + len(closeMarker),
			}, nil
		}
		pos += len(closeMarker)
	}
	return nil, nil
}

// resolvePath walks a dotted path. "this" and "this.x" resolve against
// the loop-local element; everything else resolves against the outer
// context. Missing keys yield nil.
func resolvePath(path string, ctx map[string]any, this any) any {
	if path == "this" {
		return this
	}
	if rest, ok := strings.CutPrefix(path, "this."); ok {
		return walk(this, strings.Split(rest, "."))
	}
	return walk(ctx, strings.Split(path, "."))
}

func walk(v any, keys []string) any {
	for _, key := range keys {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v, ok = m[key]
		if !ok {
			return nil
		}
	}
	return v
}

func toList(v any) []any {
	switch val := v.(type) {
	case []any:
		return val
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, m := range val {
			out[i] = m
		}
		return out
	default:
		return nil
	}
}

// isTruthy implements the template truth rule: false, numeric zero,
// empty string, empty list, empty map and missing values are falsy.
func isTruthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case int:
		return val != 0
	case int32:
		return val != 0
	case int64:
		return val != 0
	case float32:
		return val != 0
	case float64:
		return val != 0
	case []any:
		return len(val) > 0
	case []string:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

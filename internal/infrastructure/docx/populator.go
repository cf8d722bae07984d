// Package docx performs placeholder substitution inside Word documents.
// A .docx file is a zip archive of WordprocessingML parts; substitution
// rewrites only the text content of <w:t> elements, so run-level
// formatting (bold, font, colour) is preserved byte-for-byte. Tokens
// split across run boundaries are not substituted; template authors
// must keep each {{KEY}} inside a single run.
package docx

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// PopulationError represents a failure while populating a DOCX
// template. The partial output file is removed before it is returned.
type PopulationError struct {
	Message string
	Cause   error
}

func (e *PopulationError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *PopulationError) Unwrap() error {
	return e.Cause
}

func newPopulationError(message string, cause error) *PopulationError {
	return &PopulationError{Message: message, Cause: cause}
}

var (
	tokenPattern = regexp.MustCompile(`\{\{([A-Za-z0-9_.]+)\}\}`)
	// Parts whose runs are substituted: the body plus every header and
	// footer, including first-page variants. Table cells live inside
	// these parts.
	substitutableParts = regexp.MustCompile(`^word/(document|header\d*|footer\d*)\.xml$`)
	textRunPattern     = regexp.MustCompile(`(?s)(<w:t(?:\s[^>]*)?>)(.*?)(</w:t>)`)
)

// Populator substitutes {{KEY}} tokens in DOCX templates
type Populator struct {
	logger *zap.Logger
}

// NewPopulator creates a new DOCX populator
func NewPopulator(logger *zap.Logger) *Populator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Populator{logger: logger}
}

// Populate writes a copy of the template to outputPath with every
// {{KEY}} token replaced from placeholders. Unknown tokens are left
// untouched; parts without tokens are copied without recompression.
// On failure the partial output file is removed.
func (p *Populator) Populate(templatePath, outputPath string, placeholders map[string]string) error {
	reader, err := zip.OpenReader(templatePath)
	if err != nil {
		return newPopulationError(fmt.Sprintf("cannot open DOCX template %s", templatePath), err)
	}
	defer reader.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return newPopulationError(fmt.Sprintf("cannot create output file %s", outputPath), err)
	}

	if err := p.rewrite(&reader.Reader, out, placeholders); err != nil {
		out.Close()
		os.Remove(outputPath)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(outputPath)
		return newPopulationError("cannot finalise output file", err)
	}

	p.logger.Debug("DOCX populated",
		zap.String("template", templatePath),
		zap.String("output", outputPath),
		zap.Int("placeholders", len(placeholders)))
	return nil
}

func (p *Populator) rewrite(reader *zip.Reader, out io.Writer, placeholders map[string]string) error {
	w := zip.NewWriter(out)

	for _, f := range reader.File {
		if !substitutableParts.MatchString(f.Name) {
			// Raw copy keeps the original compressed bytes intact.
			if err := w.Copy(f); err != nil {
				return newPopulationError(fmt.Sprintf("cannot copy part %s", f.Name), err)
			}
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return newPopulationError(fmt.Sprintf("cannot open part %s", f.Name), err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return newPopulationError(fmt.Sprintf("cannot read part %s", f.Name), err)
		}

		substituted := substituteRuns(string(data), placeholders)

		header := f.FileHeader
		fw, err := w.CreateHeader(&header)
		if err != nil {
			return newPopulationError(fmt.Sprintf("cannot write part %s", f.Name), err)
		}
		if _, err := fw.Write([]byte(substituted)); err != nil {
			return newPopulationError(fmt.Sprintf("cannot write part %s", f.Name), err)
		}
	}

	if err := w.Close(); err != nil {
		return newPopulationError("cannot finalise DOCX archive", err)
	}
	return nil
}

// substituteRuns replaces tokens inside each <w:t> element. Runs whose
// text does not change are emitted byte-identical.
func substituteRuns(part string, placeholders map[string]string) string {
	return textRunPattern.ReplaceAllStringFunc(part, func(run string) string {
		groups := textRunPattern.FindStringSubmatch(run)
		openTag, text, closeTag := groups[1], groups[2], groups[3]

		replaced := tokenPattern.ReplaceAllStringFunc(text, func(token string) string {
			key := tokenPattern.FindStringSubmatch(token)[1]
			value, ok := placeholders[key]
			if !ok {
				return token
			}
			return escapeXML(value)
		})

		if replaced == text {
			return run
		}
		return openTag + replaced + closeTag
	})
}

func escapeXML(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

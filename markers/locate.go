package markers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/roadside/script"
)

// ErrNoMarkersFound matches every *NoMarkersFoundError via errors.Is.
var ErrNoMarkersFound = errors.New("no markers found")

// NoMarkersFoundError reports a page where no script block yielded a marker.
// This usually means the site's page layout changed.
type NoMarkersFoundError struct {
	Scripts     int
	ParseErrors []error
	Malformed   int
}

func (e *NoMarkersFoundError) Error() string {
	msg := fmt.Sprintf("no markers found in %d script block(s)", e.Scripts)
	if len(e.ParseErrors) > 0 {
		msg += fmt.Sprintf(", %d failed to parse", len(e.ParseErrors))
	}
	if e.Malformed > 0 {
		msg += fmt.Sprintf(", %d malformed call(s)", e.Malformed)
	}
	return msg
}

func (e *NoMarkersFoundError) Is(target error) bool { return target == ErrNoMarkersFound }

// Unwrap exposes the parse errors of skipped blocks.
func (e *NoMarkersFoundError) Unwrap() []error { return e.ParseErrors }

// PageResult is the outcome of locating markers on one page.
type PageResult struct {
	Markers   []Marker
	Malformed []*MalformedMarkerError

	// Block is the index, among inline script blocks, of the block the
	// markers came from.
	Block int

	// Scanned counts the blocks examined, including Block itself.
	Scanned int

	// Skipped counts blocks that failed to parse.
	Skipped int
}

// scriptTypes are the <script type> values treated as inline JavaScript.
var scriptTypes = map[string]bool{
	"":                         true,
	"text/javascript":          true,
	"application/javascript":   true,
	"application/x-javascript": true,
	"text/ecmascript":          true,
	"application/ecmascript":   true,
}

// Blocks returns the text of every inline script block in document order.
// External scripts (with a src attribute) and non-JavaScript types such as
// JSON data blocks are left out.
func Blocks(doc *goquery.Document) []string {
	var blocks []string
	doc.Find("script").Each(func(i int, s *goquery.Selection) {
		if _, external := s.Attr("src"); external {
			return
		}
		scriptType, _ := s.Attr("type")
		if !scriptTypes[strings.ToLower(strings.TrimSpace(scriptType))] {
			return
		}
		blocks = append(blocks, s.Text())
	})
	return blocks
}

// Locate scans the page's inline scripts in document order and returns the
// markers of the first block that yields at least one. Blocks that fail to
// parse are skipped. If no block yields a marker, Locate returns a
// *NoMarkersFoundError.
func Locate(doc *goquery.Document, name string) (*PageResult, error) {
	blocks := Blocks(doc)
	result := &PageResult{Block: -1}
	var parseErrs []error

	for i, src := range blocks {
		result.Scanned++

		root, err := script.Parse(src)
		if err != nil {
			result.Skipped++
			parseErrs = append(parseErrs, fmt.Errorf("script block %d: %w", i, err))
			continue
		}

		found, malformed, err := Collect(Extract(root, name))
		if err != nil {
			return nil, err
		}
		result.Malformed = append(result.Malformed, malformed...)

		if len(found) > 0 {
			result.Markers = found
			result.Block = i
			return result, nil
		}
	}

	return nil, &NoMarkersFoundError{
		Scripts:     len(blocks),
		ParseErrors: parseErrs,
		Malformed:   len(result.Malformed),
	}
}

// LocateHTML parses raw page markup and runs Locate on it.
func LocateHTML(page string, name string) (*PageResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return Locate(doc, name)
}

// Package regions holds the catalog of region codes the site publishes
// listing pages for.
package regions

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// All is the sentinel meaning every region in the catalog.
const All = "ALL"

// codes is the fixed catalog: US states and DC, then Canadian provinces and
// territories with an X prefix.
var codes = []string{
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "DC", "FL", "GA",
	"HI", "ID", "IL", "IN", "IA", "KS", "KY", "LA", "ME", "MD", "MA",
	"MI", "MN", "MS", "MO", "MT", "NE", "NV", "NH", "NJ", "NM", "NY",
	"NC", "ND", "OH", "OK", "OR", "PA", "RI", "SC", "SD", "TN", "TX",
	"UT", "VT", "VA", "WA", "WV", "WI", "WY", "XAB", "XBC", "XMB",
	"XNB", "XNF", "XNT", "XNS", "XON", "XPQ", "XPE", "XSK", "XYT",
}

// ErrInvalidRegion matches every *InvalidRegionError via errors.Is.
var ErrInvalidRegion = errors.New("invalid region")

// InvalidRegionError reports a requested code outside the catalog.
type InvalidRegionError struct {
	Code string
}

func (e *InvalidRegionError) Error() string {
	return fmt.Sprintf("invalid region: %s", e.Code)
}

func (e *InvalidRegionError) Is(target error) bool { return target == ErrInvalidRegion }

// Codes returns the catalog in its canonical order.
func Codes() []string {
	return slices.Clone(codes)
}

// Valid reports whether code is in the catalog. The All sentinel is not a
// region and is not valid here.
func Valid(code string) bool {
	return slices.Contains(codes, code)
}

// Resolve turns requested codes into the regions to process. Codes are
// upper-cased. No codes, or any code equal to All, selects the whole
// catalog. Otherwise the given order is kept and repeats are dropped. The
// first unknown code is returned as an *InvalidRegionError.
func Resolve(args []string) ([]string, error) {
	if len(args) == 0 {
		return Codes(), nil
	}

	normalized := make([]string, 0, len(args))
	all := false
	for _, arg := range args {
		code := strings.ToUpper(strings.TrimSpace(arg))
		if code == All {
			all = true
			continue
		}
		if !Valid(code) {
			return nil, &InvalidRegionError{Code: arg}
		}
		normalized = append(normalized, code)
	}

	if all {
		return Codes(), nil
	}

	resolved := make([]string, 0, len(normalized))
	for _, code := range normalized {
		if !slices.Contains(resolved, code) {
			resolved = append(resolved, code)
		}
	}
	return resolved, nil
}

// Discover reads region codes from the option values of the site's region
// selector. Each value is a path whose last segment is the code; empty
// segments and the "location" placeholder are skipped.
func Discover(doc *goquery.Document, selector string) []string {
	var found []string
	doc.Find(selector).Each(func(i int, s *goquery.Selection) {
		value, _ := s.Attr("value")
		base := value[strings.LastIndex(value, "/")+1:]
		if base == "" || base == "location" {
			return
		}
		code := strings.ToUpper(base)
		if !slices.Contains(found, code) {
			found = append(found, code)
		}
	})
	return found
}

// Getter fetches a page as text.
type Getter interface {
	Get(ctx context.Context, url string) (string, error)
}

// DiscoverURL fetches the page at url and discovers region codes on it.
func DiscoverURL(ctx context.Context, g Getter, url, selector string) ([]string, error) {
	page, err := g.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return Discover(doc, selector), nil
}

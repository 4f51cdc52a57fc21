// Package waypoints turns markers into GPX waypoints.
package waypoints

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pevans/roadside/markers"
	"github.com/tkrajina/gpxgo/gpx"
)

// TipURLPrefix is the detail-page URL of a marker, minus its identifier.
const TipURLPrefix = "https://www.roadsideamerica.com/tip/"

// Creator is written to the creator attribute of generated documents.
const Creator = "roadside"

// TipURL returns the detail-page URL for a marker identifier with
// surrounding whitespace removed.
func TipURL(uid string) string {
	return strings.TrimSpace(TipURLPrefix + uid)
}

// FromMarker converts a marker into a waypoint.
func FromMarker(m markers.Marker) (gpx.GPXPoint, error) {
	lon, err := strconv.ParseFloat(strings.TrimSpace(m.Longitude), 64)
	if err != nil {
		return gpx.GPXPoint{}, fmt.Errorf("invalid longitude for marker %s: %w", m.UID, err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(m.Latitude), 64)
	if err != nil {
		return gpx.GPXPoint{}, fmt.Errorf("invalid latitude for marker %s: %w", m.UID, err)
	}

	return gpx.GPXPoint{
		Point: gpx.Point{
			Latitude:  lat,
			Longitude: lon,
		},
		Name:        m.Name,
		Description: TipURL(m.UID),
	}, nil
}

// Collection is an append-only, ordered set of waypoints that serializes to a
// single GPX document.
type Collection struct {
	doc gpx.GPX
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{
		doc: gpx.GPX{
			Version: "1.1",
			Creator: Creator,
		},
	}
}

// Append converts m and adds it after every waypoint already present.
func (c *Collection) Append(m markers.Marker) error {
	wpt, err := FromMarker(m)
	if err != nil {
		return err
	}
	c.doc.Waypoints = append(c.doc.Waypoints, wpt)
	return nil
}

// AppendAll appends markers in order. It stops at the first marker that
// cannot be converted; markers before it remain in the collection.
func (c *Collection) AppendAll(ms []markers.Marker) error {
	for _, m := range ms {
		if err := c.Append(m); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of waypoints.
func (c *Collection) Len() int {
	return len(c.doc.Waypoints)
}

// Waypoints returns a copy of the waypoints in insertion order.
func (c *Collection) Waypoints() []gpx.GPXPoint {
	out := make([]gpx.GPXPoint, len(c.doc.Waypoints))
	copy(out, c.doc.Waypoints)
	return out
}

// XML serializes the collection as an indented GPX 1.1 document. No
// timestamp is written, so the same collection always produces the same
// bytes.
func (c *Collection) XML() ([]byte, error) {
	data, err := c.doc.ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize GPX: %w", err)
	}
	return data, nil
}

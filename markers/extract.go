// Package markers finds map-marker registrations in page scripts.
package markers

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/pevans/roadside/script"
)

// DefaultFunc is the function the map pages call to register each marker.
const DefaultFunc = "addMarkerById"

// Argument positions read from a marker-registration call. Position 1 holds
// the map object and is ignored.
const (
	argUID       = 0
	argLongitude = 2
	argLatitude  = 3
	argName      = 4
)

// ErrMalformedMarker matches every *MalformedMarkerError via errors.Is.
var ErrMalformedMarker = errors.New("malformed marker")

// Marker is one point of interest registered by a page script. Fields hold
// the literal argument values verbatim.
type Marker struct {
	UID       string `json:"uid"`
	Longitude string `json:"longitude"`
	Latitude  string `json:"latitude"`
	Name      string `json:"name"`
}

// MalformedMarkerError describes a matching call whose arguments cannot be
// read as a marker.
type MalformedMarkerError struct {
	Func     string
	Position int
	Reason   string
}

func (e *MalformedMarkerError) Error() string {
	return fmt.Sprintf("malformed %s call: argument %d %s", e.Func, e.Position, e.Reason)
}

func (e *MalformedMarkerError) Is(target error) bool { return target == ErrMalformedMarker }

// Extract walks the tree depth-first in pre-order and yields one marker per
// call to the named function. Calls that cannot be read as a marker yield a
// *MalformedMarkerError instead and the walk continues. Arguments of a
// matching call are not searched for further calls.
func Extract(root script.Node, name string) iter.Seq2[Marker, error] {
	return func(yield func(Marker, error) bool) {
		walk(root, name, yield)
	}
}

// walk returns false once the consumer stops the iteration.
func walk(n script.Node, name string, yield func(Marker, error) bool) bool {
	switch n := n.(type) {
	case *script.Call:
		if callee, ok := n.Callee.(*script.Identifier); ok && callee.Name == name {
			m, err := parseMarker(name, n.Args)
			return yield(m, err)
		}
		if !walk(n.Callee, name, yield) {
			return false
		}
		for _, arg := range n.Args {
			if !walk(arg, name, yield) {
				return false
			}
		}
	case *script.Other:
		for _, child := range n.Children {
			if !walk(child, name, yield) {
				return false
			}
		}
	}
	return true
}

func parseMarker(name string, args []script.Node) (Marker, error) {
	values := make(map[int]string, 4)
	for _, pos := range []int{argUID, argLongitude, argLatitude, argName} {
		if pos >= len(args) {
			return Marker{}, &MalformedMarkerError{
				Func:     name,
				Position: pos,
				Reason:   fmt.Sprintf("is missing (call has %d arguments)", len(args)),
			}
		}
		lit, ok := args[pos].(*script.Literal)
		if !ok {
			return Marker{}, &MalformedMarkerError{
				Func:     name,
				Position: pos,
				Reason:   fmt.Sprintf("is %s, want a literal", args[pos].Kind()),
			}
		}
		values[pos] = lit.Value
	}

	for _, pos := range []int{argLongitude, argLatitude} {
		if _, err := strconv.ParseFloat(strings.TrimSpace(values[pos]), 64); err != nil {
			return Marker{}, &MalformedMarkerError{
				Func:     name,
				Position: pos,
				Reason:   fmt.Sprintf("is not a coordinate: %q", values[pos]),
			}
		}
	}

	return Marker{
		UID:       values[argUID],
		Longitude: values[argLongitude],
		Latitude:  values[argLatitude],
		Name:      values[argName],
	}, nil
}

// Collect drains seq, separating markers from malformed calls. Any other
// error stops collection and is returned.
func Collect(seq iter.Seq2[Marker, error]) ([]Marker, []*MalformedMarkerError, error) {
	var found []Marker
	var malformed []*MalformedMarkerError
	for m, err := range seq {
		if err != nil {
			var me *MalformedMarkerError
			if errors.As(err, &me) {
				malformed = append(malformed, me)
				continue
			}
			return found, malformed, err
		}
		found = append(found, m)
	}
	return found, malformed, nil
}

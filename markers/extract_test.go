package markers

import (
	"errors"
	"testing"

	"github.com/pevans/roadside/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: parse a script and collect its markers
func extractAll(t *testing.T, src string) ([]Marker, []*MalformedMarkerError) {
	t.Helper()
	root, err := script.Parse(src)
	require.NoError(t, err, "fixture should parse")
	found, malformed, err := Collect(Extract(root, DefaultFunc))
	require.NoError(t, err)
	return found, malformed
}

// TestExtract_SingleCall verifies fields come from positions 0, 2, 3 and 4
func TestExtract_SingleCall(t *testing.T) {
	found, malformed := extractAll(t, `addMarkerById("123", null, "-71.0", "42.0", "Giant Duck");`)

	assert.Empty(t, malformed)
	require.Len(t, found, 1)
	assert.Equal(t, Marker{
		UID:       "123",
		Longitude: "-71.0",
		Latitude:  "42.0",
		Name:      "Giant Duck",
	}, found[0])
}

// TestExtract_NumericLiteralsVerbatim verifies numbers keep their source text
func TestExtract_NumericLiteralsVerbatim(t *testing.T) {
	found, _ := extractAll(t, `addMarkerById(4521, map, 71.050, 42.30, "Paul Bunyan");`)

	require.Len(t, found, 1)
	assert.Equal(t, "4521", found[0].UID)
	assert.Equal(t, "71.050", found[0].Longitude)
	assert.Equal(t, "42.30", found[0].Latitude)
}

// TestExtract_NoCalls verifies an empty sequence without errors
func TestExtract_NoCalls(t *testing.T) {
	found, malformed := extractAll(t, `var x = 1; console.log("hello", x);`)

	assert.Empty(t, found)
	assert.Empty(t, malformed)
}

// TestExtract_TreeOrder verifies markers come out in script order
func TestExtract_TreeOrder(t *testing.T) {
	src := `
		function initialize() {
			addMarkerById("1", map, "-70", "40", "First");
			if (ready) {
				addMarkerById("2", map, "-71", "41", "Second");
			}
		}
		addMarkerById("3", map, "-72", "42", "Third");
	`
	found, _ := extractAll(t, src)

	require.Len(t, found, 3)
	assert.Equal(t, "1", found[0].UID)
	assert.Equal(t, "2", found[1].UID)
	assert.Equal(t, "3", found[2].UID)
}

// TestExtract_CaseSensitiveName verifies only the exact name matches
func TestExtract_CaseSensitiveName(t *testing.T) {
	found, malformed := extractAll(t, `addmarkerbyid("1", map, "-70", "40", "A"); AddMarkerById("2", map, "-70", "40", "B");`)

	assert.Empty(t, found)
	assert.Empty(t, malformed)
}

// TestExtract_MemberCalleeIgnored verifies obj.addMarkerById does not match
func TestExtract_MemberCalleeIgnored(t *testing.T) {
	found, _ := extractAll(t, `map.addMarkerById("1", map, "-70", "40", "A");`)

	assert.Empty(t, found)
}

// TestExtract_CallsInsideArguments verifies calls nested in other calls are found
func TestExtract_CallsInsideArguments(t *testing.T) {
	found, _ := extractAll(t, `$(document).ready(function() { addMarkerById("9", m, "-1", "2", "Nested"); });`)

	require.Len(t, found, 1)
	assert.Equal(t, "Nested", found[0].Name)
}

// TestExtract_TooFewArguments verifies short calls are skipped, not fatal
func TestExtract_TooFewArguments(t *testing.T) {
	src := `
		addMarkerById("1", map);
		addMarkerById("2", map, "-71", "41", "Good");
	`
	found, malformed := extractAll(t, src)

	require.Len(t, found, 1, "malformed call should not affect other records")
	assert.Equal(t, "2", found[0].UID)

	require.Len(t, malformed, 1)
	assert.Equal(t, argLongitude, malformed[0].Position)
	assert.True(t, errors.Is(malformed[0], ErrMalformedMarker))
	assert.Contains(t, malformed[0].Error(), "call has 2 arguments")
}

// TestExtract_NonLiteralArgument verifies computed arguments are malformed
func TestExtract_NonLiteralArgument(t *testing.T) {
	found, malformed := extractAll(t, `addMarkerById(id, map, "-71", "41", "Name");`)

	assert.Empty(t, found)
	require.Len(t, malformed, 1)
	assert.Equal(t, argUID, malformed[0].Position)
	assert.Contains(t, malformed[0].Error(), "Identifier")
}

// TestExtract_NonNumericCoordinate verifies coordinates must be numbers
func TestExtract_NonNumericCoordinate(t *testing.T) {
	found, malformed := extractAll(t, `addMarkerById("1", map, "west", "41", "Name");`)

	assert.Empty(t, found)
	require.Len(t, malformed, 1)
	assert.Equal(t, argLongitude, malformed[0].Position)
}

// TestExtract_StopsEarly verifies the sequence is lazy
func TestExtract_StopsEarly(t *testing.T) {
	root, err := script.Parse(`
		addMarkerById("1", m, "-70", "40", "A");
		addMarkerById("2", m, "-70", "40", "B");
		addMarkerById("3", m, "-70", "40", "C");
	`)
	require.NoError(t, err)

	var seen []string
	for m, err := range Extract(root, DefaultFunc) {
		require.NoError(t, err)
		seen = append(seen, m.UID)
		if len(seen) == 2 {
			break
		}
	}

	assert.Equal(t, []string{"1", "2"}, seen)
}

// TestExtract_UnknownKindsSkipped verifies traversal over hand-built trees
func TestExtract_UnknownKindsSkipped(t *testing.T) {
	call := &script.Call{
		Callee: &script.Identifier{Name: "addMarkerById"},
		Args: []script.Node{
			&script.Literal{Type: "StringLiteral", Value: "7"},
			&script.Literal{Type: "NullLiteral"},
			&script.Literal{Type: "StringLiteral", Value: "-80.5"},
			&script.Literal{Type: "StringLiteral", Value: "35.25"},
			&script.Literal{Type: "StringLiteral", Value: "Tree"},
		},
	}
	root := &script.Other{Type: "Program", Children: []script.Node{
		&script.Other{Type: "SomeFutureNode"},
		&script.Other{Type: "BlockStatement", Children: []script.Node{call}},
		&script.Identifier{Name: "ignored"},
	}}

	found, malformed, err := Collect(Extract(root, DefaultFunc))
	require.NoError(t, err)
	assert.Empty(t, malformed)
	require.Len(t, found, 1)
	assert.Equal(t, "Tree", found[0].Name)
}

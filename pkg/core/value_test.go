/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: value_test.go
Description: Tests for property values, ordered properties, results, structures and
analyzer errors.
*/

package core_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleascm/hexaminer/pkg/core"
)

func TestPropertiesKeepInsertionOrder(t *testing.T) {
	p := core.NewProperties().
		SetString("zeta", "z").
		SetUint("alpha", 1).
		Set("mid", core.IntValue(-2))
	p.SetString("zeta", "again")

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, p.Keys())
	assert.Equal(t, 3, p.Len())

	v, ok := p.Get("zeta")
	require.True(t, ok)
	assert.Equal(t, "again", v.String())
	assert.False(t, p.Has("missing"))

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":"again","alpha":1,"mid":-2}`, string(out))
}

func TestNilPropertiesAreEmpty(t *testing.T) {
	var p *core.Properties
	assert.Equal(t, 0, p.Len())
	assert.Nil(t, p.Keys())
	assert.False(t, p.Has("x"))
	assert.Equal(t, "{}", p.String())
}

func TestValueKinds(t *testing.T) {
	header := core.NewProperties().SetUint("e_magic", 0x5A4D).SetString("Class", "64-bit")
	list := core.StringList([]string{"DLL", "EXECUTABLE_IMAGE"})

	assert.Equal(t, core.KindString, core.StringValue("x").Kind)
	assert.Equal(t, core.KindList, list.Kind)
	assert.Equal(t, core.KindMap, core.MapValue(header).Kind)
	assert.Equal(t, "map", core.KindMap.String())

	assert.Equal(t, "[DLL, EXECUTABLE_IMAGE]", list.String())
	assert.Equal(t, "{e_magic: 23117, Class: 64-bit}", core.MapValue(header).String())
	assert.Equal(t, "18446744073709551615", core.UintValue(^uint64(0)).String())

	out, err := json.Marshal(core.ListValue(core.MapValue(header), core.IntValue(7)))
	require.NoError(t, err)
	assert.Equal(t, `[{"e_magic":23117,"Class":"64-bit"},7]`, string(out))

	assert.Equal(t, 0, core.MapValue(nil).Map.Len())
}

func TestAnalysisResultHelpers(t *testing.T) {
	r := core.NewAnalysisResult("A", "Thing", 16)
	assert.Equal(t, int64(16), r.Offset)
	assert.Empty(t, r.Structures)

	_, failed := r.Err()
	assert.False(t, failed)

	r.Fail(fmt.Errorf("short read: %w", core.ErrEndOfData), 0.3)
	msg, failed := r.Err()
	assert.True(t, failed)
	assert.Contains(t, msg, "end of data")
	assert.Equal(t, 0.3, r.Confidence)

	e := core.NewErrorResult("Broken", 4, errors.New("boom"))
	assert.Equal(t, core.DataTypeError, e.DataType)
	assert.Equal(t, 0.0, e.Confidence)
	msg, _ = e.Err()
	assert.Equal(t, "boom", msg)

	e = core.NewErrorResult("Broken", 0, nil)
	msg, _ = e.Err()
	assert.Equal(t, core.ErrAnalyzerFailure.Error(), msg)
}

func TestStructure(t *testing.T) {
	s := core.Structure{Name: "DOS Header", Offset: 0x10, Size: 64, Type: "IMAGE_DOS_HEADER"}
	assert.Equal(t, int64(0x50), s.End())
	assert.True(t, s.Contains(0x10))
	assert.True(t, s.Contains(0x4F))
	assert.False(t, s.Contains(0x50))
	assert.Equal(t, "DOS Header @ 0x10 (64 bytes)", s.String())
}

func TestAnalyzerErrorWrapsCause(t *testing.T) {
	cause := fmt.Errorf("truncated: %w", core.ErrEndOfData)
	err := error(core.NewAnalyzerError("PE", cause))

	assert.Equal(t, "PE: truncated: end of data", err.Error())
	assert.ErrorIs(t, err, core.ErrAnalyzerFailure)
	assert.ErrorIs(t, err, core.ErrEndOfData)

	var ae *core.AnalyzerError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "PE", ae.Analyzer)

	bare := core.NewAnalyzerError("X", nil)
	assert.ErrorIs(t, bare, core.ErrAnalyzerFailure)
	assert.Equal(t, "X: analyzer failure", bare.Error())
}

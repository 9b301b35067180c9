package vistra

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubMeasurer lays glyphs out on a fixed 10x10 grid so tests can aim
// clicks at exact lines.
type stubMeasurer struct{}

func (stubMeasurer) MeasureText(s string, scale float32) (float32, float32) {
	return float32(10 * len(s)), 10
}

func (stubMeasurer) LineHeight(scale float32) float32 { return 10 }

func TestTextUiEmitsItems(t *testing.T) {
	ui := NewTextUi(stubMeasurer{})
	ui.BeginFrame(-1, -1, false)

	ui.Text("hello")
	ui.Text("world")

	items := ui.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "hello", items[0].Text)
	assert.Equal(t, "world", items[1].Text)
	assert.Equal(t, float32(10), items[1].Position[1], "lines stack down the screen")
}

func TestTextUiTreeNodeToggles(t *testing.T) {
	ui := NewTextUi(stubMeasurer{})

	ui.BeginFrame(-1, -1, false)
	assert.False(t, ui.TreeNode("cloud1"))
	assert.True(t, strings.HasPrefix(ui.Items()[0].Text, "[+]"))

	// click the node's line to open it
	ui.BeginFrame(5, 5, true)
	assert.True(t, ui.TreeNode("cloud1"))
	ui.TreePop()
	assert.True(t, strings.HasPrefix(ui.Items()[0].Text, "[-]"))

	// stays open on following frames
	ui.BeginFrame(-1, -1, false)
	assert.True(t, ui.TreeNode("cloud1"))
	ui.TreePop()
}

func TestTextUiCheckboxClick(t *testing.T) {
	ui := NewTextUi(stubMeasurer{})

	ui.BeginFrame(-1, -1, false)
	assert.True(t, ui.Checkbox("Enabled", true), "no click leaves the value alone")

	ui.BeginFrame(5, 5, true)
	assert.False(t, ui.Checkbox("Enabled", true), "a click flips the value")
}

func TestTextUiSliderClickSetsValue(t *testing.T) {
	ui := NewTextUi(stubMeasurer{})

	ui.BeginFrame(-1, -1, false)
	assert.Equal(t, float32(0.5), ui.SliderFloat("Radius", 0.5, 0, 1))

	// a click at the left edge of the line drags the value to min
	ui.BeginFrame(0, 5, true)
	assert.InDelta(t, 0, ui.SliderFloat("Radius", 0.5, 0, 1), 1e-5)
}

func TestTextUiPopupFlow(t *testing.T) {
	ui := NewTextUi(stubMeasurer{})
	ui.BeginFrame(-1, -1, false)

	assert.False(t, ui.BeginPopup("Options"), "popup starts closed")

	ui.OpenPopup("Options")
	require.True(t, ui.BeginPopup("Options"))
	ui.MenuItem("Clear quantities")
	ui.EndPopup()

	assert.Equal(t, "- Clear quantities", ui.Items()[0].Text)
}

func TestTextUiScopedIDsKeepNodesApart(t *testing.T) {
	ui := NewTextUi(stubMeasurer{})

	// open "details" under scope a
	ui.BeginFrame(5, 15, true)
	ui.PushID("a")
	ui.Text("header")
	ui.TreeNode("details")
	ui.PopID()

	// the identically labeled node under scope b is unaffected
	ui.BeginFrame(-1, -1, false)
	ui.PushID("b")
	ui.Text("header")
	assert.False(t, ui.TreeNode("details"))
	ui.PopID()
}

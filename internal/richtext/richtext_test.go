package richtext_test

import (
	"planboard/internal/richtext"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const list = `<p>Prep</p><ul data-type="taskList">` +
	`<li data-type="taskItem" data-checked="false"><label><input type="checkbox"><span></span></label><div>Research</div></li>` +
	`<li data-type="taskItem" data-checked="true"><label><input type="checkbox" checked="checked"><span></span></label><div>Interviews</div></li>` +
	`<li data-type="taskItem" data-checked="false"><label><input type="checkbox"><span></span></label><div>Personas</div></li>` +
	`</ul>`

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  just   text ", "just text"},
		{"paragraphs", "<p>Hello <b>world</b></p><p>again</p>", "Hello world again"},
		{"list", list, "Prep Research Interviews Personas"},
		{"unclosed", "<p>broken <i>markup", "broken markup"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, richtext.StripHTML(tt.in))
		})
	}
}

func TestSubtaskProgress(t *testing.T) {
	done, total := richtext.SubtaskProgress(list)
	assert.Equal(t, 1, done)
	assert.Equal(t, 3, total)

	done, total = richtext.SubtaskProgress("<p>no list</p>")
	assert.Zero(t, done)
	assert.Zero(t, total)
}

func TestToggleSubtask_OnlyIndexed(t *testing.T) {
	out, err := richtext.ToggleSubtask(list, 2, true)
	require.NoError(t, err)

	done, total := richtext.SubtaskProgress(out)
	assert.Equal(t, 2, done)
	assert.Equal(t, 3, total)

	out, err = richtext.ToggleSubtask(out, 1, false)
	require.NoError(t, err)
	done, _ = richtext.SubtaskProgress(out)
	assert.Equal(t, 1, done)

	assert.Contains(t, out, "Research")
	assert.Contains(t, out, `data-checked="true"`)
}

func TestToggleSubtask_OutOfRange(t *testing.T) {
	_, err := richtext.ToggleSubtask(list, 3, true)
	assert.ErrorIs(t, err, richtext.ErrNoSubtask)

	_, err = richtext.ToggleSubtask("<p>none</p>", 0, true)
	assert.ErrorIs(t, err, richtext.ErrNoSubtask)
}

package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

type meta struct {
	FromCache bool `json:"fromCache,omitempty"`
}

type step struct {
	Title string `json:"title"`
	Hard  bool   `json:"hard"`
}

type sample struct {
	meta
	Score   int      `json:"score" desc:"number (0-100)"`
	Rating  float64  `json:"rating"`
	Tags    []string `json:"tags" desc:"array of tags"`
	Steps   []step   `json:"steps"`
	Skipped string   `json:"-"`
}

func TestOf_Fields(t *testing.T) {
	s := For[sample]()
	require.Equal(t, "sample", s.Name)
	require.Equal(t, []string{"score", "rating", "tags", "steps"}, s.Names())

	require.Equal(t, TypeInteger, s.Fields[0].Type)
	require.Equal(t, TypeNumber, s.Fields[1].Type)
	require.Equal(t, TypeArray, s.Fields[2].Type)
	require.Equal(t, TypeString, s.Fields[2].Items.Type)

	steps := s.Fields[3]
	require.Equal(t, TypeArray, steps.Type)
	require.Equal(t, TypeObject, steps.Items.Type)
	require.Len(t, steps.Items.Fields, 2)
	require.Equal(t, "title", steps.Items.Fields[0].Name)
	require.Equal(t, TypeBoolean, steps.Items.Fields[1].Type)
}

func TestOf_Pointer(t *testing.T) {
	require.Equal(t, For[sample]().Names(), Of(&sample{}).Names())
}

func TestOf_PanicsOnNonStruct(t *testing.T) {
	require.Panics(t, func() { Of(42) })
}

func TestPromptLines(t *testing.T) {
	want := "- score: number (0-100)\n- rating: number\n- tags: array of tags\n- steps: array"
	require.Equal(t, want, For[sample]().PromptLines())
}

func TestValidate(t *testing.T) {
	s := For[sample]()

	tests := []struct {
		name    string
		in      string
		wantErr string
	}{
		{
			name: "ok",
			in:   `{"score":5,"rating":1.5,"tags":["a"],"steps":[{"title":"x","hard":true}]}`,
		},
		{
			name:    "missing",
			in:      `{"score":5,"rating":1.5,"tags":[]}`,
			wantErr: "steps: missing field",
		},
		{
			name:    "wrong_type",
			in:      `{"score":"5","rating":1.5,"tags":[],"steps":[]}`,
			wantErr: "score: want integer, got string",
		},
		{
			name:    "fractional_integer",
			in:      `{"score":5.5,"rating":1.5,"tags":[],"steps":[]}`,
			wantErr: "score: want integer",
		},
		{
			name:    "nested",
			in:      `{"score":5,"rating":1,"tags":[],"steps":[{"title":1,"hard":false}]}`,
			wantErr: "steps[0].title: want string, got number",
		},
		{
			name:    "extra",
			in:      `{"score":5,"rating":1,"tags":[],"steps":[],"zzz":1,"aaa":2}`,
			wantErr: "$: unexpected fields [aaa zzz]",
		},
		{
			name:    "not_object",
			in:      `[1,2]`,
			wantErr: "$: want object, got array",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v any
			require.NoError(t, json.Unmarshal([]byte(tt.in), &v))
			err := s.Validate(v)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestCoerce(t *testing.T) {
	s := For[sample]()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "fractional_integer_rounds",
			in:   `{"score":82.5,"rating":7.25,"tags":[],"steps":[]}`,
			want: `{"score":83,"rating":7.25,"tags":[],"steps":[]}`,
		},
		{
			name: "numeric_strings",
			in:   `{"score":" 64 ","rating":"8","tags":["9"],"steps":[]}`,
			want: `{"score":64,"rating":8,"tags":["9"],"steps":[]}`,
		},
		{
			name: "nested_objects_untouched_when_well_typed",
			in:   `{"score":1,"rating":2,"tags":[],"steps":[{"title":"3","hard":true}]}`,
			want: `{"score":1,"rating":2,"tags":[],"steps":[{"title":"3","hard":true}]}`,
		},
		{
			name: "non_numeric_string_left_alone",
			in:   `{"score":"high","rating":"NaN","tags":[],"steps":[]}`,
			want: `{"score":"high","rating":"NaN","tags":[],"steps":[]}`,
		},
		{
			name: "not_object",
			in:   `[1.5]`,
			want: `[1.5]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v any
			require.NoError(t, json.Unmarshal([]byte(tt.in), &v))
			b, err := json.Marshal(s.Coerce(v))
			require.NoError(t, err)
			require.JSONEq(t, tt.want, string(b))
		})
	}
}

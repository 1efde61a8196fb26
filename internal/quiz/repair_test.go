package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepair(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "clean array untouched",
			raw:  `[{"question":"q"}]`,
			want: `[{"question":"q"}]`,
		},
		{
			name: "prose and json fence",
			raw:  "Sure! Here you go:\n```json\n[{\"question\":\"2+2?\"}]\n```",
			want: `[{"question":"2+2?"}]`,
		},
		{
			name: "uppercase fence",
			raw:  "```JSON\n[1, 2]\n```",
			want: `[1, 2]`,
		},
		{
			name: "bare fence",
			raw:  "```\n[1]\n```\n",
			want: `[1]`,
		},
		{
			name: "trailing commentary",
			raw:  `[{"a":1}] Let me know if you want more!`,
			want: `[{"a":1}]`,
		},
		{
			name: "nested brackets keep outer span",
			raw:  `Result: [{"options":["x","y"]}] (done)`,
			want: `[{"options":["x","y"]}]`,
		},
		{
			name: "no brackets only trimmed",
			raw:  "  ```json\n{\"question\":\"q\"}\n```  ",
			want: `{"question":"q"}`,
		},
		{
			name: "brackets out of order left alone",
			raw:  `] nothing [`,
			want: `] nothing [`,
		},
		{
			name: "empty",
			raw:  "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Repair(tt.raw))
		})
	}
}

package restore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageFromLine(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		line      string
		wantStage int
		wantOK    bool
	}{
		{
			name:      "stage 1 marker",
			line:      "Running Stage 1: Overall restoration",
			wantStage: 1,
			wantOK:    true,
		},
		{
			name:      "stage 2 marker",
			line:      "Running Stage 2: Scratch detection",
			wantStage: 2,
			wantOK:    true,
		},
		{
			name:      "stage 3 marker with surrounding text",
			line:      "[worker] >>> Running Stage 3: Face Enhancement <<<",
			wantStage: 3,
			wantOK:    true,
		},
		{
			name:      "stage 4 marker",
			line:      "Running Stage 4: Blending the restored image",
			wantStage: 4,
			wantOK:    true,
		},
		{
			name: "ordinary log chatter",
			line: "Now you are processing a.png",
		},
		{
			name: "stage word without marker",
			line: "Finish Stage 1 ...",
		},
		{
			name: "empty line",
			line: "",
		},
		{
			name: "case sensitive",
			line: "running stage 2",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			stage, ok := StageFromLine(tc.line)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantStage, stage)
		})
	}
}

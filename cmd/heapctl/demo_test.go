package main

import (
	"testing"
)

func TestDemoCommand(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		json        bool
		wantContain []string
	}{
		{
			name: "default output shows block chains",
			wantContain: []string{
				"after three allocations",
				"neighbors merge",
				"after reusing part of the hole",
				"after freeing everything",
				"blocks:",
				"stats:",
			},
		},
		{
			name:    "verbose output names each allocation",
			verbose: true,
			wantContain: []string{
				"allocated a at",
				"allocated b at",
				"allocated c at",
				"allocated d at",
			},
		},
		{
			name: "json output",
			json: true,
			wantContain: []string{
				"AllocCalls",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			verbose = tt.verbose
			jsonOut = tt.json

			output, err := captureOutput(t, runDemo)
			if err != nil {
				t.Fatalf("demo failed: %v", err)
			}
			assertContains(t, output, tt.wantContain)
			if tt.json {
				// Strip the step banners before validating the JSON stream
				assertJSON(t, stripBanners(output))
			}
		})
	}
}

func stripBanners(output string) string {
	var out []byte
	skip := false
	for i := 0; i < len(output); i++ {
		if output[i] == '=' && i+1 < len(output) && output[i+1] == '=' {
			skip = true
		}
		if skip {
			if output[i] == '\n' {
				skip = false
			}
			continue
		}
		out = append(out, output[i])
	}
	return string(out)
}

package main

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestConvertCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"legacy", []string{"convert", "-m", "nai-diffusion-3", "1girl,", "<red eyes:1.5>"}, "1girl, {{{{{red eyes}}}}}\n"},
		{"unified", []string{"convert", "-u", "-m", "nai-diffusion-4-5-full", "[[sketch]]"}, "<sketch:0.90>\n0.9::sketch ::\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			convertModel, convertShowUnified = "", false
			var out bytes.Buffer
			rootCmd.SetOut(&out)
			rootCmd.SetArgs(append(tt.args, "--env", filepath.Join(t.TempDir(), "missing.env")))
			if err := rootCmd.Execute(); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if got := out.String(); got != tt.want {
				t.Errorf("output = %q; want %q", got, tt.want)
			}
		})
	}
}

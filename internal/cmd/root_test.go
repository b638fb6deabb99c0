package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}
	valid := writeFile("valid.yaml", "trigger:\n  period: 250ms\n")
	malformed := writeFile("malformed.yaml", "trigger: [\n")

	search := func(path, name string) func() {
		return func() {
			viper.SetConfigName(name)
			viper.SetConfigType("yaml")
			viper.AddConfigPath(path)
		}
	}
	explicit := func(path string) func() {
		return func() { viper.SetConfigFile(path) }
	}

	tests := []struct {
		name       string
		setup      func()
		explicit   bool
		wantErr    bool
		wantPeriod time.Duration
	}{
		{"search path without file", search(filepath.Join(dir, "empty"), "config"), false, false, 0},
		{"search path malformed", search(dir, "malformed"), false, true, 0},
		{"explicit missing file", explicit(filepath.Join(dir, "missing.yaml")), true, true, 0},
		{"explicit malformed", explicit(malformed), true, true, 0},
		{"explicit valid", explicit(valid), true, false, 250 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			tt.setup()

			err := readConfig(tt.explicit)
			if (err != nil) != tt.wantErr {
				t.Fatalf("readConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantPeriod != 0 && viper.GetDuration("trigger.period") != tt.wantPeriod {
				t.Errorf("trigger.period = %v, want %v", viper.GetDuration("trigger.period"), tt.wantPeriod)
			}
		})
	}
}

func TestRootReportsConfigError(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.SetConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	configErr = readConfig(true)
	t.Cleanup(func() { configErr = nil })

	if err := rootCmd.PersistentPreRunE(rootCmd, nil); err == nil {
		t.Error("PersistentPreRunE should report the config read failure")
	}
}

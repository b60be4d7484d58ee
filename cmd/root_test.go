package cmd

import (
	"bytes"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestMain(m *testing.M) {
	// Suppress simulation logs during tests. Set DEBUG_TESTS=1 to see them.
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

// execute runs the CLI with the given arguments and returns its combined
// output. Flag variables persist between invocations, so tests reset the
// ones they depend on.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func resetRunFlags() {
	runConfigPath = ""
	runPreset = ""
	runPresetBody = "adult"
	runAgentCount = 50
}

func TestRootRejectsBadLogLevel(t *testing.T) {
	defer logrus.SetLevel(logrus.WarnLevel)
	resetRunFlags()
	if _, err := execute("scenarios", "--log", "nonsense"); err == nil {
		t.Fatal("expected error for invalid log level")
	}
}

func TestRootHelp(t *testing.T) {
	resetRunFlags()
	out, err := execute("--help", "--log", "warn")
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}
	for _, sub := range []string{"run", "render", "scenarios", "validate"} {
		if !bytes.Contains([]byte(out), []byte(sub)) {
			t.Errorf("help output missing subcommand %q", sub)
		}
	}
}

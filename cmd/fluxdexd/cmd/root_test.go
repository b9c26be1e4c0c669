package cmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fluxdex/fluxdex/cmd/fluxdexd/cmd"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := cmd.NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestQuoteCommand(t *testing.T) {
	out, err := run(t,
		"quote",
		"--config", filepath.Join(t.TempDir(), "absent.toml"),
		"--amount-in", "1",
		"--reserve-in", "1000",
		"--reserve-out", "130000",
	)
	require.NoError(t, err)
	require.Contains(t, out, "amount out: 129")
}

func TestQuoteCommandRejectsZeroAmount(t *testing.T) {
	_, err := run(t,
		"quote",
		"--config", filepath.Join(t.TempDir(), "absent.toml"),
		"--reserve-in", "1000",
		"--reserve-out", "130000",
	)
	require.Error(t, err)
}

func TestConfigCommandShowsOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fluxdex.toml")
	require.NoError(t, os.WriteFile(path, []byte("[engine]\nswap_fee = \"0.001\"\n"), 0o600))

	out, err := run(t, "config", "--config", path)
	require.NoError(t, err)
	require.Contains(t, out, "swap_fee:       0.001")
	require.Contains(t, out, "fee_collector:  amm_fee_collector")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	require.NotEmpty(t, out)
}

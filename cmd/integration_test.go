package cmd

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tabloom-cli/internal/quota"
	"github.com/KaramelBytes/tabloom-cli/internal/session"
)

// resetFlags clears values and Changed state left over from earlier invocations.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(args ...string) error {
	resetFlags(rootCmd)
	cfg, log = nil, nil
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) {
	t.Helper()
	require.NoError(t, execute(args...), "command %v", args)
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	fn()
	_ = w.Close()
	os.Stdout = old
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(b)
}

func isolatedHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeFile(t *testing.T, path, body string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func workingSnapshot(t *testing.T, home string) *session.Snapshot {
	t.Helper()
	snap, err := session.NewStore(filepath.Join(home, ".tabloom", "etl_processed_data.json")).Load()
	require.NoError(t, err)
	return snap
}

func TestCLI_Load_Transform_AddColumn_Dedupe_Export(t *testing.T) {
	home := isolatedHome(t)
	src := writeFile(t, filepath.Join(home, "orders.csv"), "name,qty,price\n alice ,2,1.5\nbob,3,2\n alice ,2,1.5\n")
	out := filepath.Join(home, "out.csv")

	runCmd(t, "load", src)
	runCmd(t, "transform", "--rule", "name:trim", "--rule", "name:titleCase")
	runCmd(t, "add-column", "--name", "total", "--formula", "{qty} * {price}")
	runCmd(t, "dedupe")
	runCmd(t, "export", "--format", "csv", "--output", out)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "name,qty,price,total\nAlice,2,1.5,3\nBob,3,2,6\n", string(b))

	snap := workingSnapshot(t, home)
	assert.Equal(t, src, snap.Source)
	assert.Len(t, snap.Steps, 3)
	assert.Equal(t, "dedupe", snap.Steps[2])
}

func TestCLI_FailedStepKeepsLastGoodTable(t *testing.T) {
	home := isolatedHome(t)
	runCmd(t, "load", writeFile(t, filepath.Join(home, "a.csv"), "x\n1\n2\n"))

	err := execute("add-column", "--name", "y", "--formula", "{x} * (")
	require.Error(t, err)
	err = execute("transform", "--rule", "x:shout")
	require.Error(t, err)

	snap := workingSnapshot(t, home)
	assert.Equal(t, []string{"x"}, snap.Table.Columns)
	assert.Empty(t, snap.Steps)
}

func TestCLI_QuotaBlocksSecondUploadUntilUpgrade(t *testing.T) {
	home := isolatedHome(t)
	t.Setenv("TABLOOM_PAYMENT_KEY_SECRET", "s3cret")
	a := writeFile(t, filepath.Join(home, "a.csv"), "x\n1\n")
	b := writeFile(t, filepath.Join(home, "b.csv"), "y\n2\n")

	runCmd(t, "load", a)
	outText := captureStdout(t, func() { runCmd(t, "load", b) })
	assert.Contains(t, outText, "upload limit reached")
	assert.Equal(t, a, workingSnapshot(t, home).Source)

	require.Error(t, execute("account", "upgrade", "--order-id", "order_1", "--payment-id", "pay_1", "--signature", "bad"))
	runCmd(t, "account", "upgrade", "--order-id", "order_1", "--payment-id", "pay_1", "--signature", quota.Sign("s3cret", "order_1", "pay_1"))
	runCmd(t, "load", b)
	assert.Equal(t, b, workingSnapshot(t, home).Source)

	show := captureStdout(t, func() { runCmd(t, "account", "show") })
	assert.Contains(t, show, "Plan: premium")
	assert.Contains(t, show, "Uploads: 2")

	runCmd(t, "account", "downgrade")
	show = captureStdout(t, func() { runCmd(t, "account", "show") })
	assert.Contains(t, show, "Plan: free")
	assert.Contains(t, show, "Uploads: 2 of 1")
}

func TestCLI_RunPipelineOnSnapshot(t *testing.T) {
	home := isolatedHome(t)
	runCmd(t, "load", writeFile(t, filepath.Join(home, "r.csv"), "region,qty\nnorth,1\n,2\n"))
	pl := writeFile(t, filepath.Join(home, "clean.yaml"), `name: clean
steps:
  - kind: fill_null
    column: region
    value: unknown
  - kind: remove_column
    column: qty
`)
	runCmd(t, "run", pl)

	snap := workingSnapshot(t, home)
	assert.Equal(t, []string{"region"}, snap.Table.Columns)
	assert.Equal(t, "unknown", snap.Table.Rows[1].Get("region").String())
	assert.Equal(t, []string{"pipeline clean"}, snap.Steps)
}

func TestCLI_RunBatchAvoidsOverwrites(t *testing.T) {
	home := isolatedHome(t)
	t.Setenv("TABLOOM_FREE_UPLOAD_LIMIT", "5")
	csv := "col1,col2\nA,1\nA,1\nC,3\n"
	writeFile(t, filepath.Join(home, "d1", "metrics.csv"), csv)
	writeFile(t, filepath.Join(home, "d2", "metrics.csv"), csv)
	writeFile(t, filepath.Join(home, "d2", "notes.txt"), "not a table")
	pl := writeFile(t, filepath.Join(home, "p.yaml"), "steps:\n  - kind: dedupe\n")
	outDir := filepath.Join(home, "out")

	runCmd(t, "run", pl, filepath.Join(home, "d1", "metrics.csv"), filepath.Join(home, "d2", "*"), "--out-dir", outDir, "--quiet")

	for _, name := range []string{"metrics_export.csv", "metrics_export__2.csv"} {
		b, err := os.ReadFile(filepath.Join(outDir, name))
		require.NoError(t, err, name)
		assert.Equal(t, "col1,col2\nA,1\nC,3\n", string(b))
	}
	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	_, err = os.Stat(filepath.Join(home, ".tabloom", "etl_processed_data.json"))
	assert.True(t, os.IsNotExist(err), "batch mode must not touch the working slot")
}

func TestCLI_StatsAndChartsJSON(t *testing.T) {
	home := isolatedHome(t)
	runCmd(t, "load", writeFile(t, filepath.Join(home, "s.json"), `[{"v": 1, "k": "a"}, {"v": 3, "k": null}, {"v": 2, "k": "a"}]`))

	out := captureStdout(t, func() { runCmd(t, "stats", "--json") })
	var st []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	require.Len(t, st, 2)
	assert.Equal(t, "v", st[0]["column"])
	assert.Equal(t, float64(2), st[0]["mean"])
	assert.Equal(t, float64(1), st[1]["nullCount"])

	out = captureStdout(t, func() { runCmd(t, "forecast", "v") })
	assert.Contains(t, out, "next 5 points")
}

func TestCLI_InsightsWithLocalAI(t *testing.T) {
	home := isolatedHome(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]any{"role": "assistant", "content": "AI says hi"},
			"done":    true,
		})
	}))
	defer srv.Close()
	t.Setenv("TABLOOM_AI_PROVIDER", "ollama")
	t.Setenv("TABLOOM_OLLAMA_HOST", srv.URL)

	runCmd(t, "load", writeFile(t, filepath.Join(home, "d.csv"), "a,b\n1,2\n3,4\n"))
	report := filepath.Join(home, "report.md")
	runCmd(t, "insights", "--ai", "--output", report)
	b, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(b), "[DATASET SUMMARY]\nFile: d.csv\n")
	assert.Contains(t, string(b), "[AI INSIGHTS]\nAI says hi\n")

	ans := captureStdout(t, func() { runCmd(t, "ask", "what", "is", "b?") })
	assert.Equal(t, "AI says hi\n", ans)
}

func TestCLI_CommandsNeedSnapshot(t *testing.T) {
	isolatedHome(t)
	err := execute("stats")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "no dataset loaded"))
}

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/immowert/internal/common"
	"github.com/Veraticus/immowert/internal/llm"
	"github.com/Veraticus/immowert/internal/model"
	"github.com/Veraticus/immowert/internal/schema"
	"github.com/Veraticus/immowert/internal/testutil"
	"github.com/Veraticus/immowert/internal/valuation"
)

var addressArgs = []string{
	"--set", "strasse=Invalidenstraße",
	"--set", "hausnummer=117",
	"--set", "plz=10115",
	"--set", "ort=Berlin",
}

type result struct {
	out    string
	errOut string
	err    error
}

// newTestApp isolates config and history in temporary directories and routes
// remote calls to invoker.
func newTestApp(t *testing.T, invoker llm.Invoker) *app {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("IMMOWERT_LOGGING_LEVEL", "error")
	t.Setenv("IMMOWERT_HISTORY_BACKEND", "file")
	t.Setenv("IMMOWERT_HISTORY_PATH", filepath.Join(t.TempDir(), "history"))

	a := newApp()
	a.newInvoker = func(llm.Config) (llm.Invoker, error) {
		return invoker, nil
	}
	return a
}

func run(a *app, stdin string, args ...string) result {
	root := newRootCmd(a)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	a.stdin = strings.NewReader(stdin)

	err := root.ExecuteContext(context.Background())
	return result{out: out.String(), errOut: errOut.String(), err: err}
}

func TestValuateAndHistory(t *testing.T) {
	stub := testutil.Replying(testutil.ValuationReply)
	a := newTestApp(t, stub)

	args := append([]string{"valuate"}, addressArgs...)
	args = append(args, "--set", "bodenrichtwert=350", "--set", "grundstuecksflaeche=500", "--set", "useErtragswertverfahren=ja")

	res := run(a, "", args...)
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "420.000 €")
	assert.Contains(t, res.out, "Im Verlauf gespeichert")
	assert.Equal(t, 1, stub.CallCount())

	res = run(a, "", "history", "list", "--json")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, `"plz": "10115"`)

	entries := listEntries(t, a)
	require.Len(t, entries, 1)
	id := entries[0].ID

	res = run(a, "", "report", id, "--output", "-")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Gesamtbericht")

	res = run(a, "", "report", id, "--procedure", "ertragswertverfahren")
	require.NoError(t, res.err)
	_, err := os.Stat("Ertragswertverfahren_10115_Berlin.md")
	require.NoError(t, err)

	res = run(a, "n\n", "history", "clear")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Nichts gelöscht")
	assert.Len(t, listEntries(t, a), 1)

	res = run(a, "j\n", "history", "clear")
	require.NoError(t, res.err)
	assert.Empty(t, listEntries(t, a))
}

func listEntries(t *testing.T, a *app) []model.HistoryEntry {
	t.Helper()
	require.NoError(t, a.initConfig(nil, nil))
	store, cleanup, err := a.openHistory(context.Background())
	require.NoError(t, err)
	defer cleanup()
	return store.List(context.Background())
}

func TestValuateRejectsWithoutCalling(t *testing.T) {
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{
			name: "no procedure",
			args: append([]string{"valuate"}, addressArgs...),
			msg:  valuation.MsgNoProcedure,
		},
		{
			name: "bad postcode",
			args: []string{"valuate", "--set", "strasse=A", "--set", "hausnummer=1", "--set", "plz=123", "--set", "ort=B", "--set", "useVergleichswertverfahren=ja"},
			msg:  valuation.MsgInvalidInput,
		},
		{
			name: "unknown field",
			args: []string{"valuate", "--set", "zimmer=3"},
			msg:  `Ungültige Zuweisung "zimmer=3"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := testutil.Replying(testutil.ValuationReply)
			res := run(newTestApp(t, stub), "", tt.args...)
			require.Error(t, res.err)
			assert.Equal(t, tt.msg, common.UserMessage(res.err, ""))
			assert.Zero(t, stub.CallCount())
		})
	}
}

func TestValuateLooksUpLandValue(t *testing.T) {
	stub := testutil.NewStubInvoker(
		testutil.Reply{Text: testutil.LandValueReply},
		testutil.Reply{Text: testutil.ValuationReply},
	)
	a := newTestApp(t, stub)

	args := append([]string{"valuate", "--lookup-land-value", "--set", "useErtragswertverfahren=ja"}, addressArgs...)
	res := run(a, "", args...)
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Berlin-Mitte")

	calls := stub.Calls()
	require.Len(t, calls, 2)
	assert.True(t, calls[0].Options.WebSearch)
	assert.Contains(t, calls[1].User, `"bodenrichtwert": 350`)
}

func TestValuateFromYAMLInput(t *testing.T) {
	stub := testutil.Replying(testutil.ValuationReply)
	a := newTestApp(t, stub)

	input := `
address:
  strasse: Invalidenstraße
  hausnummer: "117"
  plz: "10115"
  ort: Berlin
buildingClass: Einfamilienhaus
useErtragswertverfahren: true
`
	res := run(a, input, "valuate", "--input", "-", "--set", "grundstuecksflaeche=500", "--json")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, `"ergebnis": 420000`)

	calls := stub.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].User, `"grundstuecksflaeche": 500`)
	assert.Contains(t, calls[0].User, "Einfamilienhaus")
}

func TestLandValueCommand(t *testing.T) {
	stub := testutil.Replying(testutil.LandValueReply)
	a := newTestApp(t, stub)

	args := append([]string{"landvalue", "--json", "--set", "verkehrswert=450000"}, addressArgs...)
	res := run(a, "", args...)
	require.NoError(t, res.err)
	assert.Contains(t, res.out, `"bodenrichtwert": 350`)

	calls := stub.Calls()
	require.Len(t, calls, 1)
	assert.NotContains(t, calls[0].User, "450", "inactive market value must not be sent")
}

func TestDownstreamFailureShowsGenericMessage(t *testing.T) {
	stub := testutil.Failing(testutil.ErrConnectionRefused)
	a := newTestApp(t, stub)

	args := append([]string{"valuate", "--set", "useVergleichswertverfahren=ja"}, addressArgs...)
	res := run(a, "", args...)
	require.Error(t, res.err)
	assert.Equal(t, valuation.MsgValuationFailed, common.UserMessage(res.err, ""))
	assert.Empty(t, listEntries(t, a))
}

func TestHistoryUnknownEntry(t *testing.T) {
	a := newTestApp(t, testutil.Replying(""))

	for _, args := range [][]string{
		{"history", "show", "missing"},
		{"history", "delete", "missing"},
		{"report", "missing"},
	} {
		res := run(a, "", args...)
		require.Error(t, res.err, args)
		assert.ErrorIs(t, res.err, common.ErrNotFound)
	}
}

func TestHistoryExportWithoutCredentials(t *testing.T) {
	for _, name := range []string{
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH",
		"GOOGLE_SHEETS_CLIENT_ID",
		"GOOGLE_SHEETS_CLIENT_SECRET",
		"GOOGLE_SHEETS_REFRESH_TOKEN",
	} {
		t.Setenv(name, "")
	}
	a := newTestApp(t, testutil.Replying(""))

	res := run(a, "", "history", "export")
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, common.ErrMissingConfig)
	assert.Equal(t, "Google Sheets ist nicht konfiguriert", common.UserMessage(res.err, ""))
}

func TestReportRejectsUnknownProcedure(t *testing.T) {
	a := newTestApp(t, testutil.Replying(""))
	res := run(a, "", "report", "x", "--procedure", "sachwert")
	require.Error(t, res.err)
	assert.Contains(t, common.UserMessage(res.err, ""), "sachwert")
}

func TestVersion(t *testing.T) {
	res := run(newTestApp(t, nil), "", "version")
	require.NoError(t, res.err)
	assert.Equal(t, "immowert dev\n", res.out)
}

func TestInvalidConfig(t *testing.T) {
	a := newTestApp(t, nil)
	t.Setenv("IMMOWERT_HISTORY_BACKEND", "redis")

	res := run(a, "", "history", "list")
	var cfgErr *common.ConfigurationError
	require.ErrorAs(t, res.err, &cfgErr)
	assert.Equal(t, "history.backend", cfgErr.Setting)
}

func TestPrintError(t *testing.T) {
	err := common.NewUserError(valuation.MsgInvalidInput, &schema.ValidationErrors{Errors: []*schema.ValidationError{
		{Field: "address.plz", Reason: "PLZ muss 5-stellig sein"},
	}})

	var buf bytes.Buffer
	printError(&buf, err)
	assert.Contains(t, buf.String(), valuation.MsgInvalidInput)
	assert.Contains(t, buf.String(), "address.plz: PLZ muss 5-stellig sein")

	buf.Reset()
	printError(&buf, errors.New("boom"))
	assert.Contains(t, buf.String(), "boom")
}

func TestReportPath(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "r.md", reportPath("", "r.md"))
	assert.Equal(t, filepath.Join(dir, "r.md"), reportPath(dir, "r.md"))
	assert.Equal(t, "out.md", reportPath("out.md", "r.md"))
}

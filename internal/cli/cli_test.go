package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/immowert/internal/model"
)

// syncBuffer provides thread-safe access to a bytes.Buffer.
type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (s *syncBuffer) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestHandleInterrupts(t *testing.T) {
	output := &syncBuffer{}
	handler := NewInterruptHandler(output)

	ctx, stop := handler.HandleInterrupts(context.Background())
	defer stop()

	select {
	case <-ctx.Done():
		t.Fatal("context should not be canceled initially")
	default:
	}

	handler.signals <- os.Interrupt
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not canceled")
	}

	assert.True(t, handler.WasInterrupted())
	assert.Equal(t, 1, strings.Count(output.String(), "Abgebrochen."))
	assert.Contains(t, output.String(), "nichts gespeichert")
}

func TestHandleInterruptsStop(t *testing.T) {
	handler := NewInterruptHandler(io.Discard)
	ctx, stop := handler.HandleInterrupts(context.Background())
	stop()
	stop()

	<-ctx.Done()
	assert.False(t, handler.WasInterrupted())
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "j\n", want: true},
		{input: "  Ja \n", want: true},
		{input: "yes", want: true},
		{input: "\n", want: false},
		{input: "nein\n", want: false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			got, err := Confirm(context.Background(), strings.NewReader(tt.input), &out, "Verlauf löschen?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Verlauf löschen? [j/N]")
		})
	}
}

func TestConfirmCancelled(t *testing.T) {
	r, w := io.Pipe()
	defer func() { _ = w.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Confirm(ctx, r, io.Discard, "?")
	require.ErrorIs(t, err, ErrInputCancelled)
}

func TestSpin(t *testing.T) {
	var out syncBuffer
	got, err := Spin(context.Background(), &out, "Bewertung läuft", func(context.Context) (int, error) {
		time.Sleep(3 * spinInterval)
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestRenderValuation(t *testing.T) {
	result := model.ValuationResult{
		Ertragswertverfahren: model.ProcedureOutcome{
			Durchfuehrbar: true,
			Rechenweg:     []string{"Reinertrag: 14.400 €"},
			Ergebnis:      model.Float(420000),
			Einheit:       model.UnitEUR,
		},
		UmgekehrtesErtragswertverfahren: model.ProcedureOutcome{Rechenweg: []string{}, Einheit: model.UnitEURPerSquareMeter, Hinweis: "Fläche fehlt"},
		Vergleichswertverfahren:         model.ProcedureOutcome{Rechenweg: []string{}, Einheit: model.UnitEUR},
	}
	req := model.ValuationRequest{UseErtragswertverfahren: true}

	out := RenderValuation(result, req)
	assert.Contains(t, out, "420.000 €")
	assert.Contains(t, out, "1. Reinertrag: 14.400 €")
	assert.Contains(t, out, "Fläche fehlt")
	assert.Contains(t, out, "(nicht angefordert)")
}

func TestRenderHistory(t *testing.T) {
	assert.Contains(t, RenderHistory(nil), "Noch keine Bewertungen")

	entries := []model.HistoryEntry{{
		ID:            "0123456789abcdef",
		Timestamp:     time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Address:       model.Address{Strasse: "A", Hausnummer: "1", PLZ: "10115", Ort: "Berlin"},
		BuildingClass: model.UnspecifiedBuildingClass,
		Results: model.ValuationResult{
			Vergleichswertverfahren: model.ProcedureOutcome{Durchfuehrbar: true, Ergebnis: model.Float(350000), Einheit: model.UnitEUR},
		},
	}}
	out := RenderHistory(entries)
	assert.Contains(t, out, "01234567")
	assert.NotContains(t, out, "0123456789abcdef")
	assert.Contains(t, out, "A 1, 10115 Berlin")
	assert.Contains(t, out, "350.000 €")
	assert.Contains(t, out, "Nicht angegeben")
}

package printer

import (
	"bytes"
	"context"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lines returns the printed text lines without the reset sequence
func lines(d *Document) []string {
	body := bytes.TrimPrefix(d.Bytes(), []byte{esc, '@'})
	var out []string
	for _, l := range bytes.Split(body, []byte{lf}) {
		out = append(out, string(l))
	}
	return out
}

func TestDocument_PairPadsToWidth(t *testing.T) {
	d := NewDocument(20).Pair("Total", "111.00")

	assert.Equal(t, "Total         111.00", lines(d)[0])
}

func TestDocument_PairCountsRunes(t *testing.T) {
	got := lines(NewDocument(20).Pair("Coloração", "80.00"))[0]

	assert.Equal(t, 20, utf8.RuneCountInString(got))
	assert.Len(t, got, 22)
}

func TestDocument_ItemWrapsLongNames(t *testing.T) {
	d := NewDocument(24).Item("1", "Keratin treatment deluxe", "150.00")

	got := lines(d)
	assert.Equal(t, "1x Keratin        150.00", got[0])
	assert.Equal(t, "  treatment deluxe", got[1])
}

func TestDocument_ItemFitsOnOneLine(t *testing.T) {
	d := NewDocument(32).Item("2", "Shampoo", "31.00")

	got := lines(d)
	assert.Len(t, got[0], 32)
	assert.Equal(t, "", got[1])
}

func TestDocument_NoteIsCut(t *testing.T) {
	d := NewDocument(10).Note("promo: opening week")

	assert.Equal(t, "  promo: o", lines(d)[0])
}

func TestDocument_DefaultWidthAndFinish(t *testing.T) {
	d := NewDocument(0)
	assert.Equal(t, DefaultWidth, d.Width())

	d.Rule().Finish(2)
	assert.Equal(t, "--------------------------------", lines(d)[0])
	assert.True(t, bytes.HasSuffix(d.Bytes(), []byte{lf, lf, gs, 'V', 0x01}))
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{""}, wrap("", 10, 10))
	assert.Equal(t, []string{"abcde", "fghij", "k"}, wrap("abcdefghijk", 5, 5))
	assert.Equal(t, []string{"a b", "c d"}, wrap("a b c d", 3, 3))
}

func TestNew(t *testing.T) {
	p, err := New(Config{Kind: KindNone})
	require.NoError(t, err)
	assert.Equal(t, Discard, p)
	assert.False(t, p.IsConnected(context.Background()))
	assert.NoError(t, p.Print(context.Background(), []byte("x")))

	_, err = New(Config{Kind: KindUSB})
	assert.Error(t, err)

	_, err = New(Config{Kind: KindNetwork})
	assert.Error(t, err)

	_, err = New(Config{Kind: "bluetooth"})
	assert.Error(t, err)

	p, err = New(Config{Kind: KindNetwork, Address: "127.0.0.1:9100"})
	require.NoError(t, err)
	assert.Equal(t, "network 127.0.0.1:9100", p.Describe())
}

func TestDevicePrinter_CancelledContext(t *testing.T) {
	p, err := New(Config{Kind: KindUSB, USBPath: "/dev/null"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Print(ctx, []byte("x")), context.Canceled)
}

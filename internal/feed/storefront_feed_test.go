package feed

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// encodeCP1250 кодирует текст в cp1250, как его отдаёт витрина.
func encodeCP1250(t *testing.T, s string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := transform.NewWriter(&buf, charmap.Windows1250.NewEncoder())
	_, err := w.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return buf.Bytes()
}

func TestStorefrontFeedNext(t *testing.T) {
	csvText := "code;pairCode;productVisibility;availabilityInStock\n" +
		"AB123;;visible;Ihned k odeslání\n" +
		"CD456;;hidden;Není skladem\n"

	feed, err := NewStorefrontFeed(bytes.NewReader(encodeCP1250(t, csvText)), nil)
	require.NoError(t, err)
	defer feed.Close()

	first, err := feed.Next()
	require.NoError(t, err)
	assert.Equal(t, "AB123", first.Code)
	assert.True(t, first.Override.Visible)
	assert.Equal(t, "Ihned k odeslání", first.Override.AvailabilityInStock)

	second, err := feed.Next()
	require.NoError(t, err)
	assert.Equal(t, "CD456", second.Code)
	assert.False(t, second.Override.Visible)
	assert.Equal(t, "Není skladem", second.Override.AvailabilityInStock)

	_, err = feed.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStorefrontFeedColumnOrderIndependent(t *testing.T) {
	// Витрина меняет порядок колонок настройками шаблона экспорта,
	// колонки ищутся по имени.
	csvText := "availabilityInStock;code;productVisibility\n" +
		"Skladem;AB123;visible\n"

	feed, err := NewStorefrontFeed(bytes.NewReader(encodeCP1250(t, csvText)), nil)
	require.NoError(t, err)
	defer feed.Close()

	row, err := feed.Next()
	require.NoError(t, err)
	assert.Equal(t, "AB123", row.Code)
	assert.Equal(t, "Skladem", row.Override.AvailabilityInStock)
}

func TestStorefrontFeedSkipsShortRows(t *testing.T) {
	csvText := "code;productVisibility;availabilityInStock\n" +
		"AB123\n" +
		"CD456;visible;Skladem\n"

	feed, err := NewStorefrontFeed(bytes.NewReader(encodeCP1250(t, csvText)), nil)
	require.NoError(t, err)
	defer feed.Close()

	row, err := feed.Next()
	require.NoError(t, err)
	assert.Equal(t, "CD456", row.Code)

	_, err = feed.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStorefrontFeedMissingColumn(t *testing.T) {
	csvText := "code;productVisibility\nAB123;visible\n"

	_, err := NewStorefrontFeed(bytes.NewReader(encodeCP1250(t, csvText)), nil)
	require.Error(t, err)
}

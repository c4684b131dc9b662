package export

import (
	"bytes"
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findChrome(t *testing.T) string {
	t.Helper()
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	t.Skip("chrome not installed")
	return ""
}

func TestChromePrinter_PrintPDF(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping headless chrome test in short mode")
	}
	printer := &ChromePrinter{ExecPath: findChrome(t), Timeout: 20 * time.Second}

	data, err := New(nil).Render(context.Background(), FormatHTML, standardized())
	require.NoError(t, err)

	pdf, err := printer.PrintPDF(context.Background(), data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestHTMLTitle(t *testing.T) {
	data, err := RenderHTML(standardized())
	require.NoError(t, err)
	assert.Equal(t, "Sales Analyst (Junior (0-2 years))", htmlTitle(data))
}

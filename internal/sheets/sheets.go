// Package sheets reads and appends worksheet rows in a Google spreadsheet.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// Client is bound to one spreadsheet.
type Client struct {
	svc           *gsheets.Service
	spreadsheetID string
}

// New creates a Client authenticated with a service-account credentials file.
// Extra options are appended, which lets tests point at a local endpoint.
func New(ctx context.Context, spreadsheetID, credentialsFile string, opts ...option.ClientOption) (*Client, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet ID is required")
	}
	if credentialsFile != "" {
		opts = append([]option.ClientOption{option.WithCredentialsFile(credentialsFile)}, opts...)
	}

	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// ReadRows returns every non-empty row of a worksheet as strings, header included.
func (c *Client) ReadRows(ctx context.Context, worksheet string) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, quote(worksheet)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", worksheet, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		empty := true
		for i, cell := range raw {
			row[i] = strings.TrimSpace(fmt.Sprint(cell))
			if row[i] != "" {
				empty = false
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// AppendRow appends one row after the last non-empty row of a worksheet.
func (c *Client) AppendRow(ctx context.Context, worksheet string, row []string) error {
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}

	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, quote(worksheet), &gsheets.ValueRange{
		Values: [][]interface{}{values},
	}).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append to worksheet %q: %w", worksheet, err)
	}
	return nil
}

// quote turns a worksheet name into an A1 range covering the whole sheet.
func quote(worksheet string) string {
	return "'" + strings.ReplaceAll(worksheet, "'", "''") + "'"
}

package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Client wraps the Sheets values API
type Client struct {
	service *sheets.Service
}

// Config selects service-account credentials, either a file or inline JSON
type Config struct {
	CredentialsPath string
	CredentialsJSON []byte
	// Endpoint overrides the API endpoint, for tests
	Endpoint string
}

// NewClient creates a Sheets client scoped to spreadsheet read/write
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}

	switch {
	case cfg.CredentialsPath != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	case len(cfg.CredentialsJSON) > 0:
		opts = append(opts, option.WithCredentialsJSON(cfg.CredentialsJSON))
	default:
		return nil, fmt.Errorf("sheets: credentials path or JSON is required")
	}

	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: failed to create service: %w", err)
	}

	return &Client{service: service}, nil
}

// AppendValues inserts rows after the last populated row of the range
func (c *Client) AppendValues(ctx context.Context, spreadsheetID, cellRange string, values [][]interface{}) error {
	if c == nil || c.service == nil {
		return fmt.Errorf("sheets: service is nil")
	}

	_, err := c.service.Spreadsheets.Values.Append(spreadsheetID, cellRange, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: append %s: %w", cellRange, err)
	}
	return nil
}

// UpdateValues overwrites the cells starting at the range anchor
func (c *Client) UpdateValues(ctx context.Context, spreadsheetID, cellRange string, values [][]interface{}) error {
	if c == nil || c.service == nil {
		return fmt.Errorf("sheets: service is nil")
	}

	_, err := c.service.Spreadsheets.Values.Update(spreadsheetID, cellRange, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: update %s: %w", cellRange, err)
	}
	return nil
}

// ClearValues empties the range, keeping formatting
func (c *Client) ClearValues(ctx context.Context, spreadsheetID, cellRange string) error {
	if c == nil || c.service == nil {
		return fmt.Errorf("sheets: service is nil")
	}

	_, err := c.service.Spreadsheets.Values.Clear(spreadsheetID, cellRange, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: clear %s: %w", cellRange, err)
	}
	return nil
}

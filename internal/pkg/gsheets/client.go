package gsheets

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Client 以服务账号身份读写一张 Google 表格的一个工作表。
// 只提供整表读和整表写，行级语义在 store 层实现。
type Client struct {
	svc           *sheets.Service
	spreadsheetID string
	worksheet     string
}

// NewClient credentialsJSON 是服务账号密钥文件的内容
func NewClient(credentialsJSON []byte, spreadsheetID, worksheet string) (*Client, error) {
	ctx := context.Background()

	cfg, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("解析服务账号凭证失败: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("创建 Sheets 服务失败: %w", err)
	}

	if worksheet == "" {
		worksheet = "Sheet1"
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		worksheet:     worksheet,
	}, nil
}

// ReadAll 读整个工作表，第一行是表头
func (c *Client) ReadAll() ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.worksheet).Do()
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteAll 整表覆盖写回。先 Clear 再写，避免删行后残留旧数据。
func (c *Client) WriteAll(rows [][]string) error {
	_, err := c.svc.Spreadsheets.Values.
		Clear(c.spreadsheetID, c.worksheet, &sheets.ClearValuesRequest{}).Do()
	if err != nil {
		return err
	}

	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		values[i] = cells
	}

	_, err = c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, c.worksheet, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Do()
	return err
}

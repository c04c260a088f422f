package testutil

import "errors"

// ErrSheetDown 假表格注入的连接错误
var ErrSheetDown = errors.New("sheet connection refused")

// FakeSheet 内存版的远程表格连接，实现 store.Conn。
// ReadFail/WriteFail 置位后模拟连不上远端。
type FakeSheet struct {
	Rows      [][]string
	ReadFail  bool
	WriteFail bool
	Writes    int
}

// NewFakeSheet rows 的第一行是表头，nil 表示一张全新的空表
func NewFakeSheet(rows [][]string) *FakeSheet {
	return &FakeSheet{Rows: rows}
}

func (f *FakeSheet) ReadAll() ([][]string, error) {
	if f.ReadFail {
		return nil, ErrSheetDown
	}
	out := make([][]string, len(f.Rows))
	for i, row := range f.Rows {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

func (f *FakeSheet) WriteAll(rows [][]string) error {
	if f.WriteFail {
		return ErrSheetDown
	}
	f.Writes++
	f.Rows = make([][]string, len(rows))
	for i, row := range rows {
		f.Rows[i] = append([]string(nil), row...)
	}
	return nil
}

// Package preview 把序列的首尾几行渲染成终端表格，便于拉取后快速目检。
package preview

import (
	"fmt"
	"math"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"kview/internal/market"
)

// Options 控制首尾各展示多少行。
type Options struct {
	Rows int
}

// Render 输出带边框的首尾预览表，两段之间用分隔线隔开。
// 行数不超过两倍 Rows 时直接全量展示；空序列返回空串。
func Render(s *market.Series, opts Options) string {
	if s.Len() == 0 {
		return ""
	}
	rows := opts.Rows
	if rows <= 0 {
		rows = 5
	}

	names := s.ColumnNames()
	header := table.Row{"Date"}
	configs := make([]table.ColumnConfig, 0, len(names))
	for i, name := range names {
		header = append(header, name)
		configs = append(configs, table.ColumnConfig{Number: i + 2, Align: text.AlignRight})
	}

	cols := make([][]float64, len(names))
	for i, name := range names {
		vs, err := s.Column(name)
		if err != nil {
			return ""
		}
		cols[i] = vs
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.SetColumnConfigs(configs)
	t.AppendHeader(header)

	appendRow := func(r int) {
		row := table.Row{s.Candles[r].Date.Format("2006-01-02")}
		for _, vs := range cols {
			row = append(row, formatCell(vs[r]))
		}
		t.AppendRow(row)
	}

	if s.Len() <= 2*rows {
		for r := 0; r < s.Len(); r++ {
			appendRow(r)
		}
	} else {
		for r := 0; r < rows; r++ {
			appendRow(r)
		}
		t.AppendSeparator()
		for r := s.Len() - rows; r < s.Len(); r++ {
			appendRow(r)
		}
	}
	t.SetCaption("%d rows x %d columns", s.Len(), len(names))
	return t.Render()
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	if math.IsInf(v, 0) {
		return fmt.Sprintf("%v", v)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

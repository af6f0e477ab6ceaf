package templates

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/fileconv/internal/core"
)

// FileView is one file panel on the batch page.
type FileView struct {
	Info    core.FileInfo
	Options core.Options
	Result  *core.Result
	Error   *core.UserMessage

	DownloadURL string
	HeatmapURL  string
	BarChartURL string
}

// BatchView is the batch page: every uploaded file in upload order.
type BatchView struct {
	BatchID string
	Files   []FileView
}

// BatchPage renders all file panels inside one form so every control is
// submitted together.
func BatchPage(v BatchView) templ.Component {
	return Layout("Batch", component(func(ctx context.Context, h *htmlWriter) {
		h.rawf(`<form method="get" action="/batch/%s" class="batch">`, attr(v.BatchID))
		for _, f := range v.Files {
			h.render(ctx, FilePanel(f))
		}
		h.raw(`<div class="actions"><button type="submit">Apply</button> <a href="/">Upload more files</a></div></form>`)
	}))
}

// FilePanel renders the controls and views of one file.
func FilePanel(f FileView) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		name := f.Info.Name
		prefix := f.Info.ID + "."

		h.rawf(`<section class="card file" id="file-%s">`, attr(f.Info.ID))
		h.raw("<h2>Preview: ")
		h.text(name)
		h.raw("</h2>")

		if f.Error != nil {
			h.render(ctx, ErrorAlert(f.Error.Message, f.Error.Action, f.Error.Code))
			h.raw("</section>")
			return
		}
		res := f.Result
		opts := f.Options

		h.rawf(`<p class="shape">%d rows × %d columns</p>`, res.Shape.Rows, res.Shape.Cols)
		h.render(ctx, PreviewTable(res.Preview))

		checkbox(h, prefix+"summary", "Show Summary - "+name, opts.ShowSummary)
		if res.Summary != nil {
			h.render(ctx, SummaryTables(res.Summary))
		}

		checkbox(h, prefix+"dedupe", "Remove Duplicates - "+name, opts.RemoveDuplicates)
		if d := res.Dedupe; d != nil {
			h.rawf(`<div class="alert alert-success">Duplicates removed: %d of %d rows.</div>`, d.Removed, d.RowsBefore)
			h.render(ctx, PreviewTable(d.Preview))
		}

		if len(res.NumericColumns) > 0 {
			checkbox(h, prefix+"impute", "Fill Missing Values - "+name, opts.FillMissing)
			if imp := res.Impute; imp != nil {
				h.rawf(`<div class="alert alert-success">Missing values filled with mean: %d cells.</div>`, imp.Filled())
				h.render(ctx, PreviewTable(imp.Preview))
			}

			checkbox(h, prefix+"corr", "Show Correlation Heatmap - "+name, opts.ShowCorrelation)
			if res.Correlation != nil && f.HeatmapURL != "" {
				h.rawf(`<img class="chart" alt="Correlation heatmap" src="%s">`, attr(f.HeatmapURL))
			}
		}

		h.raw(`<label class="field">Select Columns for `)
		h.text(name)
		h.rawf(`<select name="%s" multiple size="%d">`, attr(prefix+"columns"), min(len(res.Columns), 8))
		selected := make(map[string]bool, len(res.Selected))
		for _, c := range res.Selected {
			selected[c] = true
		}
		for _, c := range res.Columns {
			sel := ""
			if selected[c.Name] {
				sel = " selected"
			}
			h.rawf(`<option value="%s"%s>`, attr(c.Name), sel)
			h.text(c.Name)
			h.raw("</option>")
		}
		h.raw("</select></label>")
		h.render(ctx, PreviewTable(res.Projected))

		if res.ChartAvailable {
			checkbox(h, prefix+"chart", "Show Chart - "+name, opts.ShowChart)
			if res.Chart != nil && f.BarChartURL != "" {
				h.rawf(`<img class="chart" alt="Bar chart" src="%s">`, attr(f.BarChartURL))
				if res.Chart.Truncated {
					h.rawf(`<p class="hint">Showing the first %d of %d rows.</p>`, len(res.Chart.Labels), res.Chart.TotalRows)
				}
			}
		}

		for _, n := range res.Notices {
			h.raw(`<div class="alert alert-info">`)
			h.text(n)
			h.raw("</div>")
		}

		h.raw(`<fieldset class="field"><legend>Convert `)
		h.text(name)
		h.raw(" to</legend>")
		target := opts.TargetFormat()
		for _, format := range core.Formats {
			h.rawf(`<label><input type="radio" name="%s" value="%s"%s> %s</label> `,
				attr(prefix+"format"), format, checked(format == target), format.Label())
		}
		h.raw("</fieldset>")

		if f.DownloadURL != "" {
			h.rawf(`<a class="button" href="%s">Download `, attr(f.DownloadURL))
			h.text(core.OutputName(name, target))
			h.raw("</a>")
		}
		h.raw(`<div class="alert alert-success">Process completed.</div></section>`)
	})
}

// PreviewTable renders a head-of-table view.
func PreviewTable(p core.Preview) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<div class="table-wrap"><table><thead><tr><th></th>`)
		for _, c := range p.Columns {
			h.raw("<th>")
			h.text(c)
			h.raw("</th>")
		}
		h.raw("</tr></thead><tbody>")
		for i, row := range p.Rows {
			h.raw("<tr><th>")
			h.raw(strconv.Itoa(i))
			h.raw("</th>")
			for _, v := range row {
				h.raw("<td>")
				h.text(v)
				h.raw("</td>")
			}
			h.raw("</tr>")
		}
		h.raw("</tbody></table></div>")
	})
}

// SummaryTables renders describe-style statistics, numeric columns first.
func SummaryTables(s *core.Summary) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		if len(s.Numeric) > 0 {
			h.raw(`<div class="table-wrap"><table class="summary"><thead><tr><th></th>`)
			for _, n := range s.Numeric {
				h.raw("<th>")
				h.text(n.Column)
				h.raw("</th>")
			}
			h.raw("</tr></thead><tbody>")
			values := make([][]core.Float, len(s.Numeric))
			for i, n := range s.Numeric {
				values[i] = n.Values()
			}
			for row, label := range core.SummaryLabels {
				h.raw("<tr><th>")
				h.text(label)
				h.raw("</th>")
				for col := range s.Numeric {
					h.raw("<td>")
					h.text(formatStat(values[col][row]))
					h.raw("</td>")
				}
				h.raw("</tr>")
			}
			h.raw("</tbody></table></div>")
		}

		if len(s.Text) > 0 {
			h.raw(`<div class="table-wrap"><table class="summary"><thead><tr><th></th><th>count</th><th>unique</th><th>top</th><th>freq</th></tr></thead><tbody>`)
			for _, t := range s.Text {
				h.raw("<tr><th>")
				h.text(t.Column)
				h.rawf("</th><td>%d</td><td>%d</td><td>", t.Count, t.Unique)
				h.text(t.Top)
				h.rawf("</td><td>%d</td></tr>", t.Freq)
			}
			h.raw("</tbody></table></div>")
		}
	})
}

func checkbox(h *htmlWriter, name, label string, on bool) {
	h.rawf(`<label class="check"><input type="checkbox" name="%s" value="on"%s> `, attr(name), checked(on))
	h.text(label)
	h.raw("</label>")
}

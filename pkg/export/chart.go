package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/chenBenjamin97/pitchside/pkg/possession"
)

//maxChartPoints caps the line chart resolution for long videos.
const maxChartPoints = 500

//TeamControlChart renders an HTML page with the running ball-control share
//of both teams and a pie of the final split.
func TeamControlChart(w io.Writer, seq possession.Sequence) error {
	step := max(1, len(seq)/maxChartPoints)
	x := make([]string, 0, len(seq)/step+1)
	team1 := make([]opts.LineData, 0, cap(x))
	team2 := make([]opts.LineData, 0, cap(x))
	for i := 0; i < len(seq); i += step {
		share := possession.ShareUpTo(seq, i)
		x = append(x, strconv.Itoa(i))
		team1 = append(team1, opts.LineData{Value: percent(share.Team1)})
		team2 = append(team2, opts.LineData{Value: percent(share.Team2)})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Team Ball Control", Subtitle: fmt.Sprintf("frames=%d", len(seq))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "frame"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "control (%)", Min: 0, Max: 100}),
	)
	line.SetXAxis(x).
		AddSeries("Team 1", team1).
		AddSeries("Team 2", team2)

	total := possession.Summary(seq)
	pie := charts.NewPie()
	pie.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Overall Ball Control"}))
	pie.AddSeries("control", []opts.PieData{
		{Name: "Team 1", Value: percent(total.Team1)},
		{Name: "Team 2", Value: percent(total.Team2)},
	})

	page := components.NewPage()
	page.AddCharts(line, pie)
	return page.Render(w)
}

func percent(f float64) float64 {
	return float64(int(f*10000+0.5)) / 100
}

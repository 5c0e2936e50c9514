// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chartdata

import (
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/deepsearch/pkg/types"
)

// shapeLabels name each shape in the plain-text data report.
var shapeLabels = map[types.ChartShape]string{
	types.ShapeCategorical: "适用于柱状图的数据",
	types.ShapeTimeSeries:  "适用于折线图的数据",
	types.ShapePartOfWhole: "适用于饼图的数据",
}

// BuildDataReport renders the extraction outcome as the plain-text data
// report: a header followed by one block per shape. Slots whose text does
// not validate for their shape are marked as having no usable data.
func BuildDataReport(set types.ChartDataSet) string {
	var b strings.Builder

	fmt.Fprintf(&b, "数据搜索报告\n")
	fmt.Fprintf(&b, "生成时间: %s\n", set.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "原始查询: %s\n", set.Topic)
	fmt.Fprintf(&b, "%s\n\n", strings.Repeat("=", 50))

	usable := 0
	for _, shape := range types.AllChartShapes {
		label := shapeLabels[shape]
		slot := set.Slot(shape)
		if slot != nil && Validate(slot.BestText, shape) {
			usable++
			fmt.Fprintf(&b, "%s:\n%s\n", label, slot.BestText)
			if slot.Degraded {
				fmt.Fprintf(&b, "(备用数据)\n")
			}
			fmt.Fprintf(&b, "\n")
		} else {
			fmt.Fprintf(&b, "%s: 无有效数据\n\n", label)
		}
	}

	if usable == 0 {
		fmt.Fprintf(&b, "注意: 未找到任何有效数据，请尝试修改搜索主题。\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// ReportFilename derives the data report's output filename from the
// generation timestamp.
func ReportFilename(generatedAt time.Time) string {
	return fmt.Sprintf("data_report_%s.txt", generatedAt.Format("20060102_150405"))
}

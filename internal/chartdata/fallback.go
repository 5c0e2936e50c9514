// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chartdata

import "github.com/pdiddy/deepsearch/pkg/types"

// fallbackKey indexes the canned table by topic and shape.
type fallbackKey struct {
	topic string
	shape types.ChartShape
}

// defaultTopic is the canned table's catch-all entry for unrecognized topics.
const defaultTopic = "默认"

// fallbackData is the pre-registered substitute data used when extraction
// exhausts its attempt budget. Every entry satisfies Validate for its own
// shape by construction, so degraded slots are still renderable.
var fallbackData = map[fallbackKey]string{
	{"人工智能发展趋势及规模", types.ShapeCategorical}: "人工智能市场规模:\n2019年: 500亿美元\n2020年: 620亿美元\n2021年: 850亿美元\n2022年: 1200亿美元\n2023年: 1580亿美元",
	{"人工智能发展趋势及规模", types.ShapeTimeSeries}:  "人工智能技术发展趋势:\n2018年: 市场渗透率5.2%\n2019年: 市场渗透率8.7%\n2020年: 市场渗透率13.5%\n2021年: 市场渗透率19.8%\n2022年: 市场渗透率28.3%\n2023年: 市场渗透率37.6%",
	{"人工智能发展趋势及规模", types.ShapePartOfWhole}: "人工智能应用领域分布:\n自然语言处理: 35%\n计算机视觉: 28%\n机器学习平台: 20%\n智能机器人: 12%\n其他应用: 5%",

	{"新能源汽车", types.ShapeCategorical}: "新能源汽车销量:\n2020年: 130万辆\n2021年: 350万辆\n2022年: 680万辆\n2023年: 950万辆\n2024年: 1200万辆",
	{"新能源汽车", types.ShapeTimeSeries}:  "新能源汽车市场份额变化:\n2020年: 5.4%\n2021年: 13.4%\n2022年: 25.6%\n2023年: 31.6%\n2024年: 38.5%",
	{"新能源汽车", types.ShapePartOfWhole}: "新能源汽车品牌市场份额:\n比亚迪: 32%\n特斯拉: 18%\n上汽通用五菱: 12%\n广汽埃安: 9%\n其他品牌: 29%",

	{"电子商务", types.ShapeCategorical}: "电商平台年交易额:\n淘宝天猫: 8.3万亿元\n京东: 3.3万亿元\n拼多多: 2.8万亿元\n抖音电商: 1.5万亿元\n其他平台: 1.2万亿元",
	{"电子商务", types.ShapeTimeSeries}:  "中国网络零售额增长:\n2019年: 10.6万亿元\n2020年: 11.8万亿元\n2021年: 13.1万亿元\n2022年: 13.8万亿元\n2023年: 15.4万亿元",
	{"电子商务", types.ShapePartOfWhole}: "电商用户年龄分布:\n18-25岁: 28%\n26-35岁: 42%\n36-45岁: 22%\n46-55岁: 7%\n55岁以上: 3%",

	{"云计算", types.ShapeCategorical}: "云服务提供商市场份额:\n阿里云: 36%\n腾讯云: 18%\n华为云: 12%\n百度智能云: 8%\n其他厂商: 26%",
	{"云计算", types.ShapeTimeSeries}:  "中国云计算市场规模:\n2020年: 2000亿元\n2021年: 3100亿元\n2022年: 4500亿元\n2023年: 6200亿元\n2024年: 8200亿元",
	{"云计算", types.ShapePartOfWhole}: "云计算服务类型分布:\nIaaS: 65%\nPaaS: 20%\nSaaS: 15%",

	{"5G技术", types.ShapeCategorical}: "5G基站数量:\n2020年: 72万个\n2021年: 143万个\n2022年: 231万个\n2023年: 337万个\n2024年: 420万个",
	{"5G技术", types.ShapeTimeSeries}:  "5G用户增长:\n2020年: 1.6亿户\n2021年: 3.5亿户\n2022年: 5.7亿户\n2023年: 7.8亿户\n2024年: 9.5亿户",
	{"5G技术", types.ShapePartOfWhole}: "5G应用场景分布:\n智能手机: 65%\n工业互联网: 15%\n智慧城市: 10%\n远程医疗: 6%\n其他应用: 4%",

	{defaultTopic, types.ShapeCategorical}: "年度销售数据:\n产品A: 4500万元\n产品B: 3200万元\n产品C: 2800万元\n产品D: 2100万元\n产品E: 1900万元",
	{defaultTopic, types.ShapeTimeSeries}:  "月度用户增长趋势:\n1月: 1200万用户\n2月: 1350万用户\n3月: 1580万用户\n4月: 1820万用户\n5月: 2100万用户\n6月: 2450万用户",
	{defaultTopic, types.ShapePartOfWhole}: "市场份额分布:\n北美地区: 42%\n欧洲地区: 28%\n亚太地区: 23%\n其他地区: 7%",
}

// Fallback returns the canned data for the topic and shape. An unrecognized
// topic resolves to the generic default entry. The lookup is pure: it never
// mutates shared state, and identical inputs always yield identical output.
func Fallback(topic string, shape types.ChartShape) string {
	if data, ok := fallbackData[fallbackKey{topic, shape}]; ok {
		return data
	}
	return fallbackData[fallbackKey{defaultTopic, shape}]
}

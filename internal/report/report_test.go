package report_test

import (
	"encoding/json"
	"testing"

	"github.com/mautops/dailyreport-gin/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() []report.Parameter {
	return []report.Parameter{
		{Key: "calls", Label: "电话量", Target: 20, Type: report.TypeNumber, AllowProof: true},
		{Key: "revenue", Label: "营收", Target: 50000, Type: report.TypeCurrency},
	}
}

// TestParamEntry_UnmarshalLegacyNumber 测试旧数据裸数字解码
func TestParamEntry_UnmarshalLegacyNumber(t *testing.T) {
	var data report.ReportData
	err := json.Unmarshal([]byte(`{"calls": 20}`), &data)
	require.NoError(t, err)

	entry := data["calls"]
	assert.Equal(t, 20.0, entry.Value)
	assert.Equal(t, "", entry.Notes)
	assert.Equal(t, []string{}, entry.Links)
}

// TestParamEntry_UnmarshalObject 测试完整对象解码
func TestParamEntry_UnmarshalObject(t *testing.T) {
	var data report.ReportData
	err := json.Unmarshal([]byte(`{"calls": {"value": 18, "notes": "含回访"}}`), &data)
	require.NoError(t, err)

	entry := data["calls"]
	assert.Equal(t, 18.0, entry.Value)
	assert.Equal(t, "含回访", entry.Notes)
	assert.NotNil(t, entry.Links)
	assert.Empty(t, entry.Links)
}

// TestParamEntry_UnmarshalInvalid 测试非法数据报错
func TestParamEntry_UnmarshalInvalid(t *testing.T) {
	var e report.ParamEntry
	err := json.Unmarshal([]byte(`"not-a-number"`), &e)
	assert.Error(t, err)
}

// TestNormalize_FillsMissingKeys 测试缺失 key 以零值补齐
func TestNormalize_FillsMissingKeys(t *testing.T) {
	data := report.ReportData{
		"calls": {Value: 12, Notes: "上午为主", Links: []string{"https://crm.example.com/1"}},
	}

	got := report.Normalize(testParams(), data)

	require.Len(t, got, 2)
	assert.Equal(t, 12.0, got["calls"].Value)
	assert.Equal(t, 0.0, got["revenue"].Value)
	assert.Equal(t, []string{}, got["revenue"].Links)
}

// TestNormalize_DropsUnknownKeys 测试不在参数集中的 key 被丢弃
func TestNormalize_DropsUnknownKeys(t *testing.T) {
	data := report.ReportData{
		"calls":   {Value: 5},
		"retired": {Value: 99},
	}

	got := report.Normalize(testParams(), data)

	require.Len(t, got, 2)
	_, ok := got["retired"]
	assert.False(t, ok)
}

// TestNormalize_CopiesLinks 测试归一化结果与来源不共享链接底层数组
func TestNormalize_CopiesLinks(t *testing.T) {
	src := report.ReportData{
		"calls": {Links: []string{"https://a.example.com", "https://b.example.com"}},
	}

	got := report.Normalize(testParams(), src)
	got["calls"].Links[0] = "https://mutated.example.com"

	assert.Equal(t, "https://a.example.com", src["calls"].Links[0])
}

// TestNormalize_Idempotent 测试归一化幂等
func TestNormalize_Idempotent(t *testing.T) {
	params := testParams()
	once := report.Normalize(params, report.ReportData{"calls": {Value: 7}})
	twice := report.Normalize(params, once)
	assert.Equal(t, once, twice)
}

// TestZero 测试全零草稿
func TestZero(t *testing.T) {
	got := report.Zero(testParams())
	require.Len(t, got, 2)
	for _, e := range got {
		assert.Equal(t, 0.0, e.Value)
		assert.Equal(t, "", e.Notes)
		assert.Equal(t, []string{}, e.Links)
	}
}

// TestProgressPercent 测试完成度计算与截断
func TestProgressPercent(t *testing.T) {
	cases := []struct {
		name   string
		value  float64
		target float64
		want   int
	}{
		{"超额截断到100", 150, 100, 100},
		{"恰好达标", 100, 100, 100},
		{"百分之七十五", 30, 40, 75},
		{"四舍五入", 37, 50, 74},
		{"负值截断到0", -5, 100, 0},
		{"目标为零", 10, 0, 0},
		{"目标为负", 10, -20, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, report.ProgressPercent(tc.value, tc.target))
		})
	}
}

// TestTier 测试进度分档
func TestTier(t *testing.T) {
	assert.Equal(t, report.TierOnTarget, report.Tier(100))
	assert.Equal(t, report.TierNearTarget, report.Tier(99))
	assert.Equal(t, report.TierNearTarget, report.Tier(75))
	assert.Equal(t, report.TierBelowTarget, report.Tier(74))
	assert.Equal(t, report.TierBelowTarget, report.Tier(0))
}

// TestAttachment_Equal 测试附件结构相等
func TestAttachment_Equal(t *testing.T) {
	key := "calls"
	a := report.Attachment{FileName: "a.png", FilePath: "h1", ParamKey: &key}

	other := "revenue"
	assert.True(t, a.Equal(report.Attachment{FileName: "a.png", FilePath: "h1", ParamKey: &key}))
	assert.False(t, a.Equal(report.Attachment{FileName: "a.png", FilePath: "h1"}))
	assert.False(t, a.Equal(report.Attachment{FileName: "a.png", FilePath: "h1", ParamKey: &other}))
	assert.False(t, a.Equal(report.Attachment{FileName: "b.png", FilePath: "h1", ParamKey: &key}))
}

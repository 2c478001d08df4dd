package report

// NormalizeEntry 补齐单个条目的缺失字段
// 链接切片总是复制,归一化结果不与来源共享底层数组。
func NormalizeEntry(e ParamEntry) ParamEntry {
	e.Links = append([]string{}, e.Links...)
	return e
}

// Normalize 按参数集归一化报告数据
// 规则与读取服务端数据时保持一致:每个参数 key 恰好产生一个条目,
// 缺失的 key 以零值补齐,已有条目补齐缺失子字段。幂等。
func Normalize(params []Parameter, data ReportData) ReportData {
	out := make(ReportData, len(params))
	for _, p := range params {
		if e, ok := data[p.Key]; ok {
			out[p.Key] = NormalizeEntry(e)
		} else {
			out[p.Key] = ParamEntry{Value: 0, Notes: "", Links: []string{}}
		}
	}
	return out
}

// Zero 生成全零草稿数据
func Zero(params []Parameter) ReportData {
	return Normalize(params, nil)
}

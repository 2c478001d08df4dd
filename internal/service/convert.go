package service

import (
	"encoding/json"
	"fmt"

	"github.com/mautops/dailyreport-gin/internal/model"
	"github.com/mautops/dailyreport-gin/internal/report"
)

// toDomain 将数据模型转换为领域对象
// report_data 反序列化时兼容旧版裸数字条目
func toDomain(m *model.DailyReportModel) (*report.DailyReport, error) {
	var data report.ReportData
	if err := json.Unmarshal(m.ReportData, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report data: %w", err)
	}

	var attachments []report.Attachment
	if len(m.Attachments) > 0 {
		if err := json.Unmarshal(m.Attachments, &attachments); err != nil {
			return nil, fmt.Errorf("failed to unmarshal attachments: %w", err)
		}
	}
	if attachments == nil {
		attachments = []report.Attachment{}
	}

	return &report.DailyReport{
		ID:             m.ID,
		EmployeeID:     m.EmployeeID,
		ReportDate:     m.ReportDate,
		ReportData:     data,
		GeneralNotes:   m.GeneralNotes,
		Attachments:    attachments,
		IsVerified:     m.IsVerified,
		VerifiedBy:     m.VerifiedBy,
		VerifiedAt:     m.VerifiedAt,
		ManagerComment: m.ManagerComment,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}, nil
}

// toModel 将领域对象序列化为数据模型
func toModel(r *report.DailyReport) (*model.DailyReportModel, error) {
	data, err := json.Marshal(r.ReportData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report data: %w", err)
	}

	attachments, err := json.Marshal(r.Attachments)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal attachments: %w", err)
	}

	return &model.DailyReportModel{
		ID:             r.ID,
		EmployeeID:     r.EmployeeID,
		ReportDate:     r.ReportDate,
		ReportData:     data,
		GeneralNotes:   r.GeneralNotes,
		Attachments:    attachments,
		IsVerified:     r.IsVerified,
		VerifiedBy:     r.VerifiedBy,
		VerifiedAt:     r.VerifiedAt,
		ManagerComment: r.ManagerComment,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}, nil
}

// toParameters 将指标模型列表转换为领域对象列表
func toParameters(models []*model.ParameterModel) []report.Parameter {
	params := make([]report.Parameter, 0, len(models))
	for _, m := range models {
		params = append(params, report.Parameter{
			Key:        m.Key,
			Label:      m.Label,
			Target:     m.Target,
			Type:       report.ParameterType(m.Type),
			AllowProof: m.AllowProof,
		})
	}
	return params
}

package repository_test

import (
	"testing"
	"time"

	"github.com/mautops/dailyreport-gin/internal/database"
	"github.com/mautops/dailyreport-gin/internal/model"
	"github.com/mautops/dailyreport-gin/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newReport(id, employeeID, date string) *model.DailyReportModel {
	now := time.Now()
	return &model.DailyReportModel{
		ID:          id,
		EmployeeID:  employeeID,
		ReportDate:  date,
		ReportData:  []byte(`{"calls":{"value":1,"notes":"","links":[]}}`),
		Attachments: []byte("[]"),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TestReportRepository_SaveAndFind 测试保存与查询
func TestReportRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewReportRepository(db)

	require.NoError(t, repo.Save(newReport("r1", "emp-1", "2026-08-28")))

	got, err := repo.FindByID("r1")
	require.NoError(t, err)
	assert.Equal(t, "emp-1", got.EmployeeID)
	assert.Equal(t, "2026-08-28", got.ReportDate)

	_, err = repo.FindByID("missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

// TestReportRepository_UniqueEmployeeDate 测试员工+日期唯一索引
func TestReportRepository_UniqueEmployeeDate(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewReportRepository(db)

	require.NoError(t, repo.Save(newReport("r1", "emp-1", "2026-08-28")))

	// 同一员工同一天的第二条记录违反唯一索引
	err := db.Create(newReport("r2", "emp-1", "2026-08-28")).Error
	assert.Error(t, err)

	// 不同员工同一天可以
	require.NoError(t, repo.Save(newReport("r3", "emp-2", "2026-08-28")))
	// 同一员工不同天可以
	require.NoError(t, repo.Save(newReport("r4", "emp-1", "2026-08-29")))
}

// TestReportRepository_FindByEmployeeAndDate 测试按员工和日期查询
func TestReportRepository_FindByEmployeeAndDate(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewReportRepository(db)

	require.NoError(t, repo.Save(newReport("r1", "emp-1", "2026-08-28")))

	got, err := repo.FindByEmployeeAndDate("emp-1", "2026-08-28")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "r1", got.ID)

	// 不存在时返回 (nil, nil)
	got, err = repo.FindByEmployeeAndDate("emp-1", "2026-08-29")
	require.NoError(t, err)
	assert.Nil(t, got)
}

// TestReportRepository_FindByFilter 测试过滤器查询
func TestReportRepository_FindByFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewReportRepository(db)

	require.NoError(t, repo.Save(newReport("r1", "emp-1", "2026-08-25")))
	require.NoError(t, repo.Save(newReport("r2", "emp-1", "2026-08-26")))
	verified := newReport("r3", "emp-1", "2026-08-27")
	verified.IsVerified = true
	require.NoError(t, repo.Save(verified))
	require.NoError(t, repo.Save(newReport("r4", "emp-2", "2026-08-26")))

	empID := "emp-1"

	// 按员工过滤,默认日期倒序
	models, total, err := repo.FindByFilter(&repository.ReportFilter{EmployeeID: &empID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, models, 3)
	assert.Equal(t, "r3", models[0].ID)

	// 按验证状态过滤
	pending := false
	models, total, err = repo.FindByFilter(&repository.ReportFilter{
		EmployeeID: &empID,
		IsVerified: &pending,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	// 日期范围 + 分页
	start := "2026-08-26"
	models, total, err = repo.FindByFilter(&repository.ReportFilter{
		EmployeeID: &empID,
		StartDate:  &start,
		Page:       1,
		PageSize:   1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, models, 1)
	assert.Equal(t, "r3", models[0].ID)

	// 升序排序
	models, _, err = repo.FindByFilter(&repository.ReportFilter{
		EmployeeID: &empID,
		SortBy:     "report_date",
		Order:      "ASC",
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", models[0].ID)
}

// TestReportRepository_Delete 测试删除
func TestReportRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewReportRepository(db)

	require.NoError(t, repo.Save(newReport("r1", "emp-1", "2026-08-28")))
	require.NoError(t, repo.Delete("r1"))

	_, err := repo.FindByID("r1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// 删除不存在的记录不报错
	assert.NoError(t, repo.Delete("missing"))
}

// TestReportRepository_CountByEmployeeAndMonth 测试月度计数
func TestReportRepository_CountByEmployeeAndMonth(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewReportRepository(db)

	require.NoError(t, repo.Save(newReport("r1", "emp-1", "2026-08-25")))
	verified := newReport("r2", "emp-1", "2026-08-26")
	verified.IsVerified = true
	require.NoError(t, repo.Save(verified))
	require.NoError(t, repo.Save(newReport("r3", "emp-1", "2026-07-31")))

	total, verifiedCount, err := repo.CountByEmployeeAndMonth("emp-1", "2026-08")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(1), verifiedCount)
}

// TestEmployeeRepository_FindByManagerID 测试按主管查询下属
func TestEmployeeRepository_FindByManagerID(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewEmployeeRepository(db)

	now := time.Now()
	require.NoError(t, repo.Save(&model.EmployeeModel{
		ID: "emp-1", Name: "张三", RoleID: "role-sales", ManagerID: "mgr-1",
		CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, repo.Save(&model.EmployeeModel{
		ID: "emp-2", Name: "李四", RoleID: "role-sales", ManagerID: "mgr-2",
		CreatedAt: now, UpdatedAt: now,
	}))

	subs, err := repo.FindByManagerID("mgr-1")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "emp-1", subs[0].ID)
}

// TestParameterRepository_RoleKeyUnique 测试角色内指标 key 唯一
func TestParameterRepository_RoleKeyUnique(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewParameterRepository(db)

	now := time.Now()
	require.NoError(t, repo.Save(&model.ParameterModel{
		ID: "p1", RoleID: "role-sales", Key: "calls", Label: "电话量",
		Target: 20, Type: "number", CreatedAt: now, UpdatedAt: now,
	}))

	err := db.Create(&model.ParameterModel{
		ID: "p2", RoleID: "role-sales", Key: "calls", Label: "重复",
		Target: 10, Type: "number", CreatedAt: now, UpdatedAt: now,
	}).Error
	assert.Error(t, err)

	// 其他角色可以复用 key
	require.NoError(t, repo.Save(&model.ParameterModel{
		ID: "p3", RoleID: "role-support", Key: "calls", Label: "工单电话",
		Target: 30, Type: "number", CreatedAt: now, UpdatedAt: now,
	}))
}

package metrics

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Collector 指标收集器
type Collector struct {
	db       *gorm.DB
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewCollector 创建指标收集器
func NewCollector(db *gorm.DB, interval time.Duration) *Collector {
	ctx, cancel := context.WithCancel(context.Background())
	return &Collector{
		db:       db,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start 启动指标收集器
func (c *Collector) Start() {
	go c.collect()
}

// Stop 停止指标收集器
func (c *Collector) Stop() {
	c.cancel()
	<-c.done
}

// collect 定期收集指标
func (c *Collector) collect() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			// 更新数据库连接数指标
			_ = UpdateDatabaseConnections(c.db)
			// 更新日报核验状态分布
			c.collectReportStatus()
		}
	}
}

// collectReportStatus 统计各核验状态的日报数量
func (c *Collector) collectReportStatus() {
	type row struct {
		IsVerified bool
		Count      int64
	}

	var rows []row
	err := c.db.WithContext(c.ctx).
		Table("daily_reports").
		Select("is_verified, count(*) as count").
		Group("is_verified").
		Scan(&rows).Error
	if err != nil {
		return
	}

	var pending, verified float64
	for _, r := range rows {
		if r.IsVerified {
			verified = float64(r.Count)
		} else {
			pending = float64(r.Count)
		}
	}
	UpdateReportsByStatus("pending", pending)
	UpdateReportsByStatus("verified", verified)
}

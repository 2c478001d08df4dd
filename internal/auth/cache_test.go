package auth_test

import (
	"testing"
	"time"

	"github.com/mautops/dailyreport-gin/internal/auth"
	"github.com/stretchr/testify/assert"
)

// TestPermissionCache_SetGet 测试缓存写读
func TestPermissionCache_SetGet(t *testing.T) {
	cache := auth.NewPermissionCache(time.Minute)

	cache.Set("emp-1|verifier|employee:emp-2", true)
	cache.Set("emp-1|verifier|employee:emp-3", false)

	allowed, ok := cache.Get("emp-1|verifier|employee:emp-2")
	assert.True(t, ok)
	assert.True(t, allowed)

	allowed, ok = cache.Get("emp-1|verifier|employee:emp-3")
	assert.True(t, ok)
	assert.False(t, allowed)

	_, ok = cache.Get("missing")
	assert.False(t, ok)
}

// TestPermissionCache_Expiry 测试过期条目被剔除
func TestPermissionCache_Expiry(t *testing.T) {
	cache := auth.NewPermissionCache(10 * time.Millisecond)

	cache.Set("key", true)
	_, ok := cache.Get("key")
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)
	_, ok = cache.Get("key")
	assert.False(t, ok)
}

// TestPermissionCache_Clear 测试清空缓存
func TestPermissionCache_Clear(t *testing.T) {
	cache := auth.NewPermissionCache(time.Minute)

	cache.Set("a", true)
	cache.Set("b", false)
	cache.Clear()

	_, ok := cache.Get("a")
	assert.False(t, ok)
	_, ok = cache.Get("b")
	assert.False(t, ok)
}

package cache

import (
	"sync"
)

// 模拟模式相关变量，Redis不可用时退化为进程内存储，
// 单元测试依赖这一模式运行
var (
	mockMode  bool
	mockMutex sync.Mutex
	mockData  = make(map[string]string)
	mockLocks = make(map[string]bool)
)

// ResetMock 清空模拟存储（仅用于测试）
func ResetMock() {
	mockMutex.Lock()
	defer mockMutex.Unlock()
	mockData = make(map[string]string)
	mockLocks = make(map[string]bool)
}

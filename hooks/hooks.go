// hooks/hooks.go
package hooks

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// HookFunc 钩子函数类型
type HookFunc func(ctx context.Context) error

// Phase 生命周期阶段
type Phase string

const (
	BeforeStart    Phase = "before_start"
	AfterStart     Phase = "after_start"
	BeforeShutdown Phase = "before_shutdown"
	AfterShutdown  Phase = "after_shutdown"
)

// Hook 钩子结构
type Hook struct {
	Name     string
	Phase    Phase
	Function HookFunc
	Priority int // 数值越小越先执行
}

// Manager 钩子管理器; 由 LifecycleManager 持有, 不存在全局实例
type Manager struct {
	hooks map[Phase][]*Hook
	mutex sync.RWMutex
}

// NewManager 创建新的钩子管理器
func NewManager() *Manager {
	return &Manager{
		hooks: make(map[Phase][]*Hook),
	}
}

// Register 注册钩子, 同一阶段内名称唯一
func (m *Manager) Register(hook *Hook) error {
	if hook == nil {
		return fmt.Errorf("hook cannot be nil")
	}
	if hook.Function == nil {
		return fmt.Errorf("hook %s: function cannot be nil", hook.Name)
	}
	if !hook.Phase.Valid() {
		return fmt.Errorf("invalid hook phase: %s", hook.Phase)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, existing := range m.hooks[hook.Phase] {
		if existing.Name == hook.Name {
			return fmt.Errorf("hook %s already registered for %s", hook.Name, hook.Phase)
		}
	}
	phaseHooks := append(m.hooks[hook.Phase], hook)
	// 同优先级保持注册顺序
	sort.SliceStable(phaseHooks, func(i, j int) bool {
		return phaseHooks[i].Priority < phaseHooks[j].Priority
	})
	m.hooks[hook.Phase] = phaseHooks
	return nil
}

// Execute runs the hooks of phase in priority order and stops at the first error.
func (m *Manager) Execute(ctx context.Context, phase Phase) error {
	m.mutex.RLock()
	phaseHooks := make([]*Hook, len(m.hooks[phase]))
	copy(phaseHooks, m.hooks[phase])
	m.mutex.RUnlock()

	for _, hook := range phaseHooks {
		if err := hook.Function(ctx); err != nil {
			return fmt.Errorf("hook %s failed: %w", hook.Name, err)
		}
	}
	return nil
}

// Count 返回某阶段已注册的钩子数量
func (m *Manager) Count(phase Phase) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.hooks[phase])
}

func (p Phase) Valid() bool {
	switch p {
	case BeforeStart, AfterStart, BeforeShutdown, AfterShutdown:
		return true
	default:
		return false
	}
}

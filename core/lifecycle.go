// core/lifecycle.go
package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/grand-thief-cash/chaos/app/infra/go/logsink/hooks"
)

// LifecycleManager 生命周期管理器
type LifecycleManager struct {
	container   *Container
	hookManager *hooks.Manager
	log         *zap.Logger
	timeout     time.Duration

	mutex          sync.Mutex
	shutdownCalled bool
}

// NewLifecycleManager 创建新的生命周期管理器, log 为 nil 时不输出
func NewLifecycleManager(container *Container, log *zap.Logger) *LifecycleManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &LifecycleManager{
		container:   container,
		hookManager: hooks.NewManager(),
		log:         log,
		timeout:     30 * time.Second,
	}
}

// AddHook 添加生命周期钩子
func (lm *LifecycleManager) AddHook(name string, phase hooks.Phase, function hooks.HookFunc, priority int) error {
	return lm.hookManager.Register(&hooks.Hook{
		Name:     name,
		Phase:    phase,
		Function: function,
		Priority: priority,
	})
}

// SetTimeout 设置组件启动/停止超时时间
func (lm *LifecycleManager) SetTimeout(timeout time.Duration) {
	lm.timeout = timeout
}

// StartAll starts every registered component in dependency order. Components
// that are already active are left untouched.
func (lm *LifecycleManager) StartAll(ctx context.Context) error {
	if err := lm.hookManager.Execute(ctx, hooks.BeforeStart); err != nil {
		return fmt.Errorf("before_start hooks failed: %w", err)
	}

	components, err := lm.container.SortComponentsByDependencies()
	if err != nil {
		return fmt.Errorf("failed to sort components: %w", err)
	}

	for _, comp := range components {
		if comp.IsActive() {
			continue
		}
		startCtx, cancel := context.WithTimeout(ctx, lm.timeout)
		err := comp.Start(startCtx)
		cancel()

		if err != nil {
			lm.log.Error("failed to start component", zap.String("component", comp.Name()), zap.Error(err))
			lm.stopStartedComponents(context.Background(), components, comp.Name())
			return fmt.Errorf("failed to start component %s: %w", comp.Name(), err)
		}

		lm.log.Debug("component started", zap.String("component", comp.Name()))
	}

	lm.mutex.Lock()
	lm.shutdownCalled = false
	lm.mutex.Unlock()

	if err := lm.hookManager.Execute(ctx, hooks.AfterStart); err != nil {
		lm.log.Warn("after_start hooks failed", zap.Error(err))
	}
	return nil
}

// StopAll 按依赖逆序停止所有组件, 重复调用无副作用
func (lm *LifecycleManager) StopAll(ctx context.Context) {
	lm.mutex.Lock()
	if lm.shutdownCalled {
		lm.mutex.Unlock()
		return
	}
	lm.shutdownCalled = true
	lm.mutex.Unlock()

	if err := lm.hookManager.Execute(ctx, hooks.BeforeShutdown); err != nil {
		lm.log.Warn("before_shutdown hooks failed", zap.Error(err))
	}

	components, err := lm.container.SortComponentsByDependencies()
	if err != nil {
		lm.log.Warn("failed to sort components for shutdown", zap.Error(err))
		registered := lm.container.ListRegistered()
		components = make([]Component, 0, len(registered))
		for _, comp := range registered {
			components = append(components, comp)
		}
	}

	for i := len(components) - 1; i >= 0; i-- {
		comp := components[i]
		if !comp.IsActive() {
			continue
		}

		stopCtx, cancel := context.WithTimeout(ctx, lm.timeout)
		if err := comp.Stop(stopCtx); err != nil {
			lm.log.Error("error stopping component", zap.String("component", comp.Name()), zap.Error(err))
		}
		cancel()
	}

	if err := lm.hookManager.Execute(ctx, hooks.AfterShutdown); err != nil {
		lm.log.Warn("after_shutdown hooks failed", zap.Error(err))
	}
}

func (lm *LifecycleManager) stopStartedComponents(ctx context.Context, components []Component, failedComponentName string) {
	for i := len(components) - 1; i >= 0; i-- {
		comp := components[i]
		if comp.Name() == failedComponentName {
			continue
		}
		if comp.IsActive() {
			stopCtx, cancel := context.WithTimeout(ctx, lm.timeout)
			if err := comp.Stop(stopCtx); err != nil {
				lm.log.Error("error stopping component during cleanup", zap.String("component", comp.Name()), zap.Error(err))
			}
			cancel()
		}
	}
}

// SetLogger 替换生命周期日志输出
func (lm *LifecycleManager) SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	lm.log = log
}

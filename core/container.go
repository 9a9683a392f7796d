// core/container.go
package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Container 组件注册表, 以名称为键, 通过依赖注入传递而不是全局变量
type Container struct {
	components map[string]Component
	mutex      sync.RWMutex
}

// NewContainer 创建新的容器实例
func NewContainer() *Container {
	return &Container{
		components: make(map[string]Component),
	}
}

// Register 注册组件到容器
func (c *Container) Register(name string, component Component) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.components[name]; exists {
		return fmt.Errorf("component %s already registered", name)
	}

	c.components[name] = component
	return nil
}

// ResolveOrRegister returns the component registered under name, or builds and
// registers a new one while holding the write lock so concurrent callers with
// the same name observe a single instance. The bool reports whether build ran.
func (c *Container) ResolveOrRegister(name string, build func() (Component, error)) (Component, bool, error) {
	c.mutex.RLock()
	existing, ok := c.components[name]
	c.mutex.RUnlock()
	if ok {
		return existing, false, nil
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if existing, ok := c.components[name]; ok {
		return existing, false, nil
	}
	comp, err := build()
	if err != nil {
		return nil, false, err
	}
	if comp == nil {
		return nil, false, fmt.Errorf("builder for component %s returned nil", name)
	}
	c.components[name] = comp
	return comp, true, nil
}

// Resolve 从容器中获取组件
func (c *Container) Resolve(name string) (Component, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	component, exists := c.components[name]
	if !exists {
		return nil, fmt.Errorf("component %s not found", name)
	}

	return component, nil
}

// ListRegistered 列出所有已注册的组件
func (c *Container) ListRegistered() map[string]Component {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	result := make(map[string]Component, len(c.components))
	for name, comp := range c.components {
		result[name] = comp
	}
	return result
}

// NamesWithPrefix 返回以 prefix 开头的组件名 (已排序)
func (c *Container) NamesWithPrefix(prefix string) []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var names []string
	for name := range c.components {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// SortComponentsByDependencies 根据依赖关系对组件进行拓扑排序
func (c *Container) SortComponentsByDependencies() ([]Component, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	visited := make(map[string]bool)
	visiting := make(map[string]bool)
	result := make([]Component, 0, len(c.components))

	var visit func(string) error
	visit = func(name string) error {
		if visiting[name] {
			return fmt.Errorf("circular dependency detected involving component %s", name)
		}
		if visited[name] {
			return nil
		}

		component, exists := c.components[name]
		if !exists {
			return fmt.Errorf("component %s not found", name)
		}

		visiting[name] = true
		for _, dep := range component.Dependencies() {
			if err := visit(dep); err != nil {
				return err
			}
		}
		visiting[name] = false
		visited[name] = true
		result = append(result, component)

		return nil
	}

	names := make([]string, 0, len(c.components))
	for name := range c.components {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// Replace 替换已注册但未激活的组件（主要用于测试）
func (c *Container) Replace(name string, component Component) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	existing, exists := c.components[name]
	if !exists {
		return fmt.Errorf("component %s not registered", name)
	}
	if existing.IsActive() {
		return fmt.Errorf("component %s is active; cannot replace", name)
	}
	c.components[name] = component
	return nil
}

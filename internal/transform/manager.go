package transform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single hook execution
const DefaultTimeout = 5 * time.Second

// operationDirectiveRegex matches the @operation directive in comments,
// e.g. // @operation fanToken.getBalance
var operationDirectiveRegex = regexp.MustCompile(`(?m)^//\s*@operation\s+(\S+)`)

// Hook is one loaded transform script
type Hook struct {
	Name      string // filename without extension
	Operation string // resource.operation this hook covers
	Script    string
}

// Manager loads transform scripts and applies them to results
type Manager struct {
	hooks   map[string]*Hook // operation -> hook
	logger  zerolog.Logger
	timeout time.Duration
	mu      sync.RWMutex
}

// NewManager creates a new Manager
func NewManager(timeout time.Duration, logger zerolog.Logger) *Manager {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Manager{
		hooks:   make(map[string]*Hook),
		logger:  logger.With().Str("component", "transform").Logger(),
		timeout: timeout,
	}
}

// LoadFromDirectory loads all .js hooks from a directory. A missing
// directory just means no hooks.
func (m *Manager) LoadFromDirectory(dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		m.logger.Debug().Str("directory", dir).Msg("transform directory does not exist")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat transform directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("transform path is not a directory: %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read transform directory: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".js") {
			continue
		}
		if err := m.loadHook(filepath.Join(dir, entry.Name())); err != nil {
			m.logger.Error().Err(err).Str("file", entry.Name()).Msg("failed to load transform hook")
			continue
		}
		loaded++
	}

	m.logger.Info().Int("loaded", loaded).Str("directory", dir).Msg("transform hooks loaded")
	return nil
}

// Register adds a hook from source, keyed by its @operation directive
func (m *Manager) Register(name, script string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.register(name, script)
}

func (m *Manager) loadHook(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read hook file: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), ".js")
	return m.register(name, string(content))
}

func (m *Manager) register(name, script string) error {
	matches := operationDirectiveRegex.FindStringSubmatch(script)
	if len(matches) < 2 {
		return errors.New("hook missing @operation directive")
	}
	operation := matches[1]

	if _, exists := m.hooks[operation]; exists {
		return fmt.Errorf("duplicate hook for operation %s", operation)
	}

	m.hooks[operation] = &Hook{
		Name:      name,
		Operation: operation,
		Script:    script,
	}
	m.logger.Info().Str("name", name).Str("operation", operation).Msg("transform hook registered")
	return nil
}

// Has reports whether a hook covers the operation
func (m *Manager) Has(resource, operation string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.hooks[resource+"."+operation]
	return ok
}

// Operations returns the covered operations
func (m *Manager) Operations() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ops := make([]string, 0, len(m.hooks))
	for op := range m.hooks {
		ops = append(ops, op)
	}
	return ops
}

// Apply runs the hook for resource.operation on a result. The returned
// bool says whether a hook ran; on any hook failure the original result
// comes back unchanged with the error.
func (m *Manager) Apply(ctx context.Context, resource, operation string, result json.RawMessage, params map[string]interface{}) (json.RawMessage, bool, error) {
	m.mu.RLock()
	hook, ok := m.hooks[resource+"."+operation]
	m.mu.RUnlock()
	if !ok {
		return result, false, nil
	}

	transformed, err := m.run(ctx, hook, result, params)
	if err != nil {
		return result, false, err
	}
	return transformed, true, nil
}

func (m *Manager) run(ctx context.Context, hook *Hook, result json.RawMessage, params map[string]interface{}) (json.RawMessage, error) {
	// Fresh VM per execution; goja runtimes are not safe for
	// concurrent use
	runtime := NewRuntime(m.logger.With().Str("hook", hook.Name).Logger())
	vm := runtime.VM()

	execCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	// Interrupt the VM when the budget runs out so a looping script
	// cannot pin a goroutine
	watchdogDone := make(chan struct{})
	go func() {
		select {
		case <-execCtx.Done():
			vm.Interrupt("transform timeout")
		case <-watchdogDone:
		}
	}()
	defer close(watchdogDone)

	if _, err := runtime.RunScript(hook.Script); err != nil {
		return nil, fmt.Errorf("script error: %w", err)
	}

	transformVal := vm.Get("transform")
	transformFn, ok := goja.AssertFunction(transformVal)
	if !ok {
		return nil, errors.New("transform function not defined")
	}

	var parsedResult interface{}
	if len(result) > 0 {
		if err := json.Unmarshal(result, &parsedResult); err != nil {
			return nil, fmt.Errorf("result not transformable: %w", err)
		}
	}

	value, err := transformFn(goja.Undefined(), vm.ToValue(parsedResult), vm.ToValue(params))
	if err != nil {
		var jsErr *goja.Exception
		if errors.As(err, &jsErr) {
			return nil, fmt.Errorf("hook failed: %s", jsErr.String())
		}
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			return nil, fmt.Errorf("hook timed out after %s", m.timeout)
		}
		return nil, err
	}

	encoded, err := json.Marshal(value.Export())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transformed result: %w", err)
	}
	return encoded, nil
}

// Close releases all hooks
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = make(map[string]*Hook)
}

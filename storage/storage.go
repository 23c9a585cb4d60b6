package storage

import (
	"errors"
	"sync"
	"time"

	"github.com/eddielth/check-sensorprobe/logger"
	"github.com/eddielth/check-sensorprobe/probe"
)

// Result 表示一次检查运行的结果
type Result struct {
	Host       string        `json:"host"`
	PortFilter int           `json:"port_filter"`
	CheckedAt  time.Time     `json:"checked_at"`
	Report     *probe.Report `json:"report"`
}

// SensorRow 表示扁平化的传感器数据行
type SensorRow struct {
	Port         int
	Slot         int
	Name         string
	Category     string
	Health       int
	Severity     string
	State        int
	Value        *float64
	Unit         string
	LowCritical  *float64
	LowWarning   *float64
	HighWarning  *float64
	HighCritical *float64
}

// Rows 将报告中的传感器展开为数据行
func (r Result) Rows() []SensorRow {
	if r.Report == nil {
		return nil
	}

	rows := make([]SensorRow, 0, len(r.Report.Sensors))
	for _, s := range r.Report.Sensors {
		row := SensorRow{
			Port:     s.Key.Port,
			Slot:     s.Key.Slot,
			Name:     s.Name,
			Category: s.Category,
			Health:   s.Health,
			Severity: s.Severity.String(),
			State:    int(s.Severity),
		}
		if rd := s.Reading; rd != nil {
			v := rd.Value
			row.Value = &v
			row.Unit = rd.Unit
			row.LowCritical = rd.LowCritical.Ptr()
			row.LowWarning = rd.LowWarning.Ptr()
			row.HighWarning = rd.HighWarning.Ptr()
			row.HighCritical = rd.HighCritical.Ptr()
		}
		rows = append(rows, row)
	}
	return rows
}

// StorageBackend 表示存储后端接口
type StorageBackend interface {
	// Store 存储检查结果
	Store(res Result) error
	// Close 关闭存储连接
	Close() error
}

// Manager 管理多个存储后端
type Manager struct {
	backends []StorageBackend
	mutex    sync.RWMutex
}

// NewManager 创建一个新的存储管理器
func NewManager(backends []StorageBackend) *Manager {
	return &Manager{
		backends: backends,
	}
}

// Store 将结果存储到所有后端，返回合并后的错误
func (m *Manager) Store(res Result) error {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var errs []error
	for _, backend := range m.backends {
		if err := backend.Store(res); err != nil {
			// 记录错误但继续尝试其他后端
			logger.Error("存储结果到后端失败: %v", err)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Close 关闭所有存储后端连接
func (m *Manager) Close() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, backend := range m.backends {
		if err := backend.Close(); err != nil {
			logger.Error("关闭存储后端连接失败: %v", err)
		}
	}
}

// AddBackend 添加新的存储后端
func (m *Manager) AddBackend(backend StorageBackend) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.backends = append(m.backends, backend)
}

// Len 返回存储后端数量
func (m *Manager) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.backends)
}

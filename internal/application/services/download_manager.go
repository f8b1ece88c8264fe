package services

import (
	"context"
	"errors"
	"sync"

	"github.com/franklioxygen/MyTube-sub001/pkg/logger"
)

var (
	// ErrManagerClosed 队列已关停,不再接收作业
	ErrManagerClosed = errors.New("download manager is closed")
	// ErrQueueFull 排队数达到上限
	ErrQueueFull = errors.New("download queue is full")
)

// DownloadJob 单个下载作业
// ctx取消即作业的取消钩子,作业自行负责清理自己的登记
type DownloadJob func(ctx context.Context) error

type managedJob struct {
	id     string
	run    DownloadJob
	ctx    context.Context
	cancel context.CancelFunc
	result chan error
}

// DownloadManager 手动下载的有界并发队列
// 与连续任务是相互独立的并发域,槽位互不抢占;
// 槽位占满时作业先进先出排队,取消排队作业立即出队,
// 并以已取消的ctx执行一次作业让其走自己的清理路径
type DownloadManager struct {
	mu        sync.Mutex
	slots     int
	queueSize int
	active    map[string]*managedJob
	pending   []*managedJob
	closed    bool
	wg        sync.WaitGroup
}

// NewDownloadManager 创建下载队列,queueSize为0表示排队不设上限
func NewDownloadManager(concurrency, queueSize int) *DownloadManager {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &DownloadManager{
		slots:     concurrency,
		queueSize: queueSize,
		active:    make(map[string]*managedJob),
	}
}

// Add 提交作业并返回结果通道
// 有空闲槽位立即执行,否则排队;通道缓冲为1,调用方不读取也不会泄漏
func (m *DownloadManager) Add(id string, job DownloadJob) (<-chan error, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrManagerClosed
	}
	if m.queueSize > 0 && len(m.active) >= m.slots && len(m.pending) >= m.queueSize {
		return nil, ErrQueueFull
	}

	ctx, cancel := context.WithCancel(context.Background())
	j := &managedJob{
		id:     id,
		run:    job,
		ctx:    ctx,
		cancel: cancel,
		result: make(chan error, 1),
	}

	if len(m.active) < m.slots {
		m.start(j)
	} else {
		m.pending = append(m.pending, j)
		logger.Debug("download queued", "id", id, "pending", len(m.pending))
	}
	return j.result, nil
}

// start 占用槽位执行作业,调用方必须持锁
func (m *DownloadManager) start(j *managedJob) {
	m.active[j.id] = j
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		err := j.run(j.ctx)
		j.cancel()
		j.result <- err
		m.finish(j.id)
	}()
}

// finish 释放槽位并带起排队的作业
func (m *DownloadManager) finish(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.active, id)
	for len(m.pending) > 0 && len(m.active) < m.slots && !m.closed {
		next := m.pending[0]
		m.pending = m.pending[1:]
		m.start(next)
	}
}

// Cancel 取消作业,返回是否找到
// 进行中的作业触发其ctx取消钩子,由作业自行收尾;
// 排队中的作业立即出队,再以已取消的ctx跑一遍清理路径
func (m *DownloadManager) Cancel(id string) bool {
	m.mu.Lock()
	if j, ok := m.active[id]; ok {
		m.mu.Unlock()
		j.cancel()
		return true
	}
	for i, j := range m.pending {
		if j.id == id {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			// wg.Add必须在锁内,Shutdown置closed后才Wait,
			// 锁外Add会与Wait交错
			m.wg.Add(1)
			m.mu.Unlock()
			j.cancel()
			go func() {
				defer m.wg.Done()
				j.result <- j.run(j.ctx)
			}()
			return true
		}
	}
	m.mu.Unlock()
	return false
}

// ActiveCount 当前占用的槽位数
func (m *DownloadManager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// PendingCount 当前排队作业数
func (m *DownloadManager) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Concurrency 并发槽位上限
func (m *DownloadManager) Concurrency() int {
	return m.slots
}

// Shutdown 停止接收新作业,取消所有进行中作业并等待退出
// 排队作业不执行直接作废,其排队登记保留为下次启动可见的积压
func (m *DownloadManager) Shutdown() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	pending := m.pending
	m.pending = nil
	active := make([]*managedJob, 0, len(m.active))
	for _, j := range m.active {
		active = append(active, j)
	}
	m.mu.Unlock()

	for _, j := range active {
		j.cancel()
	}
	for _, j := range pending {
		j.cancel()
		j.result <- j.ctx.Err()
	}
	m.wg.Wait()
	logger.Info("download manager stopped", "cancelled", len(active), "abandoned", len(pending))
}

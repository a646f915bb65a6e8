// Package saga 按步骤执行、失败时逆序补偿
//
// 用于跨越数据库事务边界的操作（如先写对象存储再写数据库）：
// 某一步失败时，已完成步骤的补偿按逆序执行
package saga

import (
	"context"
	"fmt"
	"time"

	"github.com/xiebiao/bookhub/pkg/logger"
	"github.com/xiebiao/bookhub/pkg/metrics"
)

// Step Saga中的一个步骤
// Action与Compensate都允许为nil，补偿需要支持重复执行
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Saga 一次Saga执行
type Saga struct {
	name     string
	steps    []Step
	executed []Step
	timeout  time.Duration
}

// NewSaga 创建Saga
//
//	s := saga.NewSaga("image-upload", 30*time.Second)
//	s.AddStep("存储文件", storeBlob, deleteBlob)
//	s.AddStep("写入记录", insertRows, nil)
//	err := s.Execute(ctx)
func NewSaga(name string, timeout time.Duration) *Saga {
	return &Saga{
		name:    name,
		steps:   make([]Step, 0),
		timeout: timeout,
	}
}

// AddStep 添加步骤，按添加顺序执行、逆序补偿
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) {
	s.steps = append(s.steps, Step{
		Name:       name,
		Action:     action,
		Compensate: compensate,
	})
}

// Execute 执行所有步骤
// 超时或某步失败时触发补偿，补偿使用独立的context
func (s *Saga) Execute(ctx context.Context) (err error) {
	started := time.Now()
	defer func() { metrics.ObserveSaga(s.name, started, err) }()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for i, step := range s.steps {
		if ctxErr := ctx.Err(); ctxErr != nil {
			s.compensate(context.WithoutCancel(ctx))
			return fmt.Errorf("saga[%s]超时: %w", s.name, ctxErr)
		}

		if step.Action != nil {
			if err := step.Action(ctx); err != nil {
				s.compensate(context.WithoutCancel(ctx))
				return fmt.Errorf("saga[%s]步骤[%d:%s]执行失败: %w", s.name, i, step.Name, err)
			}
		}
		s.executed = append(s.executed, step)
	}

	return nil
}

// compensate 逆序补偿，单个补偿失败不影响后续补偿
func (s *Saga) compensate(ctx context.Context) {
	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]
		if step.Compensate == nil {
			continue
		}
		metrics.SagaCompensationsTotal.Inc()
		if err := step.Compensate(ctx); err != nil {
			logger.C(ctx).Warn().Err(err).
				Str("saga", s.name).
				Str("step", step.Name).
				Msg("补偿失败，需要人工介入")
		}
	}
	s.executed = nil
}

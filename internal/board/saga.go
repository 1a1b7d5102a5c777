package board

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"

	"signal_board/internal/metrics"
	"signal_board/internal/models"
	"signal_board/pkg/logger"
)

const (
	StepPersist          = "persist"
	StepNotify           = "notify"
	StepPersistMessageID = "persist-message-id"
	StepDelete           = "delete"
	StepRollUp           = "roll-up"
)

type StepStatus string

const (
	StepCommitted StepStatus = "committed"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

type StepResult struct {
	Name   string     `json:"name"`
	Status StepStatus `json:"status"`
	Err    error      `json:"-"`
}

// Outcome — результат операции: итоговый сигнал и что из шагов реально выполнилось.
// Шаги после первого успешного persist не откатываются.
type Outcome struct {
	Signal  *models.TradingSignal `json:"signal,omitempty"`
	Removed bool                  `json:"removed,omitempty"`
	Steps   []StepResult          `json:"steps"`
}

func (o *Outcome) Step(name string) (StepResult, bool) {
	for _, s := range o.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return StepResult{}, false
}

// Failed — шаги, завершившиеся ошибкой.
func (o *Outcome) Failed() []StepResult {
	var out []StepResult
	for _, s := range o.Steps {
		if s.Status == StepFailed {
			out = append(out, s)
		}
	}
	return out
}

type saga struct {
	ctx  context.Context
	op   string
	span opentracing.Span
	out  Outcome
}

func (b *Board) begin(ctx context.Context, op string) *saga {
	span, ctx := opentracing.StartSpanFromContextWithTracer(ctx, b.tracer, "board."+op)
	return &saga{ctx: ctx, op: op, span: span}
}

// run выполняет шаг в отдельном спане и записывает результат.
func (s *saga) run(name string, fn func(ctx context.Context) error) error {
	span, ctx := opentracing.StartSpanFromContextWithTracer(s.ctx, s.span.Tracer(), name)
	defer span.Finish()

	err := fn(ctx)
	res := StepResult{Name: name, Status: StepCommitted}
	if err != nil {
		res.Status, res.Err = StepFailed, err
		ext.Error.Set(span, true)
		span.SetTag("error.message", err.Error())
		logger.Error("%s: step %s failed: %v", s.op, name, err)
	}
	s.record(res)
	return err
}

func (s *saga) skip(name string) {
	s.record(StepResult{Name: name, Status: StepSkipped})
}

func (s *saga) record(res StepResult) {
	s.out.Steps = append(s.out.Steps, res)
	metrics.BoardStepsTotal.WithLabelValues(s.op, res.Name, string(res.Status)).Inc()
}

// finish закрывает корневой спан; err — ошибка, которую получит вызывающий.
func (s *saga) finish(err error) (Outcome, error) {
	result := "ok"
	if err != nil {
		result = "error"
		ext.Error.Set(s.span, true)
	} else if len(s.out.Failed()) > 0 {
		result = "partial"
	}
	s.span.SetTag("result", result)
	s.span.Finish()
	metrics.BoardOperationsTotal.WithLabelValues(s.op, result).Inc()
	return s.out, err
}

package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"avian/cmd/internal/auth/session"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "avian/web"

// scope is shared by every stage of one request.
type scope struct {
	session *session.Session
	routed  error
}

type scopeKey struct{}

func scopeFrom(ctx context.Context) *scope {
	sc, _ := ctx.Value(scopeKey{}).(*scope)
	return sc
}

// Pipeline executes its stages in the order given to NewPipeline, then the
// terminal handler. It implements http.Handler.
type Pipeline struct {
	stages      []Stage
	handler     HandlerFunc
	interceptor *Interceptor
	log         *slog.Logger
}

func NewPipeline(interceptor *Interceptor, terminal HandlerFunc, log *slog.Logger, stages ...Stage) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	tracer := otel.Tracer(tracerName)

	h := traced(tracer, "router", terminal)
	for i := len(stages) - 1; i >= 0; i-- {
		h = traced(tracer, stages[i].Name, stages[i].Wrap(h))
	}
	return &Pipeline{
		stages:      stages,
		handler:     h,
		interceptor: interceptor,
		log:         log,
	}
}

// Stages returns the stage names in execution order.
func (p *Pipeline) Stages() []string {
	out := make([]string, 0, len(p.stages)+1)
	for _, s := range p.stages {
		out = append(out, s.Name)
	}
	return append(out, "router")
}

func (p *Pipeline) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sc := &scope{}
	r = r.WithContext(context.WithValue(r.Context(), scopeKey{}, sc))

	buf := newBufferedWriter()
	if err := p.run(buf, r); err != nil {
		buf.reset()
		p.interceptor.handle(buf, r, sc, err)
	}
	if err := buf.flushTo(w); err != nil {
		p.log.Debug("http.response.write_failed", "err", err)
	}
}

func (p *Pipeline) run(w http.ResponseWriter, r *http.Request) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			err = &PanicError{Value: rec, Stack: debug.Stack()}
		}
	}()
	return p.handler(w, r)
}

// PanicError carries a panic recovered inside the pipeline.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

func traced(tracer trace.Tracer, name string, next HandlerFunc) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		ctx, span := tracer.Start(r.Context(), "pipeline."+name,
			trace.WithAttributes(attribute.String("http.route_path", r.URL.Path)),
		)
		defer span.End()

		err := next(w, r.WithContext(ctx))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, name)
		}
		return err
	}
}

package eval

import (
	"sync/atomic"

	"github.com/lumenlang/lumen/ast"
	"github.com/lumenlang/lumen/errdefs"
)

// performMsg is sent from a body goroutine to its enclosing Handle's frame
// when it reaches a Perform for one of that frame's effects.
type performMsg struct {
	effect string
	args   []Value
	resume chan resumeMsg
}

type resumeMsg struct {
	value Value
	err   error
}

type doneMsg struct {
	value Value
	err   error
}

// frame is one dynamic Handle scope, per §4.5.3's "dynamic frame labeled by
// the effects in handlers."
type frame struct {
	effects map[string]bool
	perform chan performMsg
}

// Continuation is the delimited remainder of a Handle's body, captured at
// the point of a Perform. It is one-shot: invoking it a second time is a
// runtime error.
type Continuation struct {
	used     atomic.Bool
	resume   chan resumeMsg
	perform  chan performMsg
	done     chan doneMsg
	ctx      *Context
	handlers []ast.HandlerCase
}

// Invoke resumes the suspended body with v, then waits for the body to
// either perform another handled effect (running that handler's body next)
// or finish, returning whichever value results. This is what makes `(k v)`
// itself an expression with a value, per §4.5.3.
func (k *Continuation) Invoke(v Value) (Value, error) {
	if !k.used.CompareAndSwap(false, true) {
		return nil, &errdefs.RuntimeError{Message: "continuation invoked more than once"}
	}
	k.resume <- resumeMsg{value: v}
	return runHandlerFrame(k.ctx, k.handlers, k.perform, k.done)
}

// evalHandle implements §4.5.3: run body in its own goroutine under a fresh
// frame, and service Perform/completion on the current goroutine.
func evalHandle(ctx *Context, n *ast.HandleExpr) (Value, error) {
	handledSet := map[string]bool{}
	for _, h := range n.Handlers {
		handledSet[h.Effect] = true
	}

	performCh := make(chan performMsg)
	doneCh := make(chan doneMsg, 1)

	bodyCtx := ctx.PushFrame(&frame{effects: handledSet, perform: performCh})
	go func() {
		v, err := Eval(bodyCtx, n.Body)
		doneCh <- doneMsg{value: v, err: err}
	}()

	result, err := runHandlerFrame(ctx, n.Handlers, performCh, doneCh)
	if err != nil {
		return nil, err
	}
	if n.Return != nil {
		retEnv := ctx.Env.Extend(n.Return.Binder, result)
		return Eval(ctx.WithEnv(retEnv), n.Return.Body)
	}
	return result, nil
}

// runHandlerFrame services one pending step of a Handle's body: either it
// has already finished (doneCh) or it is suspended on a Perform
// (performCh), in which case the matching handler body runs to completion
// and its value is returned, per the one-shot contract of §4.5.3/§9.
func runHandlerFrame(ctx *Context, handlers []ast.HandlerCase, performCh chan performMsg, doneCh chan doneMsg) (Value, error) {
	select {
	case d := <-doneCh:
		return d.value, d.err
	case msg := <-performCh:
		h, ok := findHandler(handlers, msg.effect)
		if !ok {
			return nil, &errdefs.RuntimeError{Message: "no handler registered for effect " + msg.effect}
		}
		k := &Continuation{resume: msg.resume, perform: performCh, done: doneCh, ctx: ctx, handlers: handlers}
		handlerEnv := ctx.Env
		for i, binder := range h.Binders {
			if i < len(msg.args) {
				handlerEnv = handlerEnv.Extend(binder, msg.args[i])
			} else {
				// The trailing binder is the continuation.
				handlerEnv = handlerEnv.Extend(binder, &ContinuationValue{k: k})
			}
		}
		return Eval(ctx.WithEnv(handlerEnv), h.Body)
	}
}

func findHandler(handlers []ast.HandlerCase, effect string) (ast.HandlerCase, bool) {
	for _, h := range handlers {
		if h.Effect == effect {
			return h, true
		}
	}
	return ast.HandlerCase{}, false
}

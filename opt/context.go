// Copyright 2024 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package opt

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
)

// Context carries the ambient state of one optimization pass: the
// standard context, a tracer and a logger. A Context must not be shared
// between concurrent passes.
type Context struct {
	context.Context
	tracer opentracing.Tracer
	logger *logrus.Entry
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithTracer sets the tracer used by Span.
func WithTracer(t opentracing.Tracer) ContextOption {
	return func(c *Context) {
		c.tracer = t
	}
}

// WithLogger sets the logger returned by Logger.
func WithLogger(l *logrus.Entry) ContextOption {
	return func(c *Context) {
		c.logger = l
	}
}

// NewContext builds an optimization context over ctx. Without options it
// traces to a no-op tracer and logs to the standard logger.
func NewContext(ctx context.Context, opts ...ContextOption) *Context {
	c := &Context{
		Context: ctx,
		tracer:  opentracing.NoopTracer{},
		logger:  logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewEmptyContext returns a default context, for tests and tools.
func NewEmptyContext() *Context {
	return NewContext(context.Background())
}

// Span starts a span named opName and returns it together with a child
// context carrying it as parent.
func (c *Context) Span(opName string, opts ...opentracing.StartSpanOption) (opentracing.Span, *Context) {
	parent := opentracing.SpanFromContext(c.Context)
	if parent != nil {
		opts = append(opts, opentracing.ChildOf(parent.Context()))
	}
	span := c.tracer.StartSpan(opName, opts...)

	child := *c
	child.Context = opentracing.ContextWithSpan(c.Context, span)
	return span, &child
}

// Logger returns the pass logger.
func (c *Context) Logger() *logrus.Entry {
	return c.logger
}

package generate

import (
	"fmt"
	"strconv"

	"github.com/jptrs93/protoprober/internal/ir"
	"github.com/jptrs93/protoprober/internal/printer"
)

func serviceVars(parent *printer.Vars, svc ir.Service) *printer.Vars {
	return parent.With(
		"service_name", svc.Name,
		"service_full_name", svc.FullName,
		"method_count", strconv.Itoa(len(svc.Methods)),
	)
}

func (r *run) methodVars(parent *printer.Vars, m ir.Method) (*printer.Vars, error) {
	in, ok := r.index.Messages[m.Input]
	if !ok {
		return nil, fmt.Errorf("%w: message %s", ErrUnknownType, m.Input)
	}
	out, ok := r.index.Messages[m.Output]
	if !ok {
		return nil, fmt.Errorf("%w: message %s", ErrUnknownType, m.Output)
	}
	dep, ref := r.refVars(in.FullName, in.Package, in.TypeName)
	return parent.With(
		"method_name", m.Name,
		"method_shape", Classify(m.ClientStreaming, m.ServerStreaming).String(),
		"request_name", in.Name,
		"request_type", in.TypeName,
		"request_full_name", in.FullName,
		"request_dep", dep,
		"request_ref", ref,
		"response_name", out.Name,
		"response_type", out.TypeName,
		"response_full_name", out.FullName,
		"send_count", strconv.Itoa(SendCount),
	), nil
}

func (r *run) supports(shape Shape) bool {
	if r.opts.UnaryOnly && shape != ShapeUnary {
		return false
	}
	return r.hooks.Supports(shape)
}

func (r *run) serviceProbes(p *printer.Printer, v *printer.Vars) error {
	if len(r.file.Services) == 0 {
		return nil
	}
	r.comment(p, v, "Functions that call every method of a service once.")
	p.NewLine()

	for _, svc := range r.file.Services {
		sv := serviceVars(v, svc)
		for _, m := range svc.Methods {
			if err := r.methodProbe(p, sv, m); err != nil {
				return fmt.Errorf("%s.%s: %w", svc.Name, m.Name, err)
			}
		}

		r.hooks.StartServiceProbe(p, sv)
		r.status(p, sv, "Probing $service_name$:")
		r.hooks.CreateStub(p, sv)
		for _, m := range svc.Methods {
			r.hooks.CallMethodProbe(p, sv.With("method_name", m.Name))
		}
		r.hooks.EndFunction(p, sv)
		p.NewLine()
		if err := p.Err(); err != nil {
			return fmt.Errorf("%s: %w", svc.Name, err)
		}
	}
	return nil
}

// methodProbe renders one probe function. Shapes the backend declines get a
// stub that reports the gap at runtime and returns.
func (r *run) methodProbe(p *printer.Printer, sv *printer.Vars, m ir.Method) error {
	mv, err := r.methodVars(sv, m)
	if err != nil {
		return err
	}
	shape := Classify(m.ClientStreaming, m.ServerStreaming)

	r.hooks.StartMethodProbe(p, mv)
	r.status(p, mv, `\tProbing $method_name$...`)
	if !r.supports(shape) {
		r.log.Debug("shape not supported", "method", m.Name, "shape", shape)
		r.comment(p, mv, "Probing $method_shape$ methods is not supported at this time.")
		r.comment(p, mv, "Fill this function in with logic specific to the call.")
		r.status(p, mv, `\t\tProbing $method_shape$ methods is not yet supported!!`)
		r.hooks.Return(p, mv)
		r.hooks.EndFunction(p, mv)
		p.NewLine()
		return p.Err()
	}

	switch shape {
	case ShapeClientStreaming:
		r.hooks.ClientStreaming(p, mv)
	case ShapeServerStreaming:
		r.hooks.ServerStreaming(p, mv)
	case ShapeBidiStreaming:
		r.hooks.BidiStreaming(p, mv)
	default:
		r.hooks.UnaryUnary(p, mv)
	}
	r.hooks.EndFunction(p, mv)
	p.NewLine()
	return p.Err()
}

package generate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jptrs93/protoprober/internal/ir"
	"github.com/jptrs93/protoprober/internal/printer"
)

// discover walks every method input depth-first in declaration order and
// returns each reachable message once, in first-visit order. Map entries are
// not walked.
func (r *run) discover() ([]ir.Message, error) {
	visited := make(map[string]bool)
	var order []ir.Message
	var track func(fullName string) error
	track = func(fullName string) error {
		msg, ok := r.index.Messages[fullName]
		if !ok {
			return fmt.Errorf("%w: message %s", ErrUnknownType, fullName)
		}
		visited[fullName] = true
		order = append(order, msg)
		for _, f := range msg.Fields {
			if f.Kind != ir.KindMessage || f.IsMap || visited[f.MessageFullName] {
				continue
			}
			if err := track(f.MessageFullName); err != nil {
				return err
			}
		}
		return nil
	}

	for _, svc := range r.file.Services {
		for _, m := range svc.Methods {
			if visited[m.Input] {
				continue
			}
			if err := track(m.Input); err != nil {
				return nil, fmt.Errorf("%s.%s: %w", svc.Name, m.Name, err)
			}
		}
	}
	return order, nil
}

func (r *run) messageVars(parent *printer.Vars, msg ir.Message) *printer.Vars {
	dep, ref := r.refVars(msg.FullName, msg.Package, msg.TypeName)
	return parent.With(
		"message_name", msg.Name,
		"message_type", msg.TypeName,
		"message_full_name", msg.FullName,
		"message_dep", dep,
		"message_ref", ref,
	)
}

func (r *run) messageHelpers(p *printer.Printer, v *printer.Vars) error {
	order, err := r.discover()
	if err != nil {
		return err
	}
	r.log.Debug("discovered messages", "count", len(order))
	if len(order) == 0 {
		return nil
	}

	r.comment(p, v, "Functions that fill every field of a message with a sentinel value.")
	for _, msg := range order {
		r.hooks.DeclarePopulateFunction(p, r.messageVars(v, msg))
	}
	p.NewLine()

	for _, msg := range order {
		if err := r.messageHelper(p, r.messageVars(v, msg), msg); err != nil {
			return fmt.Errorf("populate %s: %w", msg.FullName, err)
		}
		if err := p.Err(); err != nil {
			return fmt.Errorf("populate %s: %w", msg.FullName, err)
		}
	}
	return nil
}

func (r *run) messageHelper(p *printer.Printer, v *printer.Vars, msg ir.Message) error {
	r.hooks.StartPopulateFunction(p, v)
	if len(msg.Fields) == 0 {
		r.hooks.EmptyMessage(p, v)
	}
	for _, f := range msg.Fields {
		if err := r.populateField(p, v, f); err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
	}
	r.hooks.EndPopulateFunction(p, v)
	p.NewLine()
	return nil
}

// populateField binds the field's names on the helper scope and emits its
// assignment. Bindings persist until the next field overwrites them.
func (r *run) populateField(p *printer.Printer, v *printer.Vars, f ir.Field) error {
	v.Set("field_name", f.Name).
		Set("field_number", strconv.Itoa(f.Number)).
		Set("field_kind", f.Kind.String()).
		Set("field_oneof", f.Oneof).
		Set("field_optional", strconv.FormatBool(f.IsOptional))

	switch {
	case f.IsMap:
		r.comment(p, v, "Map field $field_name$ is left empty.")
	case f.Kind == ir.KindMessage:
		msg, ok := r.index.Messages[f.MessageFullName]
		if !ok {
			return fmt.Errorf("%w: message %s", ErrUnknownType, f.MessageFullName)
		}
		dep, ref := r.refVars(msg.FullName, msg.Package, msg.TypeName)
		v.Set("field_message_name", msg.Name).
			Set("field_message_type", msg.TypeName).
			Set("field_message_full_name", msg.FullName).
			Set("field_message_dep", dep).
			Set("field_message_ref", ref)
		r.hooks.PopulateMessage(p, v, f.IsRepeated)
	case f.Kind == ir.KindEnum:
		enum, ok := r.index.Enums[f.EnumFullName]
		if !ok {
			return fmt.Errorf("%w: enum %s", ErrUnknownType, f.EnumFullName)
		}
		zero, ok := enum.ZeroValue()
		if !ok {
			return fmt.Errorf("%w: %s", ErrNoZeroEnumValue, enum.FullName)
		}
		r.hooks.PopulateEnum(p, r.enumVars(v, enum, zero), f.IsRepeated)
	default:
		literal, err := r.pick.pick(f.Kind)
		if err != nil {
			return err
		}
		v.Set("data", literal)
		r.hooks.PopulateScalar(p, v, f.IsRepeated)
	}
	return nil
}

// enumVars binds an enum reference on a copy of the field scope. Enum values
// are siblings of their enum, so the value's path is the enum's parent scope
// plus the value name.
func (r *run) enumVars(v *printer.Vars, enum ir.Enum, value ir.EnumValue) *printer.Vars {
	dep, _ := r.refVars(enum.FullName, enum.Package, enum.TypeName)
	return v.With(
		"enum_dep", dep,
		"enum_name", enum.Name,
		"enum_type", enum.TypeName,
		"enum_full_name", enum.FullName,
		"enum_value", value.Name,
		"enum_value_type", sibling(enum.TypeName, value.Name),
		"enum_value_full_name", sibling(enum.FullName, value.Name),
	)
}

// sibling replaces the last element of a dotted path.
func sibling(path, name string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[:i] + "." + name
	}
	return name
}

/*
MIT License

# Copyright (c) 2025 OcomSoft

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/
package migration

import (
	"context"
	"fmt"
	"slices"

	"github.com/ocomsoft/makeviews/internal/errors"
	"github.com/ocomsoft/makeviews/internal/types"
)

// Command is one recorded schema operation. Args are positional and the
// first one is always the name of the object the command acts on.
type Command struct {
	Kind types.CommandKind `yaml:"kind"`
	Args []any             `yaml:"args"`
}

// Subject returns the name of the object the command acts on
func (c Command) Subject() (string, error) {
	if len(c.Args) == 0 {
		return "", errors.NewMigrationError(string(c.Kind), "command has no arguments")
	}
	name, ok := c.Args[0].(string)
	if !ok || name == "" {
		return "", errors.NewMigrationError(string(c.Kind), fmt.Sprintf("subject must be a non-empty name, got %v", c.Args[0]))
	}
	return name, nil
}

func (c Command) String() string {
	subject, _ := c.Subject()
	return fmt.Sprintf("%s(%s)", c.Kind, subject)
}

// inverses is the closed table of invertible commands
var inverses = map[types.CommandKind]types.CommandKind{
	types.CommandCreateView:             types.CommandDropView,
	types.CommandCreateMaterializedView: types.CommandDropMaterializedView,
	types.CommandCreateMvRefreshJob:     types.CommandDropMvRefreshJob,
}

// Invert returns the command that undoes c. Only the subject name is carried
// over to the inverse.
func Invert(c Command) (Command, error) {
	kind, ok := inverses[c.Kind]
	if !ok {
		return Command{}, errors.NewNotInvertibleError(string(c.Kind))
	}

	subject, err := c.Subject()
	if err != nil {
		return Command{}, err
	}

	return Command{Kind: kind, Args: []any{subject}}, nil
}

// Recorder collects the commands of a forward migration run in order.
// It does not execute anything.
type Recorder struct {
	commands []Command
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends a command. Args are copied.
func (r *Recorder) Record(kind types.CommandKind, args ...any) {
	r.commands = append(r.commands, Command{Kind: kind, Args: slices.Clone(args)})
}

// Commands returns the recorded commands in recording order
func (r *Recorder) Commands() []Command {
	return slices.Clone(r.commands)
}

// Len returns the number of recorded commands
func (r *Recorder) Len() int {
	return len(r.commands)
}

// Reset discards all recorded commands
func (r *Recorder) Reset() {
	r.commands = nil
}

// InverseAll returns the inverse of every recorded command, last recorded
// first. It fails on the first command that cannot be inverted.
func (r *Recorder) InverseAll() ([]Command, error) {
	return InvertAll(r.commands)
}

// InvertAll inverts commands in reverse order
func InvertAll(commands []Command) ([]Command, error) {
	result := make([]Command, 0, len(commands))
	for i := len(commands) - 1; i >= 0; i-- {
		inverse, err := Invert(commands[i])
		if err != nil {
			return nil, fmt.Errorf("failed to invert command %d: %w", i+1, err)
		}
		result = append(result, inverse)
	}
	return result, nil
}

// Reverter executes the inverse commands. *views.Manager implements it.
type Reverter interface {
	DropView(ctx context.Context, name string, opts types.DropOptions) error
	DropMaterializedView(ctx context.Context, name string) error
	DropMvRefreshJob(ctx context.Context, name string) error
}

// Apply executes commands produced by Invert or InvertAll in order
func Apply(ctx context.Context, reverter Reverter, commands []Command) error {
	for _, command := range commands {
		if err := apply(ctx, reverter, command); err != nil {
			return fmt.Errorf("failed to apply %s: %w", command, err)
		}
	}
	return nil
}

// Revert inverts the recorded commands and executes the result
func (r *Recorder) Revert(ctx context.Context, reverter Reverter) error {
	commands, err := r.InverseAll()
	if err != nil {
		return err
	}
	return Apply(ctx, reverter, commands)
}

func apply(ctx context.Context, reverter Reverter, command Command) error {
	subject, err := command.Subject()
	if err != nil {
		return err
	}

	switch command.Kind {
	case types.CommandDropView:
		return reverter.DropView(ctx, subject, types.DropOptions{})
	case types.CommandDropMaterializedView:
		return reverter.DropMaterializedView(ctx, subject)
	case types.CommandDropMvRefreshJob:
		return reverter.DropMvRefreshJob(ctx, subject)
	default:
		return errors.NewMigrationError("apply", fmt.Sprintf("unsupported command %s", command.Kind))
	}
}

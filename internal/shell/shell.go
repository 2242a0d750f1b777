// Package shell implements the interactive text front end: it reads command
// lines, dispatches the resulting editor actions through the undo history,
// and prints the rendered model.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/shipyard/internal/catalog"
	"github.com/cory-johannsen/shipyard/internal/command"
	"github.com/cory-johannsen/shipyard/internal/editor"
	"github.com/cory-johannsen/shipyard/internal/project"
	"github.com/cory-johannsen/shipyard/internal/render"
)

// Options configures a Shell.
type Options struct {
	// Store persists projects by name; nil disables save, load and projects
	// without a path and disables autosave.
	Store project.Store
	// Autosave saves the project to Store after every change to the undoable state.
	Autosave bool
	// Color enables ANSI styling.
	Color bool
}

// Shell is a single-user planner session driven by text commands.
type Shell struct {
	registry   *command.Registry
	translator *command.Translator
	reducer    *editor.Reducer
	renderer   *render.Renderer
	store      project.Store
	autosave   bool
	color      bool
	logger     *zap.Logger

	in      io.Reader
	out     io.Writer
	history editor.History
}

// New creates a Shell editing h against cat, reading commands from in and
// writing output to out.
//
// Precondition: cat, in, out and logger must be non-nil.
func New(cat *catalog.Catalog, h editor.History, in io.Reader, out io.Writer, logger *zap.Logger, opts Options) *Shell {
	return &Shell{
		registry:   command.DefaultRegistry(),
		translator: command.NewTranslator(),
		reducer:    editor.NewReducer(cat),
		renderer:   render.New(cat, opts.Color),
		store:      opts.Store,
		autosave:   opts.Autosave && opts.Store != nil,
		color:      opts.Color,
		logger:     logger,
		in:         in,
		out:        out,
		history:    h,
	}
}

// History returns the current session history.
func (s *Shell) History() editor.History {
	return s.history
}

// SetIDs replaces the instance ID generator.
func (s *Shell) SetIDs(newID func() string) {
	s.translator.NewID = newID
}

func (s *Shell) style(code, text string) string {
	if !s.color {
		return text
	}
	return render.Colorize(code, text)
}

func (s *Shell) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

func (s *Shell) prompt() {
	fmt.Fprint(s.out, s.style(render.BrightCyan, fmt.Sprintf("[%s]> ", s.history.Current.Name)))
}

// Run reads and executes commands until quit, end of input, or ctx is done.
//
// Postcondition: Returns nil on quit or end of input, ctx.Err() on
// cancellation, or a read error.
func (s *Shell) Run(ctx context.Context) error {
	s.println(s.renderer.Status(s.history))
	s.println(s.style(render.Dim, `Type "help" for a list of commands.`))

	scanner := bufio.NewScanner(s.in)
	for {
		s.prompt()
		if !scanner.Scan() {
			s.println()
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		quit, err := s.Exec(ctx, scanner.Text())
		if err != nil {
			s.println(s.style(render.Red, err.Error()))
		}
		if quit {
			return nil
		}
	}
}

// Exec runs one command line.
//
// Postcondition: Returns quit=true for the quit command. Errors are user
// facing: unknown commands, usage errors, rejected actions, and I/O failures.
func (s *Shell) Exec(ctx context.Context, line string) (quit bool, err error) {
	in := command.Parse(line)
	if in.Command == "" {
		return false, nil
	}
	cmd, ok := s.registry.Resolve(in.Command)
	if !ok {
		return false, fmt.Errorf("unknown command %q; type \"help\"", in.Command)
	}

	action, err := s.translator.Action(cmd, in, s.history.Current)
	switch {
	case errors.Is(err, command.ErrNotAction):
		return s.local(ctx, cmd, in)
	case err != nil:
		return false, err
	}
	return false, s.dispatch(ctx, cmd, action)
}

func (s *Shell) dispatch(ctx context.Context, cmd *command.Command, a editor.Action) error {
	next, changed := s.history.Dispatch(s.reducer, a)
	s.logger.Debug("dispatch",
		zap.String("command", cmd.Name),
		zap.String("kind", a.Kind().String()),
		zap.Bool("changed", changed),
	)
	if !changed {
		if a.Kind() == editor.KindView {
			return nil
		}
		return fmt.Errorf("%s: nothing changed", cmd.Name)
	}
	s.history = next

	if p, ok := a.(editor.Place); ok {
		s.println(s.style(render.Green, "placed "+p.Instance.DefinitionID+" as "+p.Instance.ID))
	}
	if a.Kind() != editor.KindView {
		s.println(s.renderer.Status(s.history))
		s.saveAuto(ctx)
	}
	return nil
}

func (s *Shell) saveAuto(ctx context.Context) {
	if !s.autosave {
		return
	}
	p := s.history.Current.Project()
	if err := s.store.Save(ctx, p); err != nil {
		s.logger.Warn("autosave failed", zap.String("key", p.Key()), zap.Error(err))
		return
	}
	s.logger.Debug("autosaved", zap.String("key", p.Key()), zap.Int("instances", len(p.Instances)))
}

// isPath reports whether a load/save argument names a file rather than a
// stored project.
func isPath(arg string) bool {
	ext := strings.ToLower(filepath.Ext(arg))
	return strings.ContainsRune(arg, filepath.Separator) || strings.ContainsRune(arg, '/') || ext == ".yaml" || ext == ".yml"
}

func (s *Shell) local(ctx context.Context, cmd *command.Command, in command.ParseResult) (bool, error) {
	m := s.history.Current
	switch cmd.Handler {
	case command.HandlerQuit:
		return true, nil
	case command.HandlerHelp:
		fmt.Fprint(s.out, s.registry.Help())
	case command.HandlerShow:
		s.println(s.renderer.Status(s.history))
		fmt.Fprint(s.out, s.renderer.Grid(m))
	case command.HandlerList:
		fmt.Fprint(s.out, s.renderer.Instances(m))
	case command.HandlerCatalog:
		fmt.Fprint(s.out, s.renderer.Catalog(m.View.Expanded))
	case command.HandlerLayers:
		fmt.Fprint(s.out, s.renderer.Layers(m))
	case command.HandlerSave:
		return false, s.save(ctx, in.Rest(0))
	case command.HandlerLoad:
		if in.Rest(0) == "" {
			return false, fmt.Errorf("%w: %s", command.ErrUsage, cmd.Usage)
		}
		return false, s.load(ctx, cmd, in.Rest(0))
	case command.HandlerProjects:
		if s.store == nil {
			return false, errors.New("no project store configured")
		}
		keys, err := s.store.List(ctx)
		if err != nil {
			return false, err
		}
		if len(keys) == 0 {
			s.println(s.style(render.Dim, "No saved projects."))
		}
		for _, k := range keys {
			s.println(k)
		}
	default:
		return false, fmt.Errorf("command %q is not available in the shell", cmd.Name)
	}
	return false, nil
}

func (s *Shell) save(ctx context.Context, path string) error {
	p := s.history.Current.Project()
	if path != "" {
		if err := project.SaveFile(p, path); err != nil {
			return err
		}
		s.logger.Info("project saved", zap.String("path", path), zap.Int("instances", len(p.Instances)))
		s.println("saved " + path)
		return nil
	}
	if s.store == nil {
		return errors.New("no project store configured; use save <path>")
	}
	if err := s.store.Save(ctx, p); err != nil {
		return err
	}
	s.logger.Info("project saved", zap.String("key", p.Key()), zap.Int("instances", len(p.Instances)))
	s.println("saved " + p.Key())
	return nil
}

func (s *Shell) load(ctx context.Context, cmd *command.Command, arg string) error {
	var (
		p   *project.Project
		err error
	)
	if isPath(arg) {
		p, err = project.LoadFile(arg)
	} else {
		if s.store == nil {
			return errors.New("no project store configured; use load <path>")
		}
		p, err = s.store.Load(ctx, project.KeyFor(arg))
	}
	if errors.Is(err, project.ErrNotFound) {
		return fmt.Errorf("no saved project named %q", arg)
	}
	if err != nil {
		return err
	}

	dropped := len(p.Instances)
	if err := s.dispatch(ctx, cmd, editor.LoadProject{Project: p}); err != nil {
		return err
	}
	dropped -= len(s.history.Current.Instances)
	if dropped > 0 {
		s.logger.Warn("dropped instances on load", zap.String("project", p.Name), zap.Int("dropped", dropped))
		s.println(s.style(render.Yellow, fmt.Sprintf("%d structures could not be placed and were dropped", dropped)))
	}
	return nil
}

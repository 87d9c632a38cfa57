// ============================================================================
// devcmd - Development task runner
// ============================================================================
//
// Package:     parser
// Description: Builds a validated configuration model from a raw config table
// Author:      Mike Stoffels
// Created:     2026-10-15
// License:     MIT
// ============================================================================

// Package parser turns the raw devcmd table into a model.Configuration. The
// schema is closed: every key is either understood or rejected with a
// SchemaError naming its path.
package parser

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	fconfig "github.com/msto63/devcmd/foundation/core/config"
	"github.com/msto63/devcmd/internal/model"
	"github.com/msto63/devcmd/internal/predicate"
	"github.com/msto63/devcmd/pkg/core/config"
)

// Option configures Parse.
type Option func(*parser)

// WithPredicateOptions passes options through to every `when` expression.
func WithPredicateOptions(opts ...predicate.Option) Option {
	return func(p *parser) { p.predicateOpts = append(p.predicateOpts, opts...) }
}

type parser struct {
	root          keyPath
	projectDir    string
	predicateOpts []predicate.Option

	commands     map[string]*model.Command
	tasks        map[string]*model.Task
	allTaskNames map[string]bool
}

// Parse validates src and builds the configuration model.
func Parse(src *config.Source, opts ...Option) (*model.Configuration, error) {
	projectDir, err := filepath.Abs(src.ProjectDir)
	if err != nil {
		return nil, &SchemaError{Message: "cannot resolve project directory: " + err.Error()}
	}
	if resolved, err := filepath.EvalSymlinks(projectDir); err == nil {
		projectDir = resolved
	}

	p := &parser{
		root:       keyPath(src.KeyPrefix),
		projectDir: projectDir,
		commands:   make(map[string]*model.Command),
		tasks:      make(map[string]*model.Task),
	}
	for _, opt := range opts {
		opt(p)
	}

	table := fconfig.NewMap()
	if src.Table != nil {
		table = src.Table.Clone()
	}
	cfg := &model.Configuration{Source: src.Path}

	if cfg.Commands, err = p.parseCommands(take(table, "commands")); err != nil {
		return nil, err
	}
	if cfg.Tasks, err = p.parseTasks(take(table, "tasks")); err != nil {
		return nil, err
	}
	if cfg.Default, err = p.parseDefault(take(table, "default"), cfg); err != nil {
		return nil, err
	}
	if cfg.ExitStyle, err = p.parseExitStyle(take(table, "exit-style")); err != nil {
		return nil, err
	}
	if cfg.GracePeriod, err = p.parseGracePeriod(take(table, "grace-period")); err != nil {
		return nil, err
	}
	if cfg.Env, err = p.parseEnvironment(take(table, "environment")); err != nil {
		return nil, err
	}
	if err := unexpected(p.root, table); err != nil {
		return nil, err
	}
	return cfg, nil
}

// take removes key from table, returning nil when absent.
func take(table *fconfig.Map, key string) any {
	v, ok := table.Get(key)
	if !ok {
		return nil
	}
	table.Delete(key)
	return v
}

func unexpected(path keyPath, table *fconfig.Map) error {
	keys := table.Keys()
	if len(keys) == 0 {
		return nil
	}
	return path.key(keys[0]).errorf("unexpected configuration key(s): %s", strings.Join(keys, " "))
}

func (p *parser) parseCommands(raw any) ([]*model.Command, error) {
	path := p.root.key("commands")
	table, ok := raw.(*fconfig.Map)
	if raw == nil || (ok && table.Len() == 0) {
		return nil, path.errorf("at least one command must be defined")
	}
	if !ok {
		return nil, path.errorf("expected a table, found %s", fconfig.TypeName(raw))
	}

	commands := make([]*model.Command, 0, table.Len())
	for _, name := range table.Keys() {
		v, _ := table.Get(name)
		cmd, err := p.parseCommand(path.key(name), name, v)
		if err != nil {
			return nil, err
		}
		p.commands[name] = cmd
		commands = append(commands, cmd)
	}
	return commands, nil
}

func (p *parser) parseCommand(path keyPath, name string, raw any) (*model.Command, error) {
	cmd := &model.Command{Name: name, Dir: p.projectDir}

	if list, ok := raw.([]any); ok {
		args, err := stringList(path, list)
		if err != nil {
			return nil, err
		}
		cmd.Args = args
		return cmd, nil
	}

	table, ok := raw.(*fconfig.Map)
	if !ok {
		return nil, path.errorf("expected an array of strings or a table, found %s", fconfig.TypeName(raw))
	}
	table = table.Clone()

	argsRaw := take(table, "args")
	if argsRaw == nil {
		return nil, path.key("args").errorf("the command table must define an args array")
	}
	list, ok := argsRaw.([]any)
	if !ok {
		return nil, path.key("args").errorf("expected an array of strings, found %s", fconfig.TypeName(argsRaw))
	}
	args, err := stringList(path.key("args"), list)
	if err != nil {
		return nil, err
	}
	cmd.Args = args

	if envRaw := take(table, "env"); envRaw != nil {
		envTable, ok := envRaw.(*fconfig.Map)
		if !ok {
			return nil, path.key("env").errorf("expected a table of strings, found %s", fconfig.TypeName(envRaw))
		}
		for _, k := range envTable.Keys() {
			v, _ := envTable.Get(k)
			s, ok := v.(string)
			if !ok {
				return nil, path.key("env").key(k).errorf("environment values must be strings, found %s", fconfig.TypeName(v))
			}
			cmd.ExtraEnv = append(cmd.ExtraEnv, model.EnvVar{Name: k, Value: s})
		}
	}

	if cwdRaw := take(table, "cwd"); cwdRaw != nil {
		s, ok := cwdRaw.(string)
		if !ok {
			return nil, path.key("cwd").errorf("expected a string, found %s", fconfig.TypeName(cwdRaw))
		}
		dir, err := p.resolveInProject(path.key("cwd"), s)
		if err != nil {
			return nil, err
		}
		cmd.Dir = dir
	}

	if cmd.AcceptsExtraArgs, err = optionalBool(path.key("accepts-extra-args"), take(table, "accepts-extra-args")); err != nil {
		return nil, err
	}
	if cmd.When, err = p.parseWhen(path.key("when"), take(table, "when")); err != nil {
		return nil, err
	}
	if cmd.Hidden, err = optionalBool(path.key("hidden"), take(table, "hidden")); err != nil {
		return nil, err
	}
	if cmd.Description, err = optionalString(path.key("description"), take(table, "description")); err != nil {
		return nil, err
	}
	if err := unexpected(path, table); err != nil {
		return nil, err
	}
	return cmd, nil
}

// resolveInProject resolves a possibly relative path and rejects anything
// outside the project directory.
func (p *parser) resolveInProject(path keyPath, dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(p.projectDir, dir)
	}
	dir = filepath.Clean(dir)
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	rel, err := filepath.Rel(p.projectDir, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", path.errorf("the resolved path lies outside the project %s: %s", p.projectDir, dir)
	}
	return dir, nil
}

func (p *parser) parseWhen(path keyPath, raw any) (model.Predicate, error) {
	if raw == nil {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, path.errorf("expected an expression string, found %s", fconfig.TypeName(raw))
	}
	expr, err := predicate.Parse(s, p.predicateOpts...)
	if err != nil {
		return nil, path.errorf("%v", err)
	}
	return expr, nil
}

func (p *parser) parseTasks(raw any) ([]*model.Task, error) {
	if raw == nil {
		return nil, nil
	}
	path := p.root.key("tasks")
	table, ok := raw.(*fconfig.Map)
	if !ok {
		return nil, path.errorf("expected a table, found %s", fconfig.TypeName(raw))
	}

	p.allTaskNames = make(map[string]bool, table.Len())
	for _, name := range table.Keys() {
		p.allTaskNames[name] = true
	}

	tasks := make([]*model.Task, 0, table.Len())
	for _, name := range table.Keys() {
		taskPath := path.key(name)
		if _, collides := p.commands[name]; collides {
			return nil, taskPath.errorf("task %q collides with command %q; tasks and commands share one namespace", name, name)
		}
		v, _ := table.Get(name)
		task, err := p.parseTask(taskPath, name, v)
		if err != nil {
			return nil, err
		}
		p.tasks[name] = task
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (p *parser) parseTask(path keyPath, name string, raw any) (*model.Task, error) {
	task := &model.Task{Name: name}

	if list, ok := raw.([]any); ok {
		steps, err := p.parseGroup(path, list)
		if err != nil {
			return nil, err
		}
		task.Steps = steps
		return task, nil
	}

	table, ok := raw.(*fconfig.Map)
	if !ok {
		return nil, path.errorf("expected an array of steps or a table, found %s", fconfig.TypeName(raw))
	}
	table = table.Clone()

	stepsRaw := take(table, "steps")
	list, ok := stepsRaw.([]any)
	if !ok {
		if stepsRaw == nil {
			return nil, path.key("steps").errorf("the task table must define a steps array")
		}
		return nil, path.key("steps").errorf("expected an array of steps, found %s", fconfig.TypeName(stepsRaw))
	}
	steps, err := p.parseGroup(path.key("steps"), list)
	if err != nil {
		return nil, err
	}
	task.Steps = steps

	if task.When, err = p.parseWhen(path.key("when"), take(table, "when")); err != nil {
		return nil, err
	}
	if task.Hidden, err = optionalBool(path.key("hidden"), take(table, "hidden")); err != nil {
		return nil, err
	}
	if task.Description, err = optionalString(path.key("description"), take(table, "description")); err != nil {
		return nil, err
	}
	if err := unexpected(path, table); err != nil {
		return nil, err
	}
	return task, nil
}

func (p *parser) parseGroup(path keyPath, list []any) (model.Group, error) {
	members := make([]model.Member, 0, len(list))
	for i, item := range list {
		itemPath := path.index(i)
		switch v := item.(type) {
		case string:
			if cmd, ok := p.commands[v]; ok {
				members = append(members, cmd)
				continue
			}
			if task, ok := p.tasks[v]; ok {
				members = append(members, task)
				continue
			}
			if p.allTaskNames[v] {
				return model.Group{}, itemPath.errorf(
					"step forward-references task %q; tasks can only reference other tasks that are defined earlier in the file", v)
			}
			return model.Group{}, itemPath.errorf("%q is not the name of a defined command or task\n\n%s", v, p.available())
		case []any:
			sub, err := p.parseGroup(itemPath, v)
			if err != nil {
				return model.Group{}, err
			}
			members = append(members, sub)
		default:
			return model.Group{}, itemPath.errorf("expected a command or task name or a nested array, found %s", fconfig.TypeName(item))
		}
	}
	return model.Group{Members: members}, nil
}

// available lists the names a step or default may refer to.
func (p *parser) available() string {
	tasks := sortedKeys(p.tasks)
	commands := sortedKeys(p.commands)
	taskList := "<none>"
	if len(tasks) > 0 {
		taskList = strings.Join(tasks, " ")
	}
	return "Available tasks: " + taskList + "\nAvailable commands: " + strings.Join(commands, " ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p *parser) parseDefault(raw any, cfg *model.Configuration) (model.Member, error) {
	path := p.root.key("default")
	if raw == nil {
		if len(cfg.Commands) == 1 {
			return cfg.Commands[0], nil
		}
		return nil, nil
	}
	name, ok := raw.(string)
	if !ok {
		return nil, path.errorf("expected a string, found %s", fconfig.TypeName(raw))
	}
	if task, ok := p.tasks[name]; ok {
		return task, nil
	}
	if cmd, ok := p.commands[name]; ok {
		return cmd, nil
	}
	return nil, path.errorf("%q is not the name of a defined command or task\n\n%s", name, p.available())
}

func (p *parser) parseExitStyle(raw any) (*model.ExitStyle, error) {
	if raw == nil {
		return nil, nil
	}
	path := p.root.key("exit-style")
	s, ok := raw.(string)
	if !ok {
		return nil, path.errorf("expected a string, found %s", fconfig.TypeName(raw))
	}
	style, err := model.ParseExitStyle(s)
	if err != nil {
		return nil, path.errorf("%q is not recognized, valid choices are %s", s, model.ExitStyleChoices())
	}
	return &style, nil
}

func (p *parser) parseGracePeriod(raw any) (*float64, error) {
	var seconds float64
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case int64:
		seconds = float64(v)
	case float64:
		seconds = v
	default:
		return nil, p.root.key("grace-period").errorf("expected a number of seconds, found %s", fconfig.TypeName(raw))
	}
	return &seconds, nil
}

func (p *parser) parseEnvironment(raw any) (*model.ExecEnv, error) {
	if raw == nil {
		return nil, nil
	}
	path := p.root.key("environment")
	table, ok := raw.(*fconfig.Map)
	if !ok {
		return nil, path.errorf("expected a table, found %s", fconfig.TypeName(raw))
	}
	table = table.Clone()

	env := &model.ExecEnv{}
	binDir, err := optionalString(path.key("bin-dir"), take(table, "bin-dir"))
	if err != nil {
		return nil, err
	}
	if binDir != "" {
		if !filepath.IsAbs(binDir) {
			binDir = filepath.Join(p.projectDir, binDir)
		}
		env.BinDir = filepath.Clean(binDir)
	}
	if env.Interpreter, err = optionalString(path.key("interpreter"), take(table, "interpreter")); err != nil {
		return nil, err
	}
	if err := unexpected(path, table); err != nil {
		return nil, err
	}
	return env, nil
}

func stringList(path keyPath, list []any) ([]string, error) {
	if len(list) == 0 {
		return nil, path.errorf("expected a non-empty array of strings")
	}
	out := make([]string, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, path.index(i).errorf("expected a string, found %s", fconfig.TypeName(item))
		}
		out[i] = s
	}
	return out, nil
}

func optionalBool(path keyPath, raw any) (bool, error) {
	if raw == nil {
		return false, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, path.errorf("expected true or false, found %s", fconfig.TypeName(raw))
	}
	return b, nil
}

func optionalString(path keyPath, raw any) (string, error) {
	if raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", path.errorf("expected a string, found %s", fconfig.TypeName(raw))
	}
	return s, nil
}

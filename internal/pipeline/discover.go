package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/backmassage/pixelbatch/internal/config"
	"github.com/backmassage/pixelbatch/internal/task"
)

// Discover builds the task list for cfg. Each class is a direct
// subdirectory of cfg.InputDir: every subdirectory when cfg.Classes is
// empty, otherwise exactly the listed ones. Within a class only regular
// files whose name ends in cfg.Extension (case-sensitive) are collected;
// nested directories are not descended into.
//
// Listed classes that do not exist are returned in missing rather than
// failing the batch. Tasks are ordered by class, then filename.
func Discover(cfg *config.Config) (tasks []task.Task, missing []string, err error) {
	classes := cfg.Classes
	if len(classes) == 0 {
		classes, err = classDirs(cfg.InputDir)
		if err != nil {
			return nil, nil, err
		}
	}

	for _, class := range classes {
		dir := filepath.Join(cfg.InputDir, class)
		names, err := imageNames(dir, cfg.Extension)
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, errNotDir) {
			missing = append(missing, class)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		for _, name := range names {
			tasks = append(tasks, task.New(filepath.Join(dir, name), class, cfg.OutputDir))
		}
	}
	return tasks, missing, nil
}

var errNotDir = errors.New("not a directory")

// classDirs lists the subdirectories of root in lexical order.
func classDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	return dirs, nil
}

// imageNames lists regular files in dir ending in ext, in lexical order.
func imageNames(dir, ext string) ([]string, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, errNotDir
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), ext) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

package menufile

import (
	"fmt"
	"sort"

	"github.com/pengelbrecht/apptree/internal/tree"
)

// Actions maps action names used in menu files to activation callbacks.
type Actions map[string]tree.ActivationFunc

// Register adds fn under name, replacing any previous entry.
func (a Actions) Register(name string, fn tree.ActivationFunc) {
	a[name] = fn
}

// Names returns the registered action names, sorted.
func (a Actions) Names() []string {
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildError reports the item that could not be added to the tree.
type BuildError struct {
	Path string // Slash-separated titles from the root
	Err  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("menu item %q: %v", e.Path, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// Build creates a store from m, resolving each leaf's action in actions.
// The returned store is not frozen.
func Build(m *Menu, actions Actions, opts ...tree.Option) (*tree.Store, error) {
	mode, err := tree.ParseMode(m.Mode)
	if err != nil {
		return nil, &BuildError{Path: m.Title, Err: err}
	}
	s := tree.NewStore(m.Title, mode, opts...)
	if err := addItems(s, s.Root(), m.Title, m.Items, actions); err != nil {
		return nil, err
	}
	return s, nil
}

func addItems(s *tree.Store, parent tree.NodeID, path string, items []Item, actions Actions) error {
	for _, it := range items {
		itemPath := path + "/" + it.Title

		mode, err := tree.ParseMode(it.Mode)
		if err != nil {
			return &BuildError{Path: itemPath, Err: err}
		}
		spec := tree.NodeSpec{
			Title:    it.Title,
			Info:     it.Info,
			Mode:     mode,
			Selected: it.Selected,
		}

		if it.Action != "" {
			if len(it.Items) > 0 {
				return &BuildError{Path: itemPath, Err: fmt.Errorf("submenu cannot have an action")}
			}
			fn, ok := actions[it.Action]
			if !ok {
				return &BuildError{Path: itemPath, Err: fmt.Errorf("unknown action %q", it.Action)}
			}
			spec.OnActivate = fn
		}

		id, err := s.Create(parent, spec)
		if err != nil {
			return &BuildError{Path: itemPath, Err: err}
		}
		if err := addItems(s, id, itemPath, it.Items, actions); err != nil {
			return err
		}
	}
	return nil
}

// FromStore converts a store back into a definition. Actions are not
// recoverable from callbacks, so leaves carry the name returned by
// actionName (nil leaves them empty).
func FromStore(s *tree.Store, actionName func(id tree.NodeID) string) *Menu {
	root := s.Root()
	m := &Menu{Title: s.Title(root), Mode: s.Mode(root).String()}
	m.Items = itemsOf(s, root, actionName)
	return m
}

func itemsOf(s *tree.Store, parent tree.NodeID, actionName func(id tree.NodeID) string) []Item {
	var items []Item
	for _, id := range s.Children(parent) {
		it := Item{
			Title:    s.Title(id),
			Info:     s.Info(id),
			Selected: s.Selected(id),
		}
		if mode := s.Mode(id); mode != tree.ModeNone {
			it.Mode = mode.String()
		}
		if actionName != nil {
			it.Action = actionName(id)
		}
		it.Items = itemsOf(s, id, actionName)
		items = append(items, it)
	}
	return items
}

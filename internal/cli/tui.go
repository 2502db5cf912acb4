package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/matlayer/pkg/errors"
	"github.com/matzehuels/matlayer/pkg/material"
	"github.com/matzehuels/matlayer/pkg/project"
	"github.com/matzehuels/matlayer/pkg/stack"
)

var (
	helpStyle   = lipgloss.NewStyle().Foreground(colorDim)
	focusStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	blurStyle   = lipgloss.NewStyle().Foreground(colorGray)
	statusError = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// StackModel - Interactive stack browser
// =============================================================================

// StackModel is the bubbletea model for browsing and editing a material's
// layer and mask stacks. Every key runs one engine command.
type StackModel struct {
	ctx   context.Context
	mat   *material.Material
	focus material.Target

	Cursor int
	Status string
	Failed bool
	Dirty  bool // at least one command succeeded

	layerKinds []string
	maskKinds  []string
	kind       int // index into the focused stack's kinds
}

// NewStackModel creates a browser for m.
func NewStackModel(ctx context.Context, m *material.Material) StackModel {
	model := StackModel{
		ctx:        ctx,
		mat:        m,
		focus:      material.TargetLayer,
		layerKinds: m.Library.LayerKinds(),
		maskKinds:  m.Library.MaskKinds(),
	}
	model.Cursor = max(m.Layers.Selected(), 0)
	return model
}

func (m StackModel) Init() tea.Cmd {
	return nil
}

func (m StackModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < m.rows()-1 {
			m.Cursor++
		}
	case "tab":
		m = m.toggleFocus()
	case "t":
		if kinds := m.kinds(); len(kinds) > 0 {
			m.kind = (m.kind + 1) % len(kinds)
			m.Status, m.Failed = "Add kind: "+kinds[m.kind], false
		}
	case "enter", " ":
		m = m.exec(material.OpSelect, material.Args{Index: m.Cursor})
	case "a":
		if kinds := m.kinds(); len(kinds) > 0 {
			m = m.exec(material.OpAdd, material.Args{Kind: kinds[m.kind]})
		}
	case "x":
		m = m.exec(material.OpDelete, material.Args{})
	case "d":
		m = m.exec(material.OpDuplicate, material.Args{})
	case "K":
		m = m.exec(material.OpUp, material.Args{})
	case "J":
		m = m.exec(material.OpDown, material.Args{})
	case "h":
		m = m.exec(material.OpHide, material.Args{Index: m.Cursor})
	}
	return m, nil
}

// exec runs op on the focused stack and moves the cursor to the result.
func (m StackModel) exec(op material.Op, args material.Args) StackModel {
	res, err := m.mat.Exec(m.ctx, m.focus, op, args)
	m.Status, m.Failed = res.Status, err != nil
	if err != nil {
		if m.Status == "" {
			m.Status = errors.UserMessage(err)
		}
		return m
	}
	m.Dirty = true
	if res.Selected != stack.NoSelection {
		m.Cursor = res.Selected
	}
	m.Cursor = min(m.Cursor, max(m.rows()-1, 0))
	return m
}

func (m StackModel) toggleFocus() StackModel {
	if m.focus == material.TargetMask {
		m.focus = material.TargetLayer
		m.Cursor = max(m.mat.Layers.Selected(), 0)
		m.kind = 0
		return m
	}
	masks := m.mat.MaskStack(m.mat.Layers.Selected())
	if masks == nil {
		m.Status, m.Failed = "Select a layer first", true
		return m
	}
	m.focus = material.TargetMask
	m.Cursor = max(masks.Selected(), 0)
	m.kind = 0
	return m
}

func (m StackModel) kinds() []string {
	if m.focus == material.TargetMask {
		return m.maskKinds
	}
	return m.layerKinds
}

// rows returns the length of the focused stack.
func (m StackModel) rows() int {
	if m.focus == material.TargetLayer {
		return m.mat.Layers.Len()
	}
	if masks := m.mat.MaskStack(m.mat.Layers.Selected()); masks != nil {
		return masks.Len()
	}
	return 0
}

func (m StackModel) View() string {
	var b strings.Builder
	snap := m.mat.Snapshot()

	b.WriteString(StyleTitle.Render("Material " + snap.Name))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ move  ⏎ select  a add  t kind  x delete  d dup  J/K move  h hide  tab masks  q quit"))
	b.WriteString("\n\n")

	layerCursor, maskCursor := -1, -1
	layerTitle, maskTitle := focusStyle, blurStyle
	if m.focus == material.TargetLayer {
		layerCursor = m.Cursor
	} else {
		maskCursor = m.Cursor
		layerTitle, maskTitle = blurStyle, focusStyle
	}

	b.WriteString(layerTitle.Render("Layers"))
	b.WriteString("\n")
	if len(snap.Layers) == 0 {
		b.WriteString(helpStyle.Render("  no layers"))
	} else {
		b.WriteString(renderStack(layerRows(snap), layerCursor, "Masks"))
	}
	b.WriteString("\n\n")

	b.WriteString(maskTitle.Render(fmt.Sprintf("Masks of layer %d", snap.Selected)))
	b.WriteString("\n")
	if rows := maskRows(snap, snap.Selected); len(rows) > 0 {
		b.WriteString(renderStack(rows, maskCursor, ""))
	} else {
		b.WriteString(helpStyle.Render("  no masks"))
	}
	b.WriteString("\n\n")

	if kinds := m.kinds(); len(kinds) > 0 {
		b.WriteString(helpStyle.Render("add kind: " + kinds[m.kind]))
		b.WriteString("\n")
	}
	switch {
	case m.Failed:
		b.WriteString(statusError.Render(iconError + " " + m.Status))
	case m.Status != "":
		b.WriteString(StyleSuccess.Render(iconSuccess + " " + m.Status))
	}
	return b.String()
}

// =============================================================================
// browse command
// =============================================================================

// browseCommand opens the interactive stack browser.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "browse <material>",
		Short:             "Browse and edit stacks interactively",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeMaterial,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			opts, err := c.materialOptions()
			if err != nil {
				return err
			}
			m, err := project.Load(ctx, store, args[0], opts...)
			if err != nil {
				return err
			}

			// Engine logs would tear the alternate screen.
			level := c.Logger.GetLevel()
			c.Logger.SetLevel(LogError)
			final, err := tea.NewProgram(NewStackModel(ctx, m), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			c.Logger.SetLevel(level)
			if err != nil {
				return err
			}

			if model, ok := final.(StackModel); ok && model.Dirty {
				if err := project.Save(ctx, store, m); err != nil {
					return err
				}
				printSuccess("Saved %s", m.Name)
			}
			return nil
		},
	}
}

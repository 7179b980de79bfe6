// Package render writes plans for people (Text) and for tools (JSON).
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vk/bundlegrid/internal/asset"
	"github.com/vk/bundlegrid/internal/grouper"
)

// Format selects a renderer.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat accepts "text", "json" or "" (text).
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(raw)) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want %q or %q)", raw, FormatText, FormatJSON)
	}
}

// Write renders plan in the given format.
func Write(w io.Writer, format Format, plan *grouper.Plan) error {
	switch format {
	case FormatJSON:
		return JSON(w, plan)
	case FormatText, "":
		return Text(w, plan)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// ContentType returns the HTTP media type of a format.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/plain; charset=utf-8"
}

type styles struct {
	title     lipgloss.Style
	index     lipgloss.Style
	aggregate lipgloss.Style
	single    lipgloss.Style
	key       lipgloss.Style
	item      lipgloss.Style
}

func newStyles(w io.Writer) styles {
	// Styles are bound to w, so plain writers get plain text.
	r := lipgloss.NewRenderer(w)
	return styles{
		title:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")),
		index:     r.NewStyle().Foreground(lipgloss.Color("#888888")),
		aggregate: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#4CAF50")),
		single:    r.NewStyle().Foreground(lipgloss.Color("#FFB74D")),
		key:       r.NewStyle().Foreground(lipgloss.Color("#AAAAAA")),
		item:      r.NewStyle().PaddingLeft(6),
	}
}

// Text writes one numbered block per unit.
func Text(w io.Writer, plan *grouper.Plan) error {
	st := newStyles(w)

	var b strings.Builder
	b.WriteString(st.title.Render(fmt.Sprintf("%d assets in %d units (%d aggregates)",
		len(plan.Order), len(plan.Units), plan.Aggregates())))
	b.WriteString("\n")

	for i, u := range plan.Units {
		kind := st.single.Render("standalone")
		if u.Aggregate() {
			kind = st.aggregate.Render("aggregate")
		}
		fmt.Fprintf(&b, "%s %s", st.index.Render(fmt.Sprintf("%3d.", i+1)), kind)
		if u.Aggregate() {
			fmt.Fprintf(&b, " %s", st.key.Render(u.Key.String()))
		}
		b.WriteString("\n")
		for _, a := range u.Assets {
			b.WriteString(st.item.Render(describe(a)))
			b.WriteString("\n")
		}
	}

	if len(plan.Unresolved) > 0 {
		fmt.Fprintf(&b, "%s %s\n", st.index.Render("unresolved:"), strings.Join(plan.Unresolved, ", "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func describe(a *asset.Asset) string {
	if a.Path == "" || a.Path == a.ID {
		return a.ID
	}
	return fmt.Sprintf("%s (%s)", a.ID, a.Path)
}

type jsonPlan struct {
	Order      []string   `json:"order"`
	Units      []jsonUnit `json:"units"`
	Unresolved []string   `json:"unresolved,omitempty"`
}

type jsonUnit struct {
	Key       string   `json:"key"`
	Aggregate bool     `json:"aggregate"`
	Assets    []string `json:"assets"`
}

// JSON writes the plan as a single indented JSON document.
func JSON(w io.Writer, plan *grouper.Plan) error {
	out := jsonPlan{
		Order:      asset.IDs(plan.Order),
		Units:      make([]jsonUnit, 0, len(plan.Units)),
		Unresolved: plan.Unresolved,
	}
	for _, u := range plan.Units {
		out.Units = append(out.Units, jsonUnit{
			Key:       string(u.Key),
			Aggregate: u.Aggregate(),
			Assets:    u.IDs(),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("render: encode plan: %w", err)
	}
	return nil
}

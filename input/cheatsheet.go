package input

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"text/template"

	"github.com/Masterminds/sprig"

	"github.com/vsariola/traverso/commands"
)

type (
	// CheatSheetEntry is one line of the keyboard cheat sheet.
	CheatSheetEntry struct {
		Keys    string
		Command string
		Label   string
		Submenu string
		Hold    bool
		Args    []any
	}

	// CheatSheetSection groups the entries bound on one kind of object.
	CheatSheetSection struct {
		Object  string
		Entries []CheatSheetEntry
	}
)

// DefaultCheatSheetTemplate renders one section per object, with aligned key
// columns.
const DefaultCheatSheetTemplate = `{{- range . }}
{{ .Object | default "any" | title }}
{{ repeat (len (.Object | default "any")) "-" }}
{{- range .Entries }}
  {{ .Keys | printf "%-20s" }} {{ .Label }}{{ if .Submenu }} ({{ .Submenu }}){{ end }}{{ if .Hold }} [hold]{{ end }}
{{- end }}
{{ end -}}
`

// CheatSheet groups the bindings of km by object, labelling commands through
// f. Sections are ordered any, session, track, clip.
func CheatSheet(km *KeyMap, f *commands.Factory) []CheatSheetSection {
	objects := []string{"", "session", "track", "clip"}
	sections := make([]CheatSheetSection, len(objects))
	for i, o := range objects {
		sections[i].Object = o
	}
	for _, b := range km.Bindings() {
		i := slices.Index(objects, b.Object)
		e := CheatSheetEntry{Keys: b.Keys(), Command: b.Command, Label: b.Command, Args: b.Args}
		if fn, ok := f.Function(b.Command); ok {
			e.Label = f.MenuLabel(b.Command)
			e.Hold = fn.UseX || fn.UseY
			if fn.Submenu != "" {
				e.Submenu = f.SubmenuLabel(fn.Submenu)
			}
		}
		sections[i].Entries = append(sections[i].Entries, e)
	}
	for i := range sections {
		slices.SortStableFunc(sections[i].Entries, func(a, b CheatSheetEntry) int {
			return cmp.Compare(a.Label, b.Label)
		})
	}
	return slices.DeleteFunc(sections, func(s CheatSheetSection) bool { return len(s.Entries) == 0 })
}

// WriteCheatSheet renders the cheat sheet of km with the default template.
func WriteCheatSheet(w io.Writer, km *KeyMap, f *commands.Factory) error {
	return WriteCheatSheetTemplate(w, km, f, DefaultCheatSheetTemplate)
}

// WriteCheatSheetTemplate renders the cheat sheet with a text/template that
// has the sprig functions available. The template is executed on a
// []CheatSheetSection.
func WriteCheatSheetTemplate(w io.Writer, km *KeyMap, f *commands.Factory, text string) error {
	tmpl, err := template.New("cheatsheet").Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return fmt.Errorf("could not parse cheat sheet template: %w", err)
	}
	if err := tmpl.Execute(w, CheatSheet(km, f)); err != nil {
		return fmt.Errorf("could not execute cheat sheet template: %w", err)
	}
	return nil
}
